package calculate_price

import "errors"

var (
	// ErrLotNotFound возвращается, когда парковка не найдена
	ErrLotNotFound = errors.New("calculate_price: lot not found")

	// ErrLotInactive возвращается, когда парковка выключена из бронирования
	ErrLotInactive = errors.New("calculate_price: lot is inactive")

	// ErrAddonNotFound возвращается, когда запрошенная услуга не найдена или неактивна
	ErrAddonNotFound = errors.New("calculate_price: addon service not found")

	// ErrCodeNotFound возвращается, когда промокод не существует
	ErrCodeNotFound = errors.New("calculate_price: discount code not found")

	// ErrCodeNotApplicable возвращается, когда промокод существует, но не
	// применим: истёк, не начался, исчерпан или не достигнут минимальный чек
	ErrCodeNotApplicable = errors.New("calculate_price: discount code not applicable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("calculate_price: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("calculate_price: internal error")
)
