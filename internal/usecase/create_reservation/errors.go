package create_reservation

import "errors"

var (
	// ErrLotNotFound возвращается, когда парковка не найдена
	ErrLotNotFound = errors.New("create_reservation: lot not found")

	// ErrLotInactive возвращается, когда парковка выключена из бронирования
	ErrLotInactive = errors.New("create_reservation: lot is inactive")

	// ErrNoCapacity возвращается, когда хотя бы один день интервала
	// не вмещает запрошенное количество машин
	ErrNoCapacity = errors.New("create_reservation: no capacity for requested interval")

	// ErrBlackoutConflict возвращается, когда интервал пересекает день блокировки.
	// Частичное бронирование не допускается
	ErrBlackoutConflict = errors.New("create_reservation: interval conflicts with blackout day")

	// ErrAddonNotFound возвращается, когда запрошенная услуга не найдена или неактивна
	ErrAddonNotFound = errors.New("create_reservation: addon service not found")

	// ErrCodeNotFound возвращается, когда промокод не существует
	ErrCodeNotFound = errors.New("create_reservation: discount code not found")

	// ErrCodeNotApplicable возвращается, когда промокод существует, но не
	// применим: истёк, не начался, исчерпан или не достигнут минимальный чек
	ErrCodeNotApplicable = errors.New("create_reservation: discount code not applicable")

	// ErrConcurrencyConflict возвращается, когда конкурентные бронирования
	// не дали завершить транзакцию за отведённые попытки
	ErrConcurrencyConflict = errors.New("create_reservation: concurrency conflict, please retry")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
