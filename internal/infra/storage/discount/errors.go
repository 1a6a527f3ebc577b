package discount

import "errors"

var (
	// ErrCodeNotFound возвращается, когда промокод не найден
	ErrCodeNotFound = errors.New("discount.repository: discount code not found")

	// ErrUsageExhausted возвращается, когда лимит использования исчерпан.
	// Инкремент условный: две одновременные попытки погасить код
	// с остатком 1 не должны обе пройти
	ErrUsageExhausted = errors.New("discount.repository: usage limit exhausted")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("discount.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("discount.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("discount.repository: failed to scan row")
)
