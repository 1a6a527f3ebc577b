package userservice

import "errors"

var (
	// ErrProfileNotFound возвращается, когда профиль лояльности не найден
	ErrProfileNotFound = errors.New("userservice: loyalty profile not found")

	// ErrInvalidResponse возвращается при некорректном ответе UserService
	ErrInvalidResponse = errors.New("userservice: invalid response")

	// ErrServiceDegraded возвращается при недоступности UserService.
	// Вызывающая сторона переходит на переданные клиентом VIP атрибуты
	ErrServiceDegraded = errors.New("userservice: service degraded")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("userservice: internal error")
)
