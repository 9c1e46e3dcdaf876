package hosts

import "errors"

var (
	// ErrHostNotFound возвращается, когда хост не найден
	ErrHostNotFound = errors.New("host not found")

	// ErrValidation возвращается при некорректной конфигурации хоста
	ErrValidation = errors.New("invalid host configuration")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
