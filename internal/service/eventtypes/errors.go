package eventtypes

import "errors"

var (
	// ErrEventTypeNotFound возвращается, когда тип события не найден
	ErrEventTypeNotFound = errors.New("event type not found")

	// ErrHostNotFound возвращается, когда хост из конфигурации не найден
	ErrHostNotFound = errors.New("host not found")

	// ErrValidation возвращается при некорректной конфигурации типа события
	// Конфигурация отклоняется при записи, а не при запросе доступности
	ErrValidation = errors.New("invalid event type configuration")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
