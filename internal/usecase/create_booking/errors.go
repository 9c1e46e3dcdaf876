package create_booking

import "errors"

var (
	// ErrEventTypeNotFound возвращается, когда тип события не найден
	ErrEventTypeNotFound = errors.New("create_booking: event type not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrSlotUnavailable возвращается, когда запрошенный слот не прошёл
	// повторную валидацию на момент коммита
	// Ожидаемая ошибка: вызывающий выбирает другой слот
	ErrSlotUnavailable = errors.New("create_booking: slot is not available")

	// ErrConcurrencyConflict возвращается, когда конкурирующие коммиты
	// исчерпали внутренние повторы транзакции
	ErrConcurrencyConflict = errors.New("create_booking: concurrency conflict")

	// ErrCalendarUnavailable возвращается при недоступности CalendarService
	ErrCalendarUnavailable = errors.New("create_booking: calendar service unavailable")

	// ErrDeadlineExceeded возвращается при превышении дедлайна запроса
	ErrDeadlineExceeded = errors.New("create_booking: deadline exceeded")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
