package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrEventTypeNotFound возвращается, когда тип события не найден
	ErrEventTypeNotFound = errors.New("reschedule_booking: event type not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrNotReschedulable возвращается для бронирований в терминальном статусе
	ErrNotReschedulable = errors.New("reschedule_booking: booking cannot be rescheduled")

	// ErrSlotUnavailable возвращается, когда новый слот не прошёл
	// повторную валидацию на момент коммита
	ErrSlotUnavailable = errors.New("reschedule_booking: slot is not available")

	// ErrConcurrencyConflict возвращается, когда конкурирующие коммиты
	// исчерпали внутренние повторы транзакции
	ErrConcurrencyConflict = errors.New("reschedule_booking: concurrency conflict")

	// ErrCalendarUnavailable возвращается при недоступности CalendarService
	ErrCalendarUnavailable = errors.New("reschedule_booking: calendar service unavailable")

	// ErrDeadlineExceeded возвращается при превышении дедлайна запроса
	ErrDeadlineExceeded = errors.New("reschedule_booking: deadline exceeded")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
