package get_available_slots

import "errors"

var (
	// ErrEventTypeNotFound возвращается, когда тип события не найден
	ErrEventTypeNotFound = errors.New("get_available_slots: event type not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrCalendarUnavailable возвращается при недоступности CalendarService
	// Запрос доступности не может выполниться без внешней занятости:
	// молчаливый пропуск предложил бы гостям уже занятые слоты
	ErrCalendarUnavailable = errors.New("get_available_slots: calendar service unavailable")

	// ErrDeadlineExceeded возвращается при превышении дедлайна запроса
	// Частичный список слотов неотличим от "всё занято", поэтому при
	// дедлайне возвращается ошибка, а не усечённый результат
	ErrDeadlineExceeded = errors.New("get_available_slots: deadline exceeded")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
