package calendarsync

import "errors"

var (
	// ErrHostNotFound возвращается, когда CalendarService не знает такого хоста
	ErrHostNotFound = errors.New("calendarsync: host not found")

	// ErrInvalidResponse возвращается при некорректном ответе CalendarService
	ErrInvalidResponse = errors.New("calendarsync: invalid response")

	// ErrServiceDegraded возвращается при недоступности CalendarService
	// Занятость внешних календарей - ground truth для конфликтов, поэтому
	// вызывающий код обязан обработать эту ошибку, а не игнорировать её
	ErrServiceDegraded = errors.New("calendarsync: service degraded")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("calendarsync: internal error")
)
