package notify

import "errors"

var (
	// ErrInvalidResponse возвращается при некорректном ответе NotificationService
	ErrInvalidResponse = errors.New("notify: invalid response")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("notify: internal error")
)
