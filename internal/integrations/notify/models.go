package notify

import "time"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// ChangeType тип изменения бронирования
type ChangeType string

const (
	ChangeCreated     ChangeType = "created"
	ChangeRescheduled ChangeType = "rescheduled"
	ChangeCancelled   ChangeType = "cancelled"
)

// BookingEvent payload уведомления об изменении бронирования
// Формат шаблонов и каналы доставки - зона ответственности NotificationService
type BookingEvent struct {
	BookingID   int64      `json:"bookingId"`
	Reference   string     `json:"reference"`
	EventTypeID int64      `json:"eventTypeId"`
	HostID      int64      `json:"hostId"`
	GuestEmail  string     `json:"guestEmail"`
	StartTime   time.Time  `json:"startTime"`
	ChangeType  ChangeType `json:"changeType"`
}
