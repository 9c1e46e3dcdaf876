package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID    int64
	NewSlotStart time.Time // Точное начало нового слота из выдачи доступности
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	ID             int64
	Reference      string
	EventTypeID    int64
	HostID         int64
	StartTime      time.Time
	EndTime        time.Time
	GuestName      string
	GuestEmail     string
	Notes          *string
	Status         string
	EventTypeTitle string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// toResponse конвертирует доменную модель в response
func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:             b.ID,
		Reference:      b.Reference,
		EventTypeID:    b.EventTypeID,
		HostID:         b.HostID,
		StartTime:      b.StartTime,
		EndTime:        b.EndTime,
		GuestName:      b.GuestName,
		GuestEmail:     b.GuestEmail,
		Notes:          b.Notes,
		Status:         string(b.Status),
		EventTypeTitle: b.EventTypeTitle,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
