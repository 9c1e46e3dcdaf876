package create_booking

import (
	"fmt"
	"time"

	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
// slotStart ожидается в формате RFC3339 и должен совпадать с началом слота
// из выдачи доступности
type CreateBookingRequest struct {
	EventTypeID    int64   `json:"eventTypeId"`
	SlotStart      string  `json:"slotStart"` // "2026-03-02T10:00:00Z"
	GuestName      string  `json:"guestName"`
	GuestEmail     string  `json:"guestEmail"`
	Notes          *string `json:"notes,omitempty"`
	IdempotencyKey *string `json:"idempotencyKey,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID             int64   `json:"id"`
	Reference      string  `json:"reference"`
	EventTypeID    int64   `json:"eventTypeId"`
	HostID         int64   `json:"hostId"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	GuestName      string  `json:"guestName"`
	GuestEmail     string  `json:"guestEmail"`
	Notes          *string `json:"notes,omitempty"`
	Status         string  `json:"status"`
	EventTypeTitle string  `json:"eventTypeTitle"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	slotStart, err := time.Parse(time.RFC3339, r.SlotStart)
	if err != nil {
		return nil, fmt.Errorf("invalid slotStart: %w", err)
	}

	return &createBooking.Request{
		EventTypeID:    r.EventTypeID,
		SlotStart:      slotStart,
		GuestName:      r.GuestName,
		GuestEmail:     r.GuestEmail,
		Notes:          r.Notes,
		IdempotencyKey: r.IdempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:             resp.ID,
		Reference:      resp.Reference,
		EventTypeID:    resp.EventTypeID,
		HostID:         resp.HostID,
		StartTime:      resp.StartTime.Format(time.RFC3339),
		EndTime:        resp.EndTime.Format(time.RFC3339),
		GuestName:      resp.GuestName,
		GuestEmail:     resp.GuestEmail,
		Notes:          resp.Notes,
		Status:         resp.Status,
		EventTypeTitle: resp.EventTypeTitle,
		CreatedAt:      resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      resp.UpdatedAt.Format(time.RFC3339),
	}
}
