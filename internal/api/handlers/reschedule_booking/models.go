package reschedule_booking

import (
	"fmt"
	"time"

	rescheduleBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewSlotStart string `json:"newSlotStart"` // RFC3339, начало слота из выдачи доступности
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
func (r *RescheduleBookingRequest) ToUseCaseRequest(bookingID int64) (*rescheduleBooking.Request, error) {
	newSlotStart, err := time.Parse(time.RFC3339, r.NewSlotStart)
	if err != nil {
		return nil, fmt.Errorf("invalid newSlotStart: %w", err)
	}

	return &rescheduleBooking.Request{
		BookingID:    bookingID,
		NewSlotStart: newSlotStart,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *BookingResponse {
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
