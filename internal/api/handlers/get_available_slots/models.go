package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

// SlotResponse один доступный слот
type SlotResponse struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	HostID   int64     `json:"hostId"`
	HostName string    `json:"hostName"`
}

// AvailableSlotsResponse HTTP ответ со списком доступных слотов
type AvailableSlotsResponse struct {
	EventTypeID int64          `json:"eventTypeId"`
	Slots       []SlotResponse `json:"slots"`
}

// ToUseCaseRequest парсит query параметры в модель use case
// from и to ожидаются в формате YYYY-MM-DD, границы дат в UTC
func ToUseCaseRequest(eventTypeID int64, from, to string) (*getAvailableSlots.Request, error) {
	rangeStart, err := time.ParseInLocation(domain.DateFormat, from, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid from date: %w", err)
	}

	rangeEnd, err := time.ParseInLocation(domain.DateFormat, to, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid to date: %w", err)
	}

	return &getAvailableSlots.Request{
		EventTypeID: eventTypeID,
		RangeStart:  rangeStart,
		RangeEnd:    rangeEnd,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	out := &AvailableSlotsResponse{
		EventTypeID: resp.EventTypeID,
		Slots:       make([]SlotResponse, 0, len(resp.Slots)),
	}
	for _, s := range resp.Slots {
		out.Slots = append(out.Slots, SlotResponse{
			Start:    s.Start,
			End:      s.End,
			HostID:   s.HostID,
			HostName: s.HostName,
		})
	}
	return out
}
