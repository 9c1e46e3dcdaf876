package models

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// Request модели

// WindowRequest одно окно доступности внутри дня
type WindowRequest struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "17:00"
}

// CreateHostRequest запрос на создание хоста
// Availability индексируется днём недели (0 = воскресенье, 6 = суббота),
// пропущенный день означает недоступность
type CreateHostRequest struct {
	DisplayName  string                  `json:"displayName"`
	Timezone     string                  `json:"timezone"` // IANA идентификатор
	Availability map[int][]WindowRequest `json:"availability,omitempty"`
}

// UpdateAvailabilityRequest запрос на замену недельного расписания хоста
type UpdateAvailabilityRequest struct {
	Availability map[int][]WindowRequest `json:"availability"`
}

// ToDomainAvailability конвертирует расписание запроса в доменную модель
func ToDomainAvailability(windows map[int][]WindowRequest) (domain.WeeklyAvailability, error) {
	var availability domain.WeeklyAvailability

	for day, list := range windows {
		if day < 0 || day > 6 {
			return availability, fmt.Errorf("invalid weekday: %d", day)
		}
		for _, w := range list {
			start, err := types.NewTimeStringFromString(w.Start)
			if err != nil {
				return availability, err
			}
			end, err := types.NewTimeStringFromString(w.End)
			if err != nil {
				return availability, err
			}
			availability[day] = append(availability[day], domain.AvailabilityWindow{
				Start: start,
				End:   end,
			})
		}
	}

	return availability, nil
}

// Response модели

// WindowResponse одно окно доступности в ответе
type WindowResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// HostResponse ответ с данными хоста
type HostResponse struct {
	ID           int64                    `json:"id"`
	DisplayName  string                   `json:"displayName"`
	Timezone     string                   `json:"timezone"`
	IsActive     bool                     `json:"isActive"`
	Availability map[int][]WindowResponse `json:"availability"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// FromDomainHost конвертирует domain модель в DTO
func FromDomainHost(h *domain.Host) *HostResponse {
	if h == nil {
		return nil
	}

	availability := make(map[int][]WindowResponse)
	for day := 0; day < 7; day++ {
		for _, w := range h.Availability[day] {
			availability[day] = append(availability[day], WindowResponse{
				Start: w.Start.String(),
				End:   w.End.String(),
			})
		}
	}

	return &HostResponse{
		ID:           h.ID,
		DisplayName:  h.DisplayName,
		Timezone:     h.Timezone,
		IsActive:     h.IsActive,
		Availability: availability,
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
	}
}
