package models

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Request модели

// TeamMemberRequest участник команды в запросе
type TeamMemberRequest struct {
	HostID       int64 `json:"hostId"`
	PriorityRank int   `json:"priorityRank"`
	DailyCap     *int  `json:"dailyCap,omitempty"`
}

// TeamSettingsRequest конфигурация команды в запросе
type TeamSettingsRequest struct {
	Distribution string              `json:"distribution"`
	Members      []TeamMemberRequest `json:"members"`
}

// CreateEventTypeRequest запрос на создание типа события
// Поля с указателями различают "не задано" (применяется дефолт)
// и явно заданное значение, которое валидируется как есть
type CreateEventTypeRequest struct {
	HostID               *int64               `json:"hostId,omitempty"` // Обязателен для событий с одним хостом
	Title                string               `json:"title"`
	DurationMinutes      int                  `json:"durationMinutes"`
	BufferBeforeMinutes  int                  `json:"bufferBeforeMinutes,omitempty"`
	BufferAfterMinutes   int                  `json:"bufferAfterMinutes,omitempty"`
	SlotIntervalMinutes  *int                 `json:"slotIntervalMinutes,omitempty"`
	MinNoticeMinutes     *int                 `json:"minNoticeMinutes,omitempty"`
	MaxAdvanceMinutes    *int                 `json:"maxAdvanceMinutes,omitempty"`
	MaxPerDay            *int                 `json:"maxPerDay,omitempty"`
	RequiresConfirmation bool                 `json:"requiresConfirmation,omitempty"`
	Team                 *TeamSettingsRequest `json:"team,omitempty"`
}

// UpdateEventTypeRequest запрос на обновление типа события
// Семантика полей совпадает с CreateEventTypeRequest
type UpdateEventTypeRequest = CreateEventTypeRequest

// ToDomain конвертирует request в доменную модель с применением дефолтов
func (r *CreateEventTypeRequest) ToDomain() *domain.EventType {
	et := &domain.EventType{
		HostID:               r.HostID,
		Title:                r.Title,
		DurationMinutes:      r.DurationMinutes,
		BufferBeforeMinutes:  r.BufferBeforeMinutes,
		BufferAfterMinutes:   r.BufferAfterMinutes,
		SlotIntervalMinutes:  domain.DefaultSlotIntervalMinutes,
		MinNoticeMinutes:     domain.DefaultMinNoticeMinutes,
		MaxAdvanceMinutes:    domain.DefaultMaxAdvanceMinutes,
		MaxPerDay:            r.MaxPerDay,
		RequiresConfirmation: r.RequiresConfirmation,
	}

	if r.SlotIntervalMinutes != nil {
		et.SlotIntervalMinutes = *r.SlotIntervalMinutes
	}
	if r.MinNoticeMinutes != nil {
		et.MinNoticeMinutes = *r.MinNoticeMinutes
	}
	if r.MaxAdvanceMinutes != nil {
		et.MaxAdvanceMinutes = *r.MaxAdvanceMinutes
	}

	if r.Team != nil {
		members := make([]domain.TeamMember, 0, len(r.Team.Members))
		for _, m := range r.Team.Members {
			members = append(members, domain.TeamMember{
				HostID:       m.HostID,
				PriorityRank: m.PriorityRank,
				DailyCap:     m.DailyCap,
			})
		}
		et.Team = &domain.TeamSettings{
			Distribution: domain.DistributionPolicy(r.Team.Distribution),
			Members:      members,
		}
	}

	return et
}

// Response модели

// TeamMemberResponse участник команды в ответе
type TeamMemberResponse struct {
	HostID       int64 `json:"hostId"`
	PriorityRank int   `json:"priorityRank"`
	DailyCap     *int  `json:"dailyCap,omitempty"`
}

// TeamSettingsResponse конфигурация команды в ответе
type TeamSettingsResponse struct {
	Distribution string               `json:"distribution"`
	Members      []TeamMemberResponse `json:"members"`
}

// EventTypeResponse ответ с данными типа события
type EventTypeResponse struct {
	ID                   int64                 `json:"id"`
	HostID               *int64                `json:"hostId,omitempty"`
	Title                string                `json:"title"`
	DurationMinutes      int                   `json:"durationMinutes"`
	BufferBeforeMinutes  int                   `json:"bufferBeforeMinutes"`
	BufferAfterMinutes   int                   `json:"bufferAfterMinutes"`
	SlotIntervalMinutes  int                   `json:"slotIntervalMinutes"`
	MinNoticeMinutes     int                   `json:"minNoticeMinutes"`
	MaxAdvanceMinutes    int                   `json:"maxAdvanceMinutes"`
	MaxPerDay            *int                  `json:"maxPerDay,omitempty"`
	RequiresConfirmation bool                  `json:"requiresConfirmation"`
	Team                 *TeamSettingsResponse `json:"team,omitempty"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

// FromDomainEventType конвертирует domain модель в DTO
func FromDomainEventType(et *domain.EventType) *EventTypeResponse {
	if et == nil {
		return nil
	}

	resp := &EventTypeResponse{
		ID:                   et.ID,
		HostID:               et.HostID,
		Title:                et.Title,
		DurationMinutes:      et.DurationMinutes,
		BufferBeforeMinutes:  et.BufferBeforeMinutes,
		BufferAfterMinutes:   et.BufferAfterMinutes,
		SlotIntervalMinutes:  et.SlotIntervalMinutes,
		MinNoticeMinutes:     et.MinNoticeMinutes,
		MaxAdvanceMinutes:    et.MaxAdvanceMinutes,
		MaxPerDay:            et.MaxPerDay,
		RequiresConfirmation: et.RequiresConfirmation,
		CreatedAt:            et.CreatedAt,
		UpdatedAt:            et.UpdatedAt,
	}

	if et.Team != nil {
		members := make([]TeamMemberResponse, 0, len(et.Team.Members))
		for _, m := range et.Team.Members {
			members = append(members, TeamMemberResponse{
				HostID:       m.HostID,
				PriorityRank: m.PriorityRank,
				DailyCap:     m.DailyCap,
			})
		}
		resp.Team = &TeamSettingsResponse{
			Distribution: string(et.Team.Distribution),
			Members:      members,
		}
	}

	return resp
}
