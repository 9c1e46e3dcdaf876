package domain

import "time"

// EventType represents a bookable meeting definition
// Owned by exactly one host, or shared by a team when Team is set
type EventType struct {
	ID     int64
	HostID *int64 // NULL для командных событий
	Title  string

	DurationMinutes     int
	BufferBeforeMinutes int
	BufferAfterMinutes  int
	SlotIntervalMinutes int // Шаг генерации слотов (например, 15)

	MinNoticeMinutes  int // Минимальный интервал от "сейчас" до первого доступного слота
	MaxAdvanceMinutes int // Максимальный горизонт бронирования от "сейчас"

	MaxPerDay            *int // Лимит бронирований в день (nil = без лимита)
	RequiresConfirmation bool // true: бронирования создаются в статусе pending

	Team *TeamSettings // nil для событий с одним хостом

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTeamEvent returns true if the event type is shared by a team
func (e *EventType) IsTeamEvent() bool {
	return e.Team != nil
}

// Duration returns the meeting duration
func (e *EventType) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// SlotInterval returns the candidate slot generation step
func (e *EventType) SlotInterval() time.Duration {
	return time.Duration(e.SlotIntervalMinutes) * time.Minute
}

// MinNotice returns the minimum booking notice as a duration
func (e *EventType) MinNotice() time.Duration {
	return time.Duration(e.MinNoticeMinutes) * time.Minute
}

// MaxAdvance returns the maximum advance window as a duration
func (e *EventType) MaxAdvance() time.Duration {
	return time.Duration(e.MaxAdvanceMinutes) * time.Minute
}

// HasDailyCap returns true if the event type limits bookings per day
func (e *EventType) HasDailyCap() bool {
	return e.MaxPerDay != nil && *e.MaxPerDay > 0
}

// InitialStatus returns the status a freshly created booking receives
func (e *EventType) InitialStatus() BookingStatus {
	if e.RequiresConfirmation {
		return StatusPending
	}
	return StatusConfirmed
}

// HostIDs returns all host ids able to serve this event type
func (e *EventType) HostIDs() []int64 {
	if e.Team == nil {
		if e.HostID == nil {
			return nil
		}
		return []int64{*e.HostID}
	}

	ids := make([]int64, 0, len(e.Team.Members))
	for _, m := range e.Team.Members {
		ids = append(ids, m.HostID)
	}
	return ids
}
