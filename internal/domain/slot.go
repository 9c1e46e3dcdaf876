package domain

import "time"

// AvailableSlot represents a bookable time slot with a candidate host
// Transient projection: computed per request, never persisted or cached,
// because validity depends on "now" and on other hosts' bookings
type AvailableSlot struct {
	Start    time.Time
	End      time.Time
	HostID   int64
	HostName string
}

// BusyInterval занятый интервал из внешнего календаря хоста
type BusyInterval struct {
	Start time.Time
	End   time.Time
}
