package domain

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/pkg/types"
)

// AvailabilityWindow одно окно доступности внутри дня ("09:00" - "17:00")
type AvailabilityWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// WeeklyAvailability недельное расписание хоста: семь упорядоченных списков
// окон, по одному на день недели (time.Weekday: Sunday = 0)
// Пустой список означает, что в этот день хост недоступен
type WeeklyAvailability [7][]AvailabilityWindow

// WindowsFor возвращает окна доступности для дня недели
func (w WeeklyAvailability) WindowsFor(day time.Weekday) []AvailabilityWindow {
	return w[int(day)]
}

// Host represents a schedulable identity with a timezone and weekly availability
// Hosts are never deleted, only deactivated
type Host struct {
	ID           int64
	DisplayName  string
	Timezone     string // IANA идентификатор, например "Europe/Moscow"
	IsActive     bool
	Availability WeeklyAvailability
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Location parses the host's IANA timezone
func (h *Host) Location() (*time.Location, error) {
	return time.LoadLocation(h.Timezone)
}
