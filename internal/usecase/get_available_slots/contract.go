package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByHostsWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error)
}

// EventTypeRepository интерфейс репозитория типов событий
type EventTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.EventType, error)
	GetRotationCounter(ctx context.Context, eventTypeID int64) (int64, error)
}

// HostRepository интерфейс репозитория хостов
type HostRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Host, error)
}

// CalendarClient интерфейс клиента CalendarService
// Отдаёт занятость внешних календарей хоста за период
type CalendarClient interface {
	GetBusyIntervals(ctx context.Context, hostID int64, from, to time.Time) ([]domain.BusyInterval, error)
}

// SlotMetrics счётчик запросов доступности
type SlotMetrics interface {
	IncSlotQuery(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
