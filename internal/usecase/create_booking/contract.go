package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notify"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	FindByIdempotencyKey(ctx context.Context, eventTypeID int64, guestEmail string, startTime time.Time, idempotencyKey string) (*domain.Booking, error)
	GetByHostsWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error)
}

// EventTypeRepository интерфейс репозитория типов событий
type EventTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.EventType, error)
	IncrementRotationCounter(ctx context.Context, eventTypeID int64) error
}

// SlotResolver повторно вычисляет доступные слоты на дату запрошенного слота
// Внутри транзакции коммита чтения резолвера видят состояние транзакции
type SlotResolver interface {
	Execute(ctx context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error)
}

// NotificationClient интерфейс клиента NotificationService
// Ошибки доставки не откатывают бронирование
type NotificationClient interface {
	Notify(ctx context.Context, event notify.BookingEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// BookingMetrics интерфейс бизнес-метрик бронирований
type BookingMetrics interface {
	IncBookingOutcome(outcome string)
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
