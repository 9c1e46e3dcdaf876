package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
	StatusNoShow    BookingStatus = "no_show"
)

// Booking represents a confirmed or pending reservation of a host's time slot
type Booking struct {
	ID          int64
	Reference   string // UUID, внешний идентификатор для гостя
	EventTypeID int64
	HostID      int64 // Назначенный хост (для командных событий определяется при бронировании)
	StartTime   time.Time
	EndTime     time.Time // Всегда StartTime + длительность события

	GuestName  string
	GuestEmail string
	Notes      *string

	Status         BookingStatus
	IdempotencyKey *string

	// Denormalized data for history
	EventTypeTitle string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies its host's time
// (non-cancelled bookings participate in conflict detection)
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// IsTerminal returns true if no further status transitions are allowed
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted || b.Status == StatusNoShow
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the booking can be moved to another slot
func (b *Booking) CanBeRescheduled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanTransitionTo validates a status transition against the booking state machine:
// pending -> confirmed | cancelled; confirmed -> cancelled | completed | no_show
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch b.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted || next == StatusNoShow
	default:
		return false
	}
}

// HostBookingsFilter фильтр для получения бронирований хостов
type HostBookingsFilter struct {
	HostIDs         []int64        // Обязательный параметр, хотя бы один хост
	StartTime       *time.Time     // Начало периода (опционально)
	EndTime         *time.Time     // Конец периода (опционально)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые бронирования
	ForUpdate       bool           // Блокировать выбранные строки (только внутри транзакции)
}
