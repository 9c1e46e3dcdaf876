package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notify"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// --- fakes ---

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	m := make(map[int64]*domain.Booking, len(bookings))
	for _, b := range bookings {
		m[b.ID] = b
	}
	return &fakeBookingRepo{bookings: m}
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) GetByReference(_ context.Context, reference string) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.Reference == reference {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (f *fakeBookingRepo) GetByHostsWithFilter(_ context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error) {
	hostSet := make(map[int64]struct{}, len(filter.HostIDs))
	for _, id := range filter.HostIDs {
		hostSet[id] = struct{}{}
	}

	var out []*domain.Booking
	for _, b := range f.bookings {
		if _, ok := hostSet[b.HostID]; !ok {
			continue
		}
		if !filter.IncludeInactive && !b.IsActive() {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id int64, status domain.BookingStatus) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, id int64, reason string) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	now := time.Now()
	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	b.CancelledAt = &now
	return nil
}

type fakeNotifyClient struct {
	events []notify.BookingEvent
}

func (f *fakeNotifyClient) Notify(_ context.Context, event notify.BookingEvent) error {
	f.events = append(f.events, event)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- fixtures ---

var slotStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func confirmedBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:          id,
		Reference:   "ref-1",
		EventTypeID: 1,
		HostID:      10,
		StartTime:   slotStart,
		EndTime:     slotStart.Add(30 * time.Minute),
		GuestName:   "Мария Иванова",
		GuestEmail:  "maria@example.com",
		Status:      domain.StatusConfirmed,
	}
}

func newService(repo *fakeBookingRepo) (*Service, *fakeNotifyClient) {
	notifyClient := &fakeNotifyClient{}
	svc := NewService(repo, notifyClient, (*metrics.Metrics)(nil), nopLogger{})
	return svc, notifyClient
}

// --- tests ---

func TestGetByReference(t *testing.T) {
	repo := newFakeBookingRepo(confirmedBooking(1))
	svc, _ := newService(repo)

	resp, err := svc.GetByReference(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "ref-1", resp.Reference)

	_, err = svc.GetByReference(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetHostBookings_Filtering(t *testing.T) {
	cancelled := confirmedBooking(2)
	cancelled.Status = domain.StatusCancelled

	pending := confirmedBooking(3)
	pending.Status = domain.StatusPending

	repo := newFakeBookingRepo(confirmedBooking(1), cancelled, pending)
	svc, _ := newService(repo)

	// По умолчанию отменённые не возвращаются
	resp, err := svc.GetHostBookings(context.Background(), &models.GetHostBookingsRequest{HostID: 10})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	// IncludeInactive возвращает и отменённые
	resp, err = svc.GetHostBookings(context.Background(), &models.GetHostBookingsRequest{HostID: 10, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 3)

	// Фильтр по статусу
	resp, err = svc.GetHostBookings(context.Background(), &models.GetHostBookingsRequest{
		HostID: 10,
		Status: ptr.Ptr("pending"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(3), resp.Bookings[0].ID)

	// Неизвестный статус отклоняется
	_, err = svc.GetHostBookings(context.Background(), &models.GetHostBookingsRequest{
		HostID: 10,
		Status: ptr.Ptr("unknown"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	repo := newFakeBookingRepo(confirmedBooking(1))
	svc, notifyClient := newService(repo)

	resp, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{Reason: "план изменился"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, "план изменился", *resp.CancellationReason)
	assert.NotNil(t, resp.CancelledAt)

	require.Len(t, notifyClient.events, 1)
	assert.Equal(t, notify.ChangeCancelled, notifyClient.events[0].ChangeType)
}

func TestCancel_Idempotent(t *testing.T) {
	repo := newFakeBookingRepo(confirmedBooking(1))
	svc, notifyClient := newService(repo)

	first, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{Reason: "план изменился"})
	require.NoError(t, err)

	// Повторная отмена - no-op: то же терминальное состояние, без ошибки
	second, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{Reason: "другая причина"})
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, *first.CancellationReason, *second.CancellationReason)

	// Уведомление ушло только при первой отмене
	assert.Len(t, notifyClient.events, 1)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCompleted, domain.StatusNoShow} {
		b := confirmedBooking(1)
		b.Status = status
		svc, _ := newService(newFakeBookingRepo(b))

		_, err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{})
		assert.ErrorIs(t, err, ErrCannotCancel, "status=%s", status)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.BookingStatus
		to      string
		wantErr error
	}{
		{name: "pending to confirmed", from: domain.StatusPending, to: "confirmed"},
		{name: "pending to cancelled", from: domain.StatusPending, to: "cancelled"},
		{name: "confirmed to completed", from: domain.StatusConfirmed, to: "completed"},
		{name: "confirmed to no_show", from: domain.StatusConfirmed, to: "no_show"},
		{name: "pending to completed", from: domain.StatusPending, to: "completed", wantErr: ErrInvalidTransition},
		{name: "completed to confirmed", from: domain.StatusCompleted, to: "confirmed", wantErr: ErrInvalidTransition},
		{name: "cancelled to confirmed", from: domain.StatusCancelled, to: "confirmed", wantErr: ErrInvalidTransition},
		{name: "unknown status", from: domain.StatusPending, to: "archived", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := confirmedBooking(1)
			b.Status = tt.from
			svc, _ := newService(newFakeBookingRepo(b))

			resp, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{Status: tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, resp.Status)
		})
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _ := newService(newFakeBookingRepo())

	_, err := svc.UpdateStatus(context.Background(), 99, &models.UpdateStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
