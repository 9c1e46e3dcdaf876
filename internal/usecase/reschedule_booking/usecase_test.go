package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	eventTypeStorage "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/eventtype"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notify"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
	"github.com/m04kA/SMC-SchedulingService/pkg/timewindow"
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

func (f *fakeBookingRepo) GetByHostsWithFilter(_ context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error) {
	hostSet := make(map[int64]struct{}, len(filter.HostIDs))
	for _, id := range filter.HostIDs {
		hostSet[id] = struct{}{}
	}

	var out []*domain.Booking
	for _, b := range f.bookings {
		if _, ok := hostSet[b.HostID]; ok {
			out = append(out, b)
		}
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

func (f *fakeBookingRepo) UpdateSlot(_ context.Context, id int64, hostID int64, start, end time.Time) error {
	b, ok := f.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.HostID = hostID
	b.StartTime = start
	b.EndTime = end
	return nil
}

type fakeEventTypeRepo struct {
	eventType *domain.EventType
	rotation  int64
}

func (f *fakeEventTypeRepo) GetByID(_ context.Context, id int64) (*domain.EventType, error) {
	if f.eventType == nil || f.eventType.ID != id {
		return nil, eventTypeStorage.ErrEventTypeNotFound
	}
	return f.eventType, nil
}

func (f *fakeEventTypeRepo) IncrementRotationCounter(_ context.Context, _ int64) error {
	f.rotation++
	return nil
}

// fakeSlotResolver выдаёт настроенные слоты за вычетом конфликтующих
// с активными бронированиями общего репозитория
type fakeSlotResolver struct {
	slots []get_available_slots.Slot
	repo  *fakeBookingRepo
}

func (f *fakeSlotResolver) Execute(_ context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error) {
	free := make([]get_available_slots.Slot, 0, len(f.slots))
	for _, s := range f.slots {
		taken := false
		for _, b := range f.repo.bookings {
			if b.HostID == s.HostID && b.IsActive() && timewindow.Overlaps(s.Start, s.End, b.StartTime, b.EndTime) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, s)
		}
	}
	return &get_available_slots.Response{EventTypeID: req.EventTypeID, Slots: free}, nil
}

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifyClient struct {
	events []notify.BookingEvent
}

func (f *fakeNotifyClient) Notify(_ context.Context, event notify.BookingEvent) error {
	f.events = append(f.events, event)
	return nil
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// --- fixtures ---

var (
	// 2026-03-02 - понедельник
	monday  = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	testNow = monday.Add(8 * time.Hour)
)

func existingBooking() *domain.Booking {
	return &domain.Booking{
		ID:          1,
		Reference:   "ref-1",
		EventTypeID: 1,
		HostID:      10,
		StartTime:   monday.Add(10 * time.Hour),
		EndTime:     monday.Add(10*time.Hour + 30*time.Minute),
		GuestName:   "Мария Иванова",
		GuestEmail:  "maria@example.com",
		Status:      domain.StatusConfirmed,
	}
}

func slotAt(start time.Time, hostID int64) get_available_slots.Slot {
	return get_available_slots.Slot{Start: start, End: start.Add(30 * time.Minute), HostID: hostID}
}

type env struct {
	uc        *UseCase
	bookings  *fakeBookingRepo
	eventType *fakeEventTypeRepo
	notify    *fakeNotifyClient
}

func newEnv(et *domain.EventType, repo *fakeBookingRepo, slots ...get_available_slots.Slot) *env {
	eventTypes := &fakeEventTypeRepo{eventType: et}
	resolver := &fakeSlotResolver{slots: slots, repo: repo}
	notifyClient := &fakeNotifyClient{}

	uc := NewUseCase(repo, eventTypes, resolver, notifyClient, fakeTxManager{}, (*metrics.Metrics)(nil), nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}

	return &env{uc: uc, bookings: repo, eventType: eventTypes, notify: notifyClient}
}

func singleHostEventType() *domain.EventType {
	return &domain.EventType{
		ID:                  1,
		HostID:              ptr.Ptr(int64(10)),
		Title:               "Intro call",
		DurationMinutes:     30,
		SlotIntervalMinutes: 15,
		MinNoticeMinutes:    60,
	}
}

// --- tests ---

func TestExecute_MovesBookingAndFreesOrigin(t *testing.T) {
	repo := newFakeBookingRepo(existingBooking())
	newStart := monday.Add(14 * time.Hour)
	e := newEnv(singleHostEventType(), repo, slotAt(newStart, 10))

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, NewSlotStart: newStart})
	require.NoError(t, err)

	assert.Equal(t, newStart, resp.StartTime)
	assert.Equal(t, newStart.Add(30*time.Minute), resp.EndTime)
	assert.Equal(t, domain.StatusConfirmed, domain.BookingStatus(resp.Status))

	// Исходный интервал свободен: новое бронирование другого гостя
	// на 10:00 не конфликтует
	stored := repo.bookings[1]
	assert.False(t, timewindow.Overlaps(
		monday.Add(10*time.Hour), monday.Add(10*time.Hour+30*time.Minute),
		stored.StartTime, stored.EndTime,
	))

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notify.ChangeRescheduled, e.notify.events[0].ChangeType)
}

func TestExecute_OverlappingShiftWithinOwnSlot(t *testing.T) {
	repo := newFakeBookingRepo(existingBooking())
	// Сдвиг на 15 минут пересекается с исходным интервалом: собственное
	// бронирование не должно считаться конфликтом
	newStart := monday.Add(10*time.Hour + 15*time.Minute)
	e := newEnv(singleHostEventType(), repo, slotAt(newStart, 10))

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, NewSlotStart: newStart})
	require.NoError(t, err)
	assert.Equal(t, newStart, resp.StartTime)
}

func TestExecute_NewSlotTakenByOtherBooking(t *testing.T) {
	other := &domain.Booking{
		ID:          2,
		EventTypeID: 1,
		HostID:      10,
		StartTime:   monday.Add(14 * time.Hour),
		EndTime:     monday.Add(14*time.Hour + 30*time.Minute),
		Status:      domain.StatusConfirmed,
	}
	repo := newFakeBookingRepo(existingBooking(), other)
	newStart := monday.Add(14 * time.Hour)
	e := newEnv(singleHostEventType(), repo, slotAt(newStart, 10))

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, NewSlotStart: newStart})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_TeamHostReResolved(t *testing.T) {
	et := &domain.EventType{
		ID:                  1,
		Title:               "Team call",
		DurationMinutes:     30,
		SlotIntervalMinutes: 30,
		MinNoticeMinutes:    60,
		Team: &domain.TeamSettings{
			Distribution: domain.DistributionPriority,
			Members: []domain.TeamMember{
				{HostID: 10, PriorityRank: 1},
				{HostID: 20, PriorityRank: 2},
			},
		},
	}
	repo := newFakeBookingRepo(existingBooking())
	// На новый слот доступен только второй участник команды
	newStart := monday.Add(14 * time.Hour)
	e := newEnv(et, repo, slotAt(newStart, 20))

	resp, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, NewSlotStart: newStart})
	require.NoError(t, err)
	assert.Equal(t, int64(20), resp.HostID)
}

func TestExecute_RoundRobinCounterBumped(t *testing.T) {
	et := &domain.EventType{
		ID:                  1,
		Title:               "Team call",
		DurationMinutes:     30,
		SlotIntervalMinutes: 30,
		MinNoticeMinutes:    60,
		Team: &domain.TeamSettings{
			Distribution: domain.DistributionRoundRobin,
			Members: []domain.TeamMember{
				{HostID: 10, PriorityRank: 1},
				{HostID: 20, PriorityRank: 2},
			},
		},
	}
	repo := newFakeBookingRepo(existingBooking())
	newStart := monday.Add(14 * time.Hour)
	e := newEnv(et, repo, slotAt(newStart, 20))

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, NewSlotStart: newStart})
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.eventType.rotation)
}

func TestExecute_CancelledBookingNotReschedulable(t *testing.T) {
	b := existingBooking()
	b.Status = domain.StatusCancelled
	repo := newFakeBookingRepo(b)
	newStart := monday.Add(14 * time.Hour)
	e := newEnv(singleHostEventType(), repo, slotAt(newStart, 10))

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, NewSlotStart: newStart})
	assert.ErrorIs(t, err, ErrNotReschedulable)
}

func TestExecute_BookingNotFound(t *testing.T) {
	repo := newFakeBookingRepo()
	e := newEnv(singleHostEventType(), repo)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 99, NewSlotStart: monday.Add(14 * time.Hour)})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_PastSlotRejected(t *testing.T) {
	repo := newFakeBookingRepo(existingBooking())
	e := newEnv(singleHostEventType(), repo)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 1, NewSlotStart: testNow.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_Validation(t *testing.T) {
	repo := newFakeBookingRepo(existingBooking())
	e := newEnv(singleHostEventType(), repo)

	_, err := e.uc.Execute(context.Background(), &Request{BookingID: 0, NewSlotStart: monday})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.uc.Execute(context.Background(), &Request{BookingID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
