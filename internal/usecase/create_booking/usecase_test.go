package create_booking

import (
	"context"
	"errors"
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

// fakeBookingRepo in-memory репозиторий бронирований
type fakeBookingRepo struct {
	bookings []*domain.Booking
	nextID   int64
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if b.IdempotencyKey != nil {
		for _, existing := range f.bookings {
			if existing.IdempotencyKey != nil &&
				*existing.IdempotencyKey == *b.IdempotencyKey &&
				existing.EventTypeID == b.EventTypeID &&
				existing.GuestEmail == b.GuestEmail &&
				existing.StartTime.Equal(b.StartTime) {
				return nil, bookingRepo.ErrDuplicateIdempotencyKey
			}
		}
	}

	f.nextID++
	stored := *b
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.bookings = append(f.bookings, &stored)
	return &stored, nil
}

func (f *fakeBookingRepo) FindByIdempotencyKey(_ context.Context, eventTypeID int64, guestEmail string, startTime time.Time, key string) (*domain.Booking, error) {
	for _, b := range f.bookings {
		if b.IdempotencyKey != nil && *b.IdempotencyKey == key &&
			b.EventTypeID == eventTypeID && b.GuestEmail == guestEmail && b.StartTime.Equal(startTime) {
			return b, nil
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
		if _, ok := hostSet[b.HostID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeEventTypeRepo in-memory репозиторий типов событий
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
	err   error
}

func (f *fakeSlotResolver) Execute(_ context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error) {
	if f.err != nil {
		return nil, f.err
	}

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

// fakeTxManager выполняет функцию без реальной транзакции
type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifyClient struct {
	events []notify.BookingEvent
	err    error
}

func (f *fakeNotifyClient) Notify(_ context.Context, event notify.BookingEvent) error {
	if f.err != nil {
		return f.err
	}
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
	monday   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slotTen  = monday.Add(10 * time.Hour)
	testNow  = monday.Add(8 * time.Hour)
	noMetric = (*metrics.Metrics)(nil)
)

type env struct {
	uc        *UseCase
	bookings  *fakeBookingRepo
	eventType *fakeEventTypeRepo
	notify    *fakeNotifyClient
	resolver  *fakeSlotResolver
}

func newEnv(et *domain.EventType, slots ...get_available_slots.Slot) *env {
	bookings := &fakeBookingRepo{}
	eventTypes := &fakeEventTypeRepo{eventType: et}
	resolver := &fakeSlotResolver{slots: slots, repo: bookings}
	notifyClient := &fakeNotifyClient{}

	uc := NewUseCase(bookings, eventTypes, resolver, notifyClient, fakeTxManager{}, noMetric, nopLogger{})
	uc.timeProvider = &fixedTimeProvider{now: testNow}

	return &env{
		uc:        uc,
		bookings:  bookings,
		eventType: eventTypes,
		notify:    notifyClient,
		resolver:  resolver,
	}
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

func slotAt(start time.Time, hostID int64) get_available_slots.Slot {
	return get_available_slots.Slot{
		Start:  start,
		End:    start.Add(30 * time.Minute),
		HostID: hostID,
	}
}

func validRequest() *Request {
	return &Request{
		EventTypeID: 1,
		SlotStart:   slotTen,
		GuestName:   "Мария Иванова",
		GuestEmail:  "maria@example.com",
	}
}

// --- tests ---

func TestExecute_CreatesConfirmedBooking(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))

	resp, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, domain.BookingStatus(resp.Status))
	assert.Equal(t, int64(10), resp.HostID)
	assert.Equal(t, slotTen, resp.StartTime)
	assert.Equal(t, slotTen.Add(30*time.Minute), resp.EndTime)
	assert.Equal(t, "Intro call", resp.EventTypeTitle)
	assert.NotEmpty(t, resp.Reference)

	require.Len(t, e.notify.events, 1)
	assert.Equal(t, notify.ChangeCreated, e.notify.events[0].ChangeType)
	assert.Equal(t, resp.ID, e.notify.events[0].BookingID)
}

func TestExecute_PendingWhenConfirmationRequired(t *testing.T) {
	et := singleHostEventType()
	et.RequiresConfirmation = true
	e := newEnv(et, slotAt(slotTen, 10))

	resp, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, domain.BookingStatus(resp.Status))
}

func TestExecute_DoubleBookSecondFails(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))

	first, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, domain.BookingStatus(first.Status))

	second := validRequest()
	second.GuestEmail = "petr@example.com"
	_, err = e.uc.Execute(context.Background(), second)
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	assert.Len(t, e.bookings.bookings, 1)
}

func TestExecute_IdempotentReplayReturnsOriginal(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))

	req := validRequest()
	req.IdempotencyKey = ptr.Ptr("req-42")

	first, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	replay, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, replay.ID)
	assert.Equal(t, first.Reference, replay.Reference)
	assert.Len(t, e.bookings.bookings, 1)

	// Повтор не шлёт второе уведомление
	assert.Len(t, e.notify.events, 1)
}

func TestExecute_SameKeyDifferentGuestsIndependent(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10), slotAt(slotTen.Add(time.Hour), 10))

	first := validRequest()
	first.IdempotencyKey = ptr.Ptr("req-42")
	_, err := e.uc.Execute(context.Background(), first)
	require.NoError(t, err)

	// Ключ идемпотентности действует в рамках (тип события, гость, слот):
	// другой гость с тем же клиентским ключом получает своё бронирование
	second := validRequest()
	second.IdempotencyKey = ptr.Ptr("req-42")
	second.GuestEmail = "petr@example.com"
	second.SlotStart = slotTen.Add(time.Hour)

	resp, err := e.uc.Execute(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, "petr@example.com", resp.GuestEmail)
	assert.Len(t, e.bookings.bookings, 2)
}

func TestExecute_IdempotentReplayAfterSlotStarted(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))

	req := validRequest()
	req.IdempotencyKey = ptr.Ptr("req-42")

	first, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Повтор приходит, когда время слота уже наступило: он всё ещё
	// возвращает исходное бронирование, а не отказ по прошедшему слоту
	e.uc.timeProvider = &fixedTimeProvider{now: slotTen.Add(10 * time.Minute)}

	replay, err := e.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, replay.ID)
	assert.Len(t, e.bookings.bookings, 1)
}

func TestExecute_RotationCounterBumped(t *testing.T) {
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
	e := newEnv(et, slotAt(slotTen, 10))

	_, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.eventType.rotation)
}

func TestExecute_NoRotationBumpForPriorityTeam(t *testing.T) {
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
			},
		},
	}
	e := newEnv(et, slotAt(slotTen, 10))

	_, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(0), e.eventType.rotation)
}

func TestExecute_NotifyFailureDoesNotFailBooking(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))
	e.notify.err = errors.New("notification service down")

	resp, err := e.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)
	assert.Len(t, e.bookings.bookings, 1)
}

func TestExecute_EventTypeNotFound(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))

	req := validRequest()
	req.EventTypeID = 99
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrEventTypeNotFound)
}

func TestExecute_UnknownSlotStart(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))

	req := validRequest()
	req.SlotStart = slotTen.Add(7 * time.Minute) // мимо сетки слотов
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_PastSlotRejected(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))

	req := validRequest()
	req.SlotStart = testNow.Add(-time.Hour)
	_, err := e.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestExecute_CalendarUnavailable(t *testing.T) {
	e := newEnv(singleHostEventType(), slotAt(slotTen, 10))
	e.resolver.err = get_available_slots.ErrCalendarUnavailable

	_, err := e.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrCalendarUnavailable)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *Request)
	}{
		{
			name:   "zero event type id",
			mutate: func(req *Request) { req.EventTypeID = 0 },
		},
		{
			name:   "zero slot start",
			mutate: func(req *Request) { req.SlotStart = time.Time{} },
		},
		{
			name:   "empty guest name",
			mutate: func(req *Request) { req.GuestName = "  " },
		},
		{
			name:   "malformed email",
			mutate: func(req *Request) { req.GuestEmail = "not-an-email" },
		},
		{
			name:   "blank idempotency key",
			mutate: func(req *Request) { req.IdempotencyKey = ptr.Ptr("  ") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(singleHostEventType(), slotAt(slotTen, 10))
			req := validRequest()
			tt.mutate(req)

			_, err := e.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
