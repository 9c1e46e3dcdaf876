package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	eventTypeRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/eventtype"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/timewindow"
)

// UseCase use case для получения доступных слотов
// Чтение без блокировок: работает на снапшоте бронирований и занятости,
// безопасно выполняется параллельно по хостам и периодам
type UseCase struct {
	bookingRepo    BookingRepository
	eventTypeRepo  EventTypeRepository
	hostRepo       HostRepository
	calendarClient CalendarClient
	metrics        SlotMetrics
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	eventTypeRepo EventTypeRepository,
	hostRepo HostRepository,
	calendarClient CalendarClient,
	slotMetrics SlotMetrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:    bookingRepo,
		eventTypeRepo:  eventTypeRepo,
		hostRepo:       hostRepo,
		calendarClient: calendarClient,
		metrics:        slotMetrics,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	if err != nil {
		uc.metrics.IncSlotQuery(metrics.SlotResultError)
		return nil, err
	}

	if len(resp.Slots) == 0 {
		uc.metrics.IncSlotQuery(metrics.SlotResultEmpty)
	} else {
		uc.metrics.IncSlotQuery(metrics.SlotResultOK)
	}
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: event_type=%d, range=%s..%s",
		req.EventTypeID, req.RangeStart.Format(domain.DateFormat), req.RangeEnd.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем тип события
	et, err := uc.eventTypeRepo.GetByID(ctx, req.EventTypeID)
	if err != nil {
		if errors.Is(err, eventTypeRepo.ErrEventTypeNotFound) {
			uc.logger.Warn("GetAvailableSlots: event type id=%d not found", req.EventTypeID)
			return nil, ErrEventTypeNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get event type id=%d: %v", req.EventTypeID, err)
		return nil, fmt.Errorf("%w: failed to get event type: %v", ErrInternal, err)
	}

	// 4. Получаем хостов типа события, отбрасываем деактивированных
	// Команда, все участники которой деактивированы - валидный пустой
	// результат, а не ошибка конфигурации
	hosts, err := uc.hostRepo.GetByIDs(ctx, et.HostIDs())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get hosts: %v", err)
		return nil, fmt.Errorf("%w: failed to get hosts: %v", ErrInternal, err)
	}

	activeHosts := make([]*domain.Host, 0, len(hosts))
	for _, h := range hosts {
		if h.IsActive {
			activeHosts = append(activeHosts, h)
		}
	}

	if len(activeHosts) == 0 {
		uc.logger.Info("GetAvailableSlots: event_type=%d has no active hosts", req.EventTypeID)
		return &Response{EventTypeID: req.EventTypeID, Slots: []Slot{}}, nil
	}

	// 5. Снапшот бронирований и внешней занятости за период с запасом:
	// локальные дни хостов в других зонах могут выходить за границы периода
	fetchFrom := req.RangeStart.Add(-24 * time.Hour)
	fetchTo := req.RangeEnd.Add(48 * time.Hour)

	snapshot, err := uc.loadSnapshot(ctx, activeHosts, fetchFrom, fetchTo)
	if err != nil {
		return nil, err
	}

	// 6. Генерируем слоты-кандидаты по каждому хосту в его зоне
	memberSlots := make(map[int64]map[int64]struct{}, len(activeHosts))
	merged := make(map[int64]timewindow.Window)
	locsByHost := make(map[int64]*time.Location, len(activeHosts))
	hostsByID := make(map[int64]*domain.Host, len(activeHosts))

	for _, h := range activeHosts {
		loc, err := h.Location()
		if err != nil {
			uc.logger.Error("GetAvailableSlots: host id=%d has invalid timezone %q: %v", h.ID, h.Timezone, err)
			return nil, fmt.Errorf("%w: invalid host timezone: %v", ErrInternal, err)
		}

		locsByHost[h.ID] = loc
		hostsByID[h.ID] = h

		slots, err := uc.resolveHostCandidates(ctx, h, et, loc, now, req, snapshot.bookingsByHost[h.ID])
		if err != nil {
			return nil, err
		}

		memberSlots[h.ID] = make(map[int64]struct{}, len(slots))
		for _, s := range slots {
			memberSlots[h.ID][s.Start.Unix()] = struct{}{}
			merged[s.Start.Unix()] = s
		}
	}

	// 7. Назначаем хостов и фильтруем конфликты
	result, err := uc.assembleSlots(ctx, et, hostsByID, locsByHost, memberSlots, merged, snapshot)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: event_type=%d, %d slots in range %s..%s",
		req.EventTypeID, len(result), req.RangeStart.Format(domain.DateFormat), req.RangeEnd.Format(domain.DateFormat))

	return &Response{EventTypeID: req.EventTypeID, Slots: result}, nil
}

// bookingsSnapshot снапшот бронирований и внешней занятости на момент запроса
type bookingsSnapshot struct {
	bookingsByHost map[int64][]*domain.Booking
	busyByHost     map[int64][]domain.BusyInterval
}

// loadSnapshot загружает бронирования и занятость внешних календарей хостов
func (uc *UseCase) loadSnapshot(ctx context.Context, hosts []*domain.Host, from, to time.Time) (*bookingsSnapshot, error) {
	hostIDs := make([]int64, 0, len(hosts))
	for _, h := range hosts {
		hostIDs = append(hostIDs, h.ID)
	}

	bookings, err := uc.bookingRepo.GetByHostsWithFilter(ctx, domain.HostBookingsFilter{
		HostIDs:   hostIDs,
		StartTime: &from,
		EndTime:   &to,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	snapshot := &bookingsSnapshot{
		bookingsByHost: make(map[int64][]*domain.Booking, len(hosts)),
		busyByHost:     make(map[int64][]domain.BusyInterval, len(hosts)),
	}

	for _, b := range bookings {
		snapshot.bookingsByHost[b.HostID] = append(snapshot.bookingsByHost[b.HostID], b)
	}

	// Занятость внешних календарей - ground truth наравне с собственными
	// бронированиями; обращение к CalendarService происходит до вычисления
	// слотов, сам резолвер сетевых вызовов не делает
	for _, h := range hosts {
		if err := ctx.Err(); err != nil {
			return nil, uc.deadlineError(err)
		}

		busy, err := uc.calendarClient.GetBusyIntervals(ctx, h.ID, from, to)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, uc.deadlineError(ctxErr)
			}
			uc.logger.Error("GetAvailableSlots: failed to get busy intervals for host id=%d: %v", h.ID, err)
			return nil, fmt.Errorf("%w: host_id=%d: %v", ErrCalendarUnavailable, h.ID, err)
		}

		snapshot.busyByHost[h.ID] = busy
	}

	return snapshot, nil
}

// resolveHostCandidates раскрывает недельное расписание хоста в слоты-кандидаты
// за запрошенный период, без проверки конфликтов
func (uc *UseCase) resolveHostCandidates(
	ctx context.Context,
	host *domain.Host,
	et *domain.EventType,
	loc *time.Location,
	now time.Time,
	req *Request,
	hostBookings []*domain.Booking,
) ([]timewindow.Window, error) {
	candidates := make([]timewindow.Window, 0)

	// Локальные дни хоста могут выступать за запрошенный период,
	// кандидаты за его пределами отбрасываются
	rangeEndExclusive := req.RangeEnd.AddDate(0, 0, 1)

	for _, day := range hostLocalDays(req.RangeStart, req.RangeEnd, loc) {
		// Дедлайн проверяется между днями: при его превышении возвращается
		// ошибка, а не частичный список
		if err := ctx.Err(); err != nil {
			return nil, uc.deadlineError(err)
		}

		dayEnd := day.AddDate(0, 0, 1)

		// Прошедшие дни не генерируют кандидатов
		if !dayEnd.After(now) {
			continue
		}

		// Дневной лимит типа события: если он уже выбран бронированиями
		// хоста, день отбрасывается до генерации слотов
		if et.HasDailyCap() {
			if countBookingsOnDay(hostBookings, day, dayEnd, &et.ID) >= *et.MaxPerDay {
				continue
			}
		}

		windows, err := resolveDayWindows(host, et, day, loc)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to resolve windows for host id=%d: %v", host.ID, err)
			return nil, fmt.Errorf("%w: failed to resolve windows: %v", ErrInternal, err)
		}

		for _, slot := range candidateSlots(windows, et) {
			if slot.Start.Before(req.RangeStart) || !slot.Start.Before(rangeEndExclusive) {
				continue
			}
			if withinNotice(slot, now, et) {
				candidates = append(candidates, slot)
			}
		}
	}

	return candidates, nil
}

// assembleSlots фильтрует конфликты и назначает хостов на слоты
// Для командных событий фильтрация конфликтов и выбор хоста чередуются:
// у каждого участника свой набор конфликтов
func (uc *UseCase) assembleSlots(
	ctx context.Context,
	et *domain.EventType,
	hostsByID map[int64]*domain.Host,
	locsByHost map[int64]*time.Location,
	memberSlots map[int64]map[int64]struct{},
	merged map[int64]timewindow.Window,
	snapshot *bookingsSnapshot,
) ([]Slot, error) {
	starts := make([]int64, 0, len(merged))
	for start := range merged {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	result := make([]Slot, 0, len(starts))

	if !et.IsTeamEvent() {
		// Один хост: линейный проход по его конфликтам
		var host *domain.Host
		for _, h := range hostsByID {
			host = h
		}

		for _, start := range starts {
			slot := merged[start]
			if conflictsWith(slot.Start, slot.End, snapshot.bookingsByHost[host.ID], snapshot.busyByHost[host.ID]) {
				continue
			}
			result = append(result, Slot{Start: slot.Start, End: slot.End, HostID: host.ID, HostName: host.DisplayName})
		}

		return result, nil
	}

	rotation, err := uc.eventTypeRepo.GetRotationCounter(ctx, et.ID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get rotation counter for event_type=%d: %v", et.ID, err)
		return nil, fmt.Errorf("%w: failed to get rotation counter: %v", ErrInternal, err)
	}

	resolver := &teamResolver{
		eventType:      et,
		hostsByID:      hostsByID,
		locsByHost:     locsByHost,
		bookingsByHost: snapshot.bookingsByHost,
		busyByHost:     snapshot.busyByHost,
		memberSlots:    memberSlots,
		rotation:       rotation,
	}

	for _, start := range starts {
		slot := merged[start]

		hostID, ok := resolver.assign(slot)
		if !ok {
			// Ни один участник не свободен - слот не попадает в результат
			continue
		}

		result = append(result, Slot{
			Start:    slot.Start,
			End:      slot.End,
			HostID:   hostID,
			HostName: hostsByID[hostID].DisplayName,
		})
	}

	return result, nil
}

func (uc *UseCase) deadlineError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrDeadlineExceeded, err)
	}
	return err
}
