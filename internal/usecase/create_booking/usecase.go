package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	eventTypeStorage "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/eventtype"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notify"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/timewindow"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	eventTypeRepo EventTypeRepository
	slotResolver  SlotResolver
	notifyClient  NotificationClient
	txManager     TransactionManager
	metrics       BookingMetrics
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	eventTypeRepo EventTypeRepository,
	slotResolver SlotResolver,
	notifyClient NotificationClient,
	txManager TransactionManager,
	bookingMetrics BookingMetrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		eventTypeRepo: eventTypeRepo,
		slotResolver:  slotResolver,
		notifyClient:  notifyClient,
		txManager:     txManager,
		metrics:       bookingMetrics,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию для предотвращения гонки между
// проверкой доступности слота и вставкой бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: event_type=%d, slot=%s, guest=%s",
		req.EventTypeID, req.SlotStart.Format(time.RFC3339), req.GuestEmail)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Быстрый путь идемпотентности: повтор запроса с тем же ключом
	// возвращает исходное бронирование, не создавая второго
	// Выполняется до проверки прошедшего слота: повтор после наступления
	// времени слота всё ещё должен вернуть исходное бронирование
	if req.IdempotencyKey != nil {
		existing, err := uc.findByIdempotencyKey(ctx, req)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			uc.logger.Info("CreateBooking: idempotent replay, returning booking id=%d", existing.ID)
			return toResponse(existing), nil
		}
	}

	// 3. Получаем текущее время
	now := uc.timeProvider.Now()

	// Слот в прошлом не пройдёт повторную валидацию, отказываем без транзакции
	if req.SlotStart.Before(now) {
		uc.logger.Warn("CreateBooking: slot %s is in the past", req.SlotStart.Format(time.RFC3339))
		uc.metrics.IncBookingOutcome(metrics.OutcomeConflict)
		return nil, ErrSlotUnavailable
	}

	// 4. Получаем тип события
	et, err := uc.eventTypeRepo.GetByID(ctx, req.EventTypeID)
	if err != nil {
		if errors.Is(err, eventTypeStorage.ErrEventTypeNotFound) {
			uc.logger.Warn("CreateBooking: event type id=%d not found", req.EventTypeID)
			return nil, ErrEventTypeNotFound
		}
		uc.logger.Error("CreateBooking: failed to get event type id=%d: %v", req.EventTypeID, err)
		return nil, fmt.Errorf("%w: failed to get event type: %v", ErrInternal, err)
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 5. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created, err := uc.commitBooking(txCtx, et, req)
		if err != nil {
			return err
		}
		result = created
		return nil
	})

	if err != nil {
		// Гонка двух запросов с одним ключом идемпотентности: вставка
		// проиграла уникальному индексу, возвращаем исходное бронирование
		if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) && req.IdempotencyKey != nil {
			existing, findErr := uc.findByIdempotencyKey(ctx, req)
			if findErr == nil && existing != nil {
				uc.logger.Info("CreateBooking: idempotent replay after insert race, booking id=%d", existing.ID)
				return toResponse(existing), nil
			}
		}
		return nil, uc.mapCommitError(err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, reference=%s, host=%d, status=%s",
		result.ID, result.Reference, result.HostID, result.Status)
	uc.metrics.IncBookingOutcome(metrics.OutcomeCreated)

	// 6. Уведомление не участвует в транзакции: сбой доставки логируется
	// и не откатывает бронирование
	uc.sendNotification(ctx, result, notify.ChangeCreated)

	return toResponse(result), nil
}

// commitBooking повторно валидирует слот и вставляет бронирование
// Выполняется внутри сериализуемой транзакции
func (uc *UseCase) commitBooking(txCtx context.Context, et *domain.EventType, req *Request) (*domain.Booking, error) {
	// 1. Повторно вычисляем доступность, суженную до даты слота.
	// Чтения резолвера внутри транзакции видят её состояние, поэтому
	// слот, занятый конкурентом, сюда уже не попадёт
	hostID, err := uc.resolveSlotHost(txCtx, req)
	if err != nil {
		return nil, err
	}

	slotEnd := req.SlotStart.Add(et.Duration())

	// 2. Блокируем бронирования назначенного хоста (FOR UPDATE) и проверяем
	// пересечения ещё раз: это сериализует коммиты по хосту, не блокируя
	// коммиты других хостов
	if err := uc.lockAndCheckHost(txCtx, hostID, req.SlotStart, slotEnd); err != nil {
		return nil, err
	}

	// 3. Вставляем бронирование с денормализацией названия типа события
	booking := &domain.Booking{
		Reference:      uuid.NewString(),
		EventTypeID:    et.ID,
		HostID:         hostID,
		StartTime:      req.SlotStart,
		EndTime:        slotEnd,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		Notes:          req.Notes,
		Status:         et.InitialStatus(),
		IdempotencyKey: req.IdempotencyKey,
		EventTypeTitle: et.Title,
	}

	created, err := uc.bookingRepo.Create(txCtx, booking)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrDuplicateIdempotencyKey) {
			return nil, err
		}
		uc.logger.Error("CreateBooking: failed to create booking: %v", err)
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	// 4. Счётчик ротации двигается в той же транзакции, что и вставка:
	// назначение и сдвиг курсора либо фиксируются вместе, либо откатываются
	if et.IsTeamEvent() && et.Team.Distribution == domain.DistributionRoundRobin {
		if err := uc.eventTypeRepo.IncrementRotationCounter(txCtx, et.ID); err != nil {
			uc.logger.Error("CreateBooking: failed to increment rotation counter for event_type=%d: %v", et.ID, err)
			return nil, fmt.Errorf("%w: failed to increment rotation counter: %v", ErrInternal, err)
		}
	}

	return created, nil
}

// resolveSlotHost находит хоста для запрошенного слота в актуальной выдаче
// доступности на дату слота
func (uc *UseCase) resolveSlotHost(txCtx context.Context, req *Request) (int64, error) {
	day := req.SlotStart.UTC().Truncate(24 * time.Hour)

	resp, err := uc.slotResolver.Execute(txCtx, &get_available_slots.Request{
		EventTypeID: req.EventTypeID,
		RangeStart:  day,
		RangeEnd:    day,
	})
	if err != nil {
		switch {
		case errors.Is(err, get_available_slots.ErrEventTypeNotFound):
			return 0, ErrEventTypeNotFound
		case errors.Is(err, get_available_slots.ErrCalendarUnavailable):
			return 0, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
		case errors.Is(err, get_available_slots.ErrDeadlineExceeded):
			return 0, fmt.Errorf("%w: %v", ErrDeadlineExceeded, err)
		default:
			uc.logger.Error("CreateBooking: failed to resolve slots: %v", err)
			return 0, fmt.Errorf("%w: failed to resolve slots: %v", ErrInternal, err)
		}
	}

	// Слот сопоставляется по точному моменту начала
	for _, s := range resp.Slots {
		if s.Start.Equal(req.SlotStart) {
			return s.HostID, nil
		}
	}

	uc.logger.Warn("CreateBooking: slot %s is not available for event_type=%d",
		req.SlotStart.Format(time.RFC3339), req.EventTypeID)
	return 0, ErrSlotUnavailable
}

// lockAndCheckHost блокирует бронирования хоста вокруг слота и проверяет
// пересечения с уже зафиксированными бронированиями
func (uc *UseCase) lockAndCheckHost(txCtx context.Context, hostID int64, slotStart, slotEnd time.Time) error {
	from := slotStart.Add(-24 * time.Hour)
	to := slotEnd.Add(24 * time.Hour)

	bookings, err := uc.bookingRepo.GetByHostsWithFilter(txCtx, domain.HostBookingsFilter{
		HostIDs:   []int64{hostID},
		StartTime: &from,
		EndTime:   &to,
		ForUpdate: true,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to lock host bookings: %v", err)
		return fmt.Errorf("%w: failed to lock host bookings: %v", ErrInternal, err)
	}

	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if timewindow.Overlaps(slotStart, slotEnd, b.StartTime, b.EndTime) {
			uc.logger.Warn("CreateBooking: slot %s conflicts with booking id=%d",
				slotStart.Format(time.RFC3339), b.ID)
			return ErrSlotUnavailable
		}
	}

	return nil
}

func (uc *UseCase) findByIdempotencyKey(ctx context.Context, req *Request) (*domain.Booking, error) {
	existing, err := uc.bookingRepo.FindByIdempotencyKey(ctx, req.EventTypeID, req.GuestEmail, req.SlotStart, *req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, nil
		}
		uc.logger.Error("CreateBooking: failed to check idempotency key: %v", err)
		return nil, fmt.Errorf("%w: failed to check idempotency key: %v", ErrInternal, err)
	}
	return existing, nil
}

func (uc *UseCase) sendNotification(ctx context.Context, booking *domain.Booking, change notify.ChangeType) {
	event := notify.BookingEvent{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		EventTypeID: booking.EventTypeID,
		HostID:      booking.HostID,
		GuestEmail:  booking.GuestEmail,
		StartTime:   booking.StartTime,
		ChangeType:  change,
	}

	if err := uc.notifyClient.Notify(ctx, event); err != nil {
		uc.logger.Error("CreateBooking: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}

func (uc *UseCase) mapCommitError(err error) error {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		uc.metrics.IncBookingOutcome(metrics.OutcomeConflict)
		return err
	case errors.Is(err, ErrEventTypeNotFound),
		errors.Is(err, ErrCalendarUnavailable),
		errors.Is(err, ErrDeadlineExceeded),
		errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, txmanager.ErrSerializationConflict):
		uc.logger.Warn("CreateBooking: serialization retries exhausted: %v", err)
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrDeadlineExceeded, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
