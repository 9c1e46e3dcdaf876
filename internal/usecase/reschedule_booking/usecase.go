package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	eventTypeStorage "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/eventtype"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notify"
	"github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/timewindow"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// UseCase use case для переноса бронирования
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

// Execute выполняет use case переноса бронирования
// Новый слот валидируется так же, как при создании; для командных событий
// хост разрешается заново и может отличаться от исходного. Старый слот
// освобождается самим изменением времени, без отдельного шага.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, new_slot=%s",
		req.BookingID, req.NewSlotStart.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	if req.NewSlotStart.Before(now) {
		uc.logger.Warn("RescheduleBooking: slot %s is in the past", req.NewSlotStart.Format(time.RFC3339))
		uc.metrics.IncBookingOutcome(metrics.OutcomeConflict)
		return nil, ErrSlotUnavailable
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		moved, err := uc.moveBooking(txCtx, req)
		if err != nil {
			return err
		}
		result = moved
		return nil
	})
	if err != nil {
		return nil, uc.mapCommitError(err)
	}

	uc.logger.Info("RescheduleBooking: booking id=%d moved to %s, host=%d",
		result.ID, result.StartTime.Format(time.RFC3339), result.HostID)
	uc.metrics.IncBookingOutcome(metrics.OutcomeRescheduled)

	// 4. Уведомление не участвует в транзакции
	uc.sendNotification(ctx, result)

	return toResponse(result), nil
}

// moveBooking переносит бронирование на новый слот внутри транзакции
func (uc *UseCase) moveBooking(txCtx context.Context, req *Request) (*domain.Booking, error) {
	// 1. Получаем бронирование и проверяем, что его можно переносить
	b, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	if !b.CanBeRescheduled() {
		uc.logger.Warn("RescheduleBooking: booking id=%d has status %s", b.ID, b.Status)
		return nil, ErrNotReschedulable
	}

	et, err := uc.eventTypeRepo.GetByID(txCtx, b.EventTypeID)
	if err != nil {
		if errors.Is(err, eventTypeStorage.ErrEventTypeNotFound) {
			return nil, ErrEventTypeNotFound
		}
		uc.logger.Error("RescheduleBooking: failed to get event type id=%d: %v", b.EventTypeID, err)
		return nil, fmt.Errorf("%w: failed to get event type: %v", ErrInternal, err)
	}

	// 2. Временно переводим бронирование в cancelled: в рамках транзакции
	// это освобождает исходный слот, и повторная валидация не считает
	// собственное бронирование конфликтом. Откат транзакции восстанавливает
	// исходное состояние, если новый слот не проходит проверку.
	if err := uc.bookingRepo.UpdateStatus(txCtx, b.ID, domain.StatusCancelled); err != nil {
		uc.logger.Error("RescheduleBooking: failed to release origin slot: %v", err)
		return nil, fmt.Errorf("%w: failed to release origin slot: %v", ErrInternal, err)
	}

	// 3. Повторно вычисляем доступность на дату нового слота.
	// Для командных событий хост разрешается заново
	hostID, err := uc.resolveSlotHost(txCtx, b.EventTypeID, req.NewSlotStart)
	if err != nil {
		return nil, err
	}

	newEnd := req.NewSlotStart.Add(et.Duration())

	// 4. Блокируем бронирования нового хоста и проверяем пересечения
	if err := uc.lockAndCheckHost(txCtx, hostID, b.ID, req.NewSlotStart, newEnd); err != nil {
		return nil, err
	}

	// 5. Переносим бронирование и восстанавливаем исходный статус
	if err := uc.bookingRepo.UpdateSlot(txCtx, b.ID, hostID, req.NewSlotStart, newEnd); err != nil {
		uc.logger.Error("RescheduleBooking: failed to update slot: %v", err)
		return nil, fmt.Errorf("%w: failed to update slot: %v", ErrInternal, err)
	}

	if err := uc.bookingRepo.UpdateStatus(txCtx, b.ID, b.Status); err != nil {
		uc.logger.Error("RescheduleBooking: failed to restore status: %v", err)
		return nil, fmt.Errorf("%w: failed to restore status: %v", ErrInternal, err)
	}

	// 6. Перенос потребляет назначение round-robin так же, как создание
	if et.IsTeamEvent() && et.Team.Distribution == domain.DistributionRoundRobin {
		if err := uc.eventTypeRepo.IncrementRotationCounter(txCtx, et.ID); err != nil {
			uc.logger.Error("RescheduleBooking: failed to increment rotation counter for event_type=%d: %v", et.ID, err)
			return nil, fmt.Errorf("%w: failed to increment rotation counter: %v", ErrInternal, err)
		}
	}

	moved, err := uc.bookingRepo.GetByID(txCtx, b.ID)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to reload booking id=%d: %v", b.ID, err)
		return nil, fmt.Errorf("%w: failed to reload booking: %v", ErrInternal, err)
	}

	return moved, nil
}

// resolveSlotHost находит хоста для нового слота в актуальной выдаче
// доступности на дату слота
func (uc *UseCase) resolveSlotHost(txCtx context.Context, eventTypeID int64, slotStart time.Time) (int64, error) {
	day := slotStart.UTC().Truncate(24 * time.Hour)

	resp, err := uc.slotResolver.Execute(txCtx, &get_available_slots.Request{
		EventTypeID: eventTypeID,
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
			uc.logger.Error("RescheduleBooking: failed to resolve slots: %v", err)
			return 0, fmt.Errorf("%w: failed to resolve slots: %v", ErrInternal, err)
		}
	}

	for _, s := range resp.Slots {
		if s.Start.Equal(slotStart) {
			return s.HostID, nil
		}
	}

	uc.logger.Warn("RescheduleBooking: slot %s is not available for event_type=%d",
		slotStart.Format(time.RFC3339), eventTypeID)
	return 0, ErrSlotUnavailable
}

// lockAndCheckHost блокирует бронирования хоста вокруг нового слота
// и проверяет пересечения, пропуская само переносимое бронирование
func (uc *UseCase) lockAndCheckHost(txCtx context.Context, hostID, bookingID int64, slotStart, slotEnd time.Time) error {
	from := slotStart.Add(-24 * time.Hour)
	to := slotEnd.Add(24 * time.Hour)

	bookings, err := uc.bookingRepo.GetByHostsWithFilter(txCtx, domain.HostBookingsFilter{
		HostIDs:   []int64{hostID},
		StartTime: &from,
		EndTime:   &to,
		ForUpdate: true,
	})
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to lock host bookings: %v", err)
		return fmt.Errorf("%w: failed to lock host bookings: %v", ErrInternal, err)
	}

	for _, b := range bookings {
		if b.ID == bookingID || !b.IsActive() {
			continue
		}
		if timewindow.Overlaps(slotStart, slotEnd, b.StartTime, b.EndTime) {
			uc.logger.Warn("RescheduleBooking: slot %s conflicts with booking id=%d",
				slotStart.Format(time.RFC3339), b.ID)
			return ErrSlotUnavailable
		}
	}

	return nil
}

func (uc *UseCase) sendNotification(ctx context.Context, booking *domain.Booking) {
	event := notify.BookingEvent{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		EventTypeID: booking.EventTypeID,
		HostID:      booking.HostID,
		GuestEmail:  booking.GuestEmail,
		StartTime:   booking.StartTime,
		ChangeType:  notify.ChangeRescheduled,
	}

	if err := uc.notifyClient.Notify(ctx, event); err != nil {
		uc.logger.Error("RescheduleBooking: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}

func (uc *UseCase) mapCommitError(err error) error {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		uc.metrics.IncBookingOutcome(metrics.OutcomeConflict)
		return err
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrEventTypeNotFound),
		errors.Is(err, ErrNotReschedulable),
		errors.Is(err, ErrCalendarUnavailable),
		errors.Is(err, ErrDeadlineExceeded),
		errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, txmanager.ErrSerializationConflict):
		uc.logger.Warn("RescheduleBooking: serialization retries exhausted: %v", err)
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrDeadlineExceeded, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
