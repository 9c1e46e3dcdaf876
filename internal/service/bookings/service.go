package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notify"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo  BookingRepository
	notifyClient NotificationClient
	metrics      BookingMetrics
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	notifyClient NotificationClient,
	bookingMetrics BookingMetrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		notifyClient: notifyClient,
		metrics:      bookingMetrics,
		logger:       logger,
	}
}

// GetByID получает бронирование по внутреннему ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetByReference получает бронирование по внешнему reference (UUID)
// Гостевая поверхность оперирует reference, внутренние id наружу не выходят
func (s *Service) GetByReference(ctx context.Context, reference string) (*models.BookingResponse, error) {
	s.logger.Info("GetByReference: fetching booking reference=%s", reference)

	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByReference: booking reference=%s not found", reference)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByReference: repository error for reference=%s: %v", reference, err)
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBooking(booking), nil
}

// GetHostBookings получает бронирования хоста с гибкой фильтрацией
// Поддерживает фильтрацию по периоду, статусу и включению отменённых бронирований
//
// Примеры использования:
// - Все активные бронирования: GetHostBookings(ctx, &GetHostBookingsRequest{HostID: 10})
// - Бронирования за период: указать From и To
// - Только подтвержденные: указать Status = "confirmed"
// - Включая отменённые: IncludeInactive = true
func (s *Service) GetHostBookings(ctx context.Context, req *models.GetHostBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetHostBookings: fetching bookings for host=%d", req.HostID)
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s",
			req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if req.HostID <= 0 {
		return nil, fmt.Errorf("%w: hostId must be positive", ErrInvalidInput)
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetHostBookings: invalid filter for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: invalid status filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByHostsWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetHostBookings: repository error for host=%d: %v", req.HostID, err)
		return nil, fmt.Errorf("%w: GetHostBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetHostBookings: successfully fetched %d bookings for host=%d", len(bookings), req.HostID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование
// Идемпотентна: повторная отмена уже отменённого бронирования - no-op,
// возвращается то же терминальное состояние. Для completed и no_show
// возвращается ErrCannotCancel.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d", bookingID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Повторная отмена возвращает текущее состояние без ошибки
	if booking.Status == domain.StatusCancelled {
		s.logger.Info("Cancel: booking id=%d is already cancelled", bookingID)
		return models.FromDomainBooking(booking), nil
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return nil, ErrCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, req.Reason); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	cancelled, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		s.logger.Error("Cancel: failed to reload booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	s.metrics.IncBookingOutcome(metrics.OutcomeCancelled)

	// Сбой уведомления не откатывает отмену
	s.sendNotification(ctx, cancelled)

	return models.FromDomainBooking(cancelled), nil
}

// UpdateStatus обновляет статус бронирования по машине состояний:
// pending -> confirmed | cancelled; confirmed -> cancelled | completed | no_show
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s", bookingID, req.Status)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return nil, ErrInvalidStatus
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if !booking.CanTransitionTo(newStatus) {
		s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for booking id=%d",
			booking.Status, newStatus, bookingID)
		return nil, ErrInvalidTransition
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	updated, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		s.logger.Error("UpdateStatus: failed to reload booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)

	// Отмена через административный переход статуса тоже уведомляет гостя
	if newStatus == domain.StatusCancelled {
		s.metrics.IncBookingOutcome(metrics.OutcomeCancelled)
		s.sendNotification(ctx, updated)
	}

	return models.FromDomainBooking(updated), nil
}

func (s *Service) sendNotification(ctx context.Context, booking *domain.Booking) {
	event := notify.BookingEvent{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		EventTypeID: booking.EventTypeID,
		HostID:      booking.HostID,
		GuestEmail:  booking.GuestEmail,
		StartTime:   booking.StartTime,
		ChangeType:  notify.ChangeCancelled,
	}

	if err := s.notifyClient.Notify(ctx, event); err != nil {
		s.logger.Error("Cancel: failed to notify about booking id=%d: %v", booking.ID, err)
	}
}
