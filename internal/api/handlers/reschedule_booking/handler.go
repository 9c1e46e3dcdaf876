package reschedule_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	rescheduleBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidBookingID    = "некорректный идентификатор бронирования"
	msgInvalidSlotStart    = "некорректное время начала слота, ожидается RFC3339"
	msgInvalidInput        = "некорректные данные переноса"
	msgBookingNotFound     = "бронирование не найдено"
	msgNotReschedulable    = "бронирование нельзя перенести в текущем статусе"
	msgSlotUnavailable     = "выбранный слот недоступен"
	msgConcurrencyConflict = "слот был занят параллельным запросом, повторите попытку"
	msgCalendarUnavailable = "сервис календарей временно недоступен"
	msgRescheduleTimeout   = "перенос не уложился в отведённое время"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /bookings/reschedule - Invalid booking id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /bookings/reschedule - Invalid request body: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(bookingID)
	if err != nil {
		h.logger.Warn("PATCH /bookings/reschedule - Failed to parse slot start: booking_id=%d, error=%v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidSlotStart)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			h.logger.Warn("PATCH /bookings/reschedule - Invalid input: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("PATCH /bookings/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, rescheduleBooking.ErrNotReschedulable):
			h.logger.Warn("PATCH /bookings/reschedule - Not reschedulable: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgNotReschedulable)

		case errors.Is(err, rescheduleBooking.ErrSlotUnavailable):
			h.logger.Warn("PATCH /bookings/reschedule - Slot unavailable: booking_id=%d, new_slot_start=%s",
				bookingID, req.NewSlotStart)
			handlers.RespondError(w, http.StatusConflict, msgSlotUnavailable)

		case errors.Is(err, rescheduleBooking.ErrConcurrencyConflict):
			h.logger.Warn("PATCH /bookings/reschedule - Concurrency conflict: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusConflict, msgConcurrencyConflict)

		case errors.Is(err, rescheduleBooking.ErrCalendarUnavailable):
			h.logger.Error("PATCH /bookings/reschedule - Calendar service unavailable: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgCalendarUnavailable)

		case errors.Is(err, rescheduleBooking.ErrDeadlineExceeded):
			h.logger.Error("PATCH /bookings/reschedule - Deadline exceeded: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgRescheduleTimeout)

		default:
			h.logger.Error("PATCH /bookings/reschedule - Failed to reschedule: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/reschedule - Booking rescheduled: booking_id=%d, host_id=%d, start=%s",
		result.ID, result.HostID, result.StartTime)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
