package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidSlotStart    = "некорректное время начала слота, ожидается RFC3339"
	msgInvalidInput        = "некорректные данные бронирования"
	msgEventTypeNotFound   = "тип события не найден"
	msgSlotUnavailable     = "выбранный слот недоступен"
	msgConcurrencyConflict = "слот был занят параллельным запросом, повторите попытку"
	msgCalendarUnavailable = "сервис календарей временно недоступен"
	msgBookingTimeout      = "бронирование не уложилось в отведённое время"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse slot start: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotStart)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: event_type_id=%d, error=%v", req.EventTypeID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createBooking.ErrEventTypeNotFound):
			h.logger.Warn("POST /bookings - Event type not found: event_type_id=%d", req.EventTypeID)
			handlers.RespondNotFound(w, msgEventTypeNotFound)

		case errors.Is(err, createBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings - Slot unavailable: event_type_id=%d, slot_start=%s",
				req.EventTypeID, req.SlotStart)
			handlers.RespondError(w, http.StatusConflict, msgSlotUnavailable)

		case errors.Is(err, createBooking.ErrConcurrencyConflict):
			h.logger.Warn("POST /bookings - Concurrency conflict: event_type_id=%d, slot_start=%s",
				req.EventTypeID, req.SlotStart)
			handlers.RespondError(w, http.StatusConflict, msgConcurrencyConflict)

		case errors.Is(err, createBooking.ErrCalendarUnavailable):
			h.logger.Error("POST /bookings - Calendar service unavailable: event_type_id=%d, error=%v",
				req.EventTypeID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgCalendarUnavailable)

		case errors.Is(err, createBooking.ErrDeadlineExceeded):
			h.logger.Error("POST /bookings - Deadline exceeded: event_type_id=%d", req.EventTypeID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgBookingTimeout)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: event_type_id=%d, error=%v",
				req.EventTypeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, reference=%s, host_id=%d",
		result.ID, result.Reference, result.HostID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
