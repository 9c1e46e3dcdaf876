package get_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

const (
	msgInvalidBookingRef = "некорректный идентификатор бронирования"
	msgBookingNotFound   = "бронирование не найдено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{bookingRef}
// Числовой параметр трактуется как внутренний ID, любой другой как
// публичный reference из письма гостю
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["bookingRef"]

	var (
		result *models.BookingResponse
		err    error
	)
	if id, parseErr := strconv.ParseInt(ref, 10, 64); parseErr == nil {
		result, err = h.service.GetByID(r.Context(), id)
	} else {
		result, err = h.service.GetByReference(r.Context(), ref)
	}

	if err != nil {
		switch {
		case errors.Is(err, bookingsService.ErrInvalidInput):
			h.logger.Warn("GET /bookings - Invalid reference: ref=%q", ref)
			handlers.RespondBadRequest(w, msgInvalidBookingRef)

		case errors.Is(err, bookingsService.ErrBookingNotFound):
			h.logger.Warn("GET /bookings - Booking not found: ref=%q", ref)
			handlers.RespondNotFound(w, msgBookingNotFound)

		default:
			h.logger.Error("GET /bookings - Failed to get booking: ref=%q, error=%v", ref, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings - Booking retrieved: booking_id=%d", result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
