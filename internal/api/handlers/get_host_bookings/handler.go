package get_host_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
)

const (
	msgInvalidHostID = "некорректный идентификатор хоста"
	msgInvalidQuery  = "некорректные параметры фильтра бронирований"
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

// Handle GET /api/v1/hosts/{hostId}/bookings?from&to&status&includeInactive
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	hostID, err := strconv.ParseInt(vars["hostId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /hosts/bookings - Invalid host id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHostID)
		return
	}

	serviceReq, err := ToServiceRequest(hostID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /hosts/bookings - Failed to parse query: host_id=%d, error=%v", hostID, err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.service.GetHostBookings(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, bookingsService.ErrInvalidInput):
			h.logger.Warn("GET /hosts/bookings - Invalid filter: host_id=%d, error=%v", hostID, err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /hosts/bookings - Failed to get bookings: host_id=%d, error=%v", hostID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /hosts/bookings - Retrieved %d bookings: host_id=%d", len(result.Bookings), hostID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
