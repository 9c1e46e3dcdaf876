package update_host_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	hostsService "github.com/m04kA/SMC-SchedulingService/internal/service/hosts"
	"github.com/m04kA/SMC-SchedulingService/internal/service/hosts/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidHostID      = "некорректный идентификатор хоста"
	msgHostNotFound       = "хост не найден"
)

type Handler struct {
	service HostService
	logger  Logger
}

func NewHandler(service HostService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/hosts/{hostId}/availability
// Расписание заменяется целиком, уже созданные бронирования не трогаются
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	hostID, err := strconv.ParseInt(vars["hostId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /hosts/availability - Invalid host id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHostID)
		return
	}

	var req models.UpdateAvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /hosts/availability - Invalid request body: host_id=%d, error=%v", hostID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateAvailability(r.Context(), hostID, &req)
	if err != nil {
		switch {
		case errors.Is(err, hostsService.ErrValidation):
			h.logger.Warn("PUT /hosts/availability - Validation failed: host_id=%d, error=%v", hostID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, hostsService.ErrHostNotFound):
			h.logger.Warn("PUT /hosts/availability - Host not found: host_id=%d", hostID)
			handlers.RespondNotFound(w, msgHostNotFound)

		default:
			h.logger.Error("PUT /hosts/availability - Failed to update availability: host_id=%d, error=%v", hostID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /hosts/availability - Availability updated: host_id=%d", hostID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
