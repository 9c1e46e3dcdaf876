package deactivate_host

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	hostsService "github.com/m04kA/SMC-SchedulingService/internal/service/hosts"
)

const (
	msgInvalidHostID = "некорректный идентификатор хоста"
	msgHostNotFound  = "хост не найден"
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

// Handle DELETE /api/v1/hosts/{hostId}
// Хост деактивируется, история его бронирований сохраняется
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	hostID, err := strconv.ParseInt(vars["hostId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /hosts - Invalid host id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidHostID)
		return
	}

	if err := h.service.Deactivate(r.Context(), hostID); err != nil {
		switch {
		case errors.Is(err, hostsService.ErrHostNotFound):
			h.logger.Warn("DELETE /hosts - Host not found: host_id=%d", hostID)
			handlers.RespondNotFound(w, msgHostNotFound)

		default:
			h.logger.Error("DELETE /hosts - Failed to deactivate host: host_id=%d, error=%v", hostID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /hosts - Host deactivated: host_id=%d", hostID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
