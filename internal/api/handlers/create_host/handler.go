package create_host

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	hostsService "github.com/m04kA/SMC-SchedulingService/internal/service/hosts"
	"github.com/m04kA/SMC-SchedulingService/internal/service/hosts/models"
)

const msgInvalidRequestBody = "некорректное тело запроса"

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

// Handle POST /api/v1/hosts
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHostRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /hosts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, hostsService.ErrValidation):
			h.logger.Warn("POST /hosts - Validation failed: displayName=%q, error=%v", req.DisplayName, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /hosts - Failed to create host: displayName=%q, error=%v", req.DisplayName, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /hosts - Host created: host_id=%d, displayName=%q", result.ID, result.DisplayName)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
