package create_event_type

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	eventTypesService "github.com/m04kA/SMC-SchedulingService/internal/service/eventtypes"
	"github.com/m04kA/SMC-SchedulingService/internal/service/eventtypes/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgHostNotFound       = "хост из конфигурации не найден"
)

type Handler struct {
	service EventTypeService
	logger  Logger
}

func NewHandler(service EventTypeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/event-types
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventTypeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /event-types - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, eventTypesService.ErrValidation):
			h.logger.Warn("POST /event-types - Validation failed: title=%q, error=%v", req.Title, err)
			// Текст ошибки валидации полезен клиенту целиком
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, eventTypesService.ErrHostNotFound):
			h.logger.Warn("POST /event-types - Host not found: title=%q", req.Title)
			handlers.RespondNotFound(w, msgHostNotFound)

		default:
			h.logger.Error("POST /event-types - Failed to create event type: title=%q, error=%v", req.Title, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /event-types - Event type created: event_type_id=%d, title=%q", result.ID, result.Title)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
