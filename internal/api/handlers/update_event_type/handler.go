package update_event_type

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	eventTypesService "github.com/m04kA/SMC-SchedulingService/internal/service/eventtypes"
	"github.com/m04kA/SMC-SchedulingService/internal/service/eventtypes/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidEventTypeID = "некорректный идентификатор типа события"
	msgEventTypeNotFound  = "тип события не найден"
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

// Handle PUT /api/v1/event-types/{eventTypeId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventTypeID, err := strconv.ParseInt(vars["eventTypeId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /event-types - Invalid event type id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEventTypeID)
		return
	}

	var req models.UpdateEventTypeRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /event-types - Invalid request body: event_type_id=%d, error=%v", eventTypeID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), eventTypeID, &req)
	if err != nil {
		switch {
		case errors.Is(err, eventTypesService.ErrValidation):
			h.logger.Warn("PUT /event-types - Validation failed: event_type_id=%d, error=%v", eventTypeID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, eventTypesService.ErrEventTypeNotFound):
			h.logger.Warn("PUT /event-types - Event type not found: event_type_id=%d", eventTypeID)
			handlers.RespondNotFound(w, msgEventTypeNotFound)

		case errors.Is(err, eventTypesService.ErrHostNotFound):
			h.logger.Warn("PUT /event-types - Host not found: event_type_id=%d", eventTypeID)
			handlers.RespondNotFound(w, msgHostNotFound)

		default:
			h.logger.Error("PUT /event-types - Failed to update event type: event_type_id=%d, error=%v", eventTypeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /event-types - Event type updated: event_type_id=%d", eventTypeID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
