package get_event_type

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	eventTypesService "github.com/m04kA/SMC-SchedulingService/internal/service/eventtypes"
)

const (
	msgInvalidEventTypeID = "некорректный идентификатор типа события"
	msgEventTypeNotFound  = "тип события не найден"
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

// Handle GET /api/v1/event-types/{eventTypeId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventTypeID, err := strconv.ParseInt(vars["eventTypeId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /event-types - Invalid event type id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEventTypeID)
		return
	}

	result, err := h.service.GetByID(r.Context(), eventTypeID)
	if err != nil {
		switch {
		case errors.Is(err, eventTypesService.ErrEventTypeNotFound):
			h.logger.Warn("GET /event-types - Event type not found: event_type_id=%d", eventTypeID)
			handlers.RespondNotFound(w, msgEventTypeNotFound)

		default:
			h.logger.Error("GET /event-types - Failed to get event type: event_type_id=%d, error=%v", eventTypeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
