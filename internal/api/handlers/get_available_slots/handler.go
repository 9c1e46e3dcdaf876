package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidEventTypeID    = "некорректный идентификатор типа события"
	msgInvalidDateRange      = "некорректный период, ожидаются from и to в формате YYYY-MM-DD"
	msgInvalidRange          = "некорректный период запроса доступности"
	msgEventTypeNotFound     = "тип события не найден"
	msgCalendarUnavailable   = "сервис календарей временно недоступен"
	msgAvailabilityTimeout   = "запрос доступности не уложился в отведённое время"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/event-types/{eventTypeId}/available-slots?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	eventTypeID, err := strconv.ParseInt(vars["eventTypeId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /available-slots - Invalid event type id: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEventTypeID)
		return
	}

	query := r.URL.Query()
	useCaseReq, err := ToUseCaseRequest(eventTypeID, query.Get("from"), query.Get("to"))
	if err != nil {
		h.logger.Warn("GET /available-slots - Failed to parse range: event_type_id=%d, error=%v", eventTypeID, err)
		handlers.RespondBadRequest(w, msgInvalidDateRange)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /available-slots - Invalid range: event_type_id=%d, error=%v", eventTypeID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, getAvailableSlots.ErrEventTypeNotFound):
			h.logger.Warn("GET /available-slots - Event type not found: event_type_id=%d", eventTypeID)
			handlers.RespondNotFound(w, msgEventTypeNotFound)

		case errors.Is(err, getAvailableSlots.ErrCalendarUnavailable):
			h.logger.Error("GET /available-slots - Calendar service unavailable: event_type_id=%d, error=%v", eventTypeID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgCalendarUnavailable)

		case errors.Is(err, getAvailableSlots.ErrDeadlineExceeded):
			h.logger.Error("GET /available-slots - Deadline exceeded: event_type_id=%d", eventTypeID)
			handlers.RespondError(w, http.StatusGatewayTimeout, msgAvailabilityTimeout)

		default:
			h.logger.Error("GET /available-slots - Failed to resolve slots: event_type_id=%d, error=%v", eventTypeID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /available-slots - Resolved %d slots: event_type_id=%d", len(result.Slots), eventTypeID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
