package get_available_slots

import (
	"fmt"
	"time"
)

// maxRangeDays максимальная длина запрашиваемого периода
// Ограничивает объём вычислений на один запрос
const maxRangeDays = 92

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.EventTypeID <= 0 {
		return fmt.Errorf("%w: eventTypeID must be positive", ErrInvalidInput)
	}

	if req.RangeStart.IsZero() || req.RangeEnd.IsZero() {
		return fmt.Errorf("%w: range is required", ErrInvalidInput)
	}

	if req.RangeEnd.Before(req.RangeStart) {
		return fmt.Errorf("%w: rangeEnd must not be before rangeStart", ErrInvalidInput)
	}

	if req.RangeEnd.Sub(req.RangeStart) > maxRangeDays*24*time.Hour {
		return fmt.Errorf("%w: range must not exceed %d days", ErrInvalidInput, maxRangeDays)
	}

	return nil
}
