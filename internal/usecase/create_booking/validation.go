package create_booking

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// maxGuestNameLength максимальная длина имени гостя
const maxGuestNameLength = 200

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.EventTypeID <= 0 {
		return fmt.Errorf("%w: eventTypeID must be positive", ErrInvalidInput)
	}

	if req.SlotStart.IsZero() {
		return fmt.Errorf("%w: slotStart is required", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.GuestName)
	if name == "" {
		return fmt.Errorf("%w: guestName is required", ErrInvalidInput)
	}
	if len(name) > maxGuestNameLength {
		return fmt.Errorf("%w: guestName must not exceed %d characters", ErrInvalidInput, maxGuestNameLength)
	}

	email := strings.TrimSpace(req.GuestEmail)
	if email == "" {
		return fmt.Errorf("%w: guestEmail is required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: guestEmail is malformed", ErrInvalidInput)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.IdempotencyKey != nil && strings.TrimSpace(*req.IdempotencyKey) == "" {
		return fmt.Errorf("%w: idempotencyKey must not be blank", ErrInvalidInput)
	}

	return nil
}
