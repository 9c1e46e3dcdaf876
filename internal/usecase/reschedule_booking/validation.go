package reschedule_booking

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	if req.NewSlotStart.IsZero() {
		return fmt.Errorf("%w: newSlotStart is required", ErrInvalidInput)
	}

	return nil
}
