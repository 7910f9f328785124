package create_booking

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID == "" {
		return fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}

	if _, err := uuid.Parse(req.ServiceID); err != nil {
		return fmt.Errorf("%w: serviceId must be a uuid", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.StartTime.Second() != 0 || req.StartTime.Nanosecond() != 0 {
		return fmt.Errorf("%w: startTime must be on a whole minute", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateSlot проверяет, что start совпадает с одним из слотов, которые выдаёт генератор
func validateSlot(windows []*domain.AvailabilityWindow, durationMinutes int, start time.Time, loc *time.Location) error {
	local := start.In(loc)
	if !domain.IsCandidateStart(windows, durationMinutes, types.NewTimeString(local)) {
		return fmt.Errorf("%w: %s is not a bookable start for this service",
			ErrInvalidTimeSlot, local.Format(domain.DateFormat+" "+domain.TimeFormat))
	}
	return nil
}
