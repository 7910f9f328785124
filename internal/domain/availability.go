package domain

import (
	"errors"
	"time"

	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

var ErrInvalidWindow = errors.New("domain: invalid availability window")

// AvailabilityWindow еженедельное окно приёма (0 = воскресенье)
type AvailabilityWindow struct {
	ID        string
	DayOfWeek int
	StartTime types.TimeString
	EndTime   types.TimeString
	Active    bool
	CreatedAt time.Time
}

// Validate: день 0..6 и StartTime < EndTime
func (w *AvailabilityWindow) Validate() error {
	if w.DayOfWeek < MinDayOfWeek || w.DayOfWeek > MaxDayOfWeek {
		return ErrInvalidWindow
	}
	if w.StartTime.IsZero() || w.EndTime.IsZero() || !w.StartTime.IsBefore(w.EndTime) {
		return ErrInvalidWindow
	}
	return nil
}

// Fits true, если [start, start+duration) целиком лежит внутри окна
func (w *AvailabilityWindow) Fits(start types.TimeString, durationMinutes int) bool {
	if start.IsBefore(w.StartTime) {
		return false
	}
	return start.Minutes()+durationMinutes <= w.EndTime.Minutes()
}
