package get_available_slots

import (
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

// startOfDay полночь даты в часовом поясе loc
func startOfDay(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// buildSlots переводит времена начала в абсолютные интервалы на дату
func buildSlots(day time.Time, loc *time.Location, starts []types.TimeString, durationMinutes int) []domain.Slot {
	slots := make([]domain.Slot, 0, len(starts))
	for _, start := range starts {
		slotStart := start.On(day, loc)
		slots = append(slots, domain.Slot{
			Start: slotStart,
			End:   slotStart.Add(time.Duration(durationMinutes) * time.Minute),
		})
	}
	return slots
}

// excludeBooked убирает слоты, пересекающиеся с неотменёнными бронированиями
// Интервалы полуоткрытые: бронирование, закончившееся ровно в начале слота, не мешает
func excludeBooked(slots []domain.Slot, bookings []*domain.Booking) []domain.Slot {
	free := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		taken := false
		for _, booking := range bookings {
			if booking.IsActive() && booking.Overlaps(slot.Start, slot.End) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free
}

// excludePast убирает слоты, начало которых уже прошло
func excludePast(slots []domain.Slot, now time.Time) []domain.Slot {
	upcoming := make([]domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if !slot.Start.Before(now) {
			upcoming = append(upcoming, slot)
		}
	}
	return upcoming
}
