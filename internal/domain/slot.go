package domain

import (
	"sort"
	"time"

	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

// Slot свободный интервал для записи
type Slot struct {
	Start time.Time
	End   time.Time
}

// CandidateStarts генерирует возможные времена начала по окнам доступности
// Шаг сетки SlotStepMinutes от начала каждого окна; кандидат допустим,
// пока start+duration не выходит за конец окна. Результат отсортирован, дубли по start убраны
func CandidateStarts(windows []*AvailabilityWindow, durationMinutes int) []types.TimeString {
	if durationMinutes <= 0 {
		return []types.TimeString{}
	}

	seen := make(map[int]struct{})
	starts := make([]types.TimeString, 0)

	for _, w := range windows {
		if !w.Active {
			continue
		}

		current := w.StartTime
		for w.Fits(current, durationMinutes) {
			if _, dup := seen[current.Minutes()]; !dup {
				seen[current.Minutes()] = struct{}{}
				starts = append(starts, current)
			}

			next, err := current.AddMinutes(SlotStepMinutes)
			if err != nil {
				// Сетка дошла до конца суток
				break
			}
			current = next
		}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].IsBefore(starts[j]) })
	return starts
}

// IsCandidateStart true, если start входит в сетку слотов для этих окон
func IsCandidateStart(windows []*AvailabilityWindow, durationMinutes int, start types.TimeString) bool {
	for _, candidate := range CandidateStarts(windows, durationMinutes) {
		if candidate.Equal(start) {
			return true
		}
	}
	return false
}
