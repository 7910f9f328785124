package models

import (
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/types"
)

// CreateWindowRequest запрос на создание окна
type CreateWindowRequest struct {
	DayOfWeek int
	StartTime string // "09:00"
	EndTime   string // "11:00"
}

// WindowResponse окно доступности
type WindowResponse struct {
	ID        string           `json:"id"`
	DayOfWeek int              `json:"dayOfWeek"`
	StartTime types.TimeString `json:"startTime"`
	EndTime   types.TimeString `json:"endTime"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"createdAt"`
}

// DayWindows окна одного дня недели
type DayWindows struct {
	DayOfWeek int              `json:"dayOfWeek"`
	Weekday   string           `json:"weekday"`
	Windows   []WindowResponse `json:"windows"`
}

// WeekResponse все окна, сгруппированные по дням 0..6
type WeekResponse struct {
	Days []DayWindows `json:"days"`
}

func FromDomainWindow(w *domain.AvailabilityWindow) WindowResponse {
	return WindowResponse{
		ID:        w.ID,
		DayOfWeek: w.DayOfWeek,
		StartTime: w.StartTime,
		EndTime:   w.EndTime,
		Active:    w.Active,
		CreatedAt: w.CreatedAt,
	}
}

// GroupByWeekday раскладывает окна по дням недели; порядок внутри дня сохраняется
func GroupByWeekday(windows []*domain.AvailabilityWindow) *WeekResponse {
	resp := &WeekResponse{Days: make([]DayWindows, 0, domain.MaxDayOfWeek+1)}
	for day := domain.MinDayOfWeek; day <= domain.MaxDayOfWeek; day++ {
		resp.Days = append(resp.Days, DayWindows{
			DayOfWeek: day,
			Weekday:   time.Weekday(day).String(),
			Windows:   []WindowResponse{},
		})
	}

	for _, w := range windows {
		if w.DayOfWeek < domain.MinDayOfWeek || w.DayOfWeek > domain.MaxDayOfWeek {
			continue
		}
		resp.Days[w.DayOfWeek].Windows = append(resp.Days[w.DayOfWeek].Windows, FromDomainWindow(w))
	}

	return resp
}
