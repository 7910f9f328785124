package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidService = errors.New("domain: invalid service")

// Service услуга оператора (сессия коучинга и т.п.)
type Service struct {
	ID              string
	Title           string
	Description     string
	DurationMinutes int
	Price           decimal.Decimal
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s *Service) Validate() error {
	if s.Title == "" {
		return ErrInvalidService
	}
	if s.DurationMinutes <= 0 || s.DurationMinutes%DurationGranularityMinutes != 0 {
		return ErrInvalidService
	}
	if s.DurationMinutes > MaxServiceDurationMinutes {
		return ErrInvalidService
	}
	if s.Price.IsNegative() {
		return ErrInvalidService
	}
	return nil
}
