package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60
	layoutHHMM    = "15:04"

	// endOfDay конец суток, как TIME '24:00:00' в Postgres
	endOfDay = "24:00"
)

var (
	// ErrInvalidTimeString возвращается, когда строка не соответствует формату HH:MM
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOverflow возвращается, когда результат выходит за пределы суток
	ErrTimeOverflow = errors.New("time string out of day range")
)

// TimeString время суток с точностью до минуты (HH:MM, 24h)
// Хранится как количество минут от полуночи, поэтому сравнение и сложение тривиальны
type TimeString struct {
	minutes int
	valid   bool
}

// NewTimeStringFromString парсит строку формата HH:MM
// Допускается также формат HH:MM:SS (так Postgres отдаёт тип TIME), секунды отбрасываются.
// 24:00 означает конец суток и годится только как конец интервала
func NewTimeStringFromString(s string) (TimeString, error) {
	s = strings.TrimSpace(s)
	if s == endOfDay || s == endOfDay+":00" {
		return TimeString{minutes: minutesPerDay, valid: true}, nil
	}
	if len(s) == len("15:04:05") {
		s = s[:5]
	}
	if len(s) != len(layoutHHMM) {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	t, err := time.Parse(layoutHHMM, s)
	if err != nil {
		return TimeString{}, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	return TimeString{minutes: t.Hour()*60 + t.Minute(), valid: true}, nil
}

// MustTimeString как NewTimeStringFromString, но паникует при ошибке. Только для констант и тестов
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// NewTimeString берёт время суток из time.Time (в его собственной локации)
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*60 + t.Minute(), valid: true}
}

// Minutes количество минут от полуночи
func (t TimeString) Minutes() int {
	return t.minutes
}

// AddMinutes возвращает новое время, сдвинутое на n минут
// Результат должен оставаться в пределах тех же суток
func (t TimeString) AddMinutes(n int) (TimeString, error) {
	total := t.minutes + n
	if total < 0 || total >= minutesPerDay {
		return TimeString{}, fmt.Errorf("%w: %s%+d min", ErrTimeOverflow, t, n)
	}
	return TimeString{minutes: total, valid: true}, nil
}

func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

func (t TimeString) Equal(other TimeString) bool {
	return t.minutes == other.minutes && t.valid == other.valid
}

func (t TimeString) IsZero() bool {
	return !t.valid
}

// Validate проверяет, что значение было корректно инициализировано
func (t TimeString) Validate() error {
	if !t.valid {
		return ErrInvalidTimeString
	}
	return nil
}

// On возвращает момент времени для указанной даты в локации loc
func (t TimeString) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.minutes/60, t.minutes%60, 0, 0, loc)
}

func (t TimeString) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// MarshalJSON сериализует в "HH:MM"
func (t TimeString) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON разбирает "HH:MM"
func (t *TimeString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimeString, err)
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return t.String(), nil
}

// Scan реализует sql.Scanner (TIME в Postgres приходит как строка или time.Time)
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeString, src)
	}
}
