package get_available_slots

import (
	"time"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	ServiceID string    // ID услуги
	Date      time.Time // Дата (время суток игнорируется), в часовом поясе бизнеса
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date            time.Time     // Начало запрошенных суток
	ServiceID       string        // ID услуги
	DurationMinutes int           // Длительность услуги
	Slots           []domain.Slot // Свободные слоты по возрастанию начала
}
