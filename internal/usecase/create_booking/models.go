package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID   string    // ID клиента из токена
	ServiceID    string    // ID услуги
	StartTime    time.Time // Начало слота
	Notes        *string   // Заметки (опционально)
	ContactName  *string
	ContactEmail *string
	ContactPhone *string
}
