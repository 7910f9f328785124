package domain

// Шаг сетки слотов не зависит от длительности услуги
const (
	SlotStepMinutes            = 30
	DurationGranularityMinutes = 15
	MaxServiceDurationMinutes  = 480
)

const (
	MinDayOfWeek = 0 // воскресенье
	MaxDayOfWeek = 6
)

const (
	MaxNotesLength       = 1000
	MaxPaymentLinkLength = 2048
	DefaultInvoiceDays   = 14
	InvoiceNumberPrefix  = "INV"
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, занимающие время в календаре
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// ParseBookingStatus разбирает статус из запроса (включая вычисляемый completed)
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return BookingStatus(s), true
	}
	return "", false
}

// ParsePaymentMethod разбирает способ оплаты
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PaymentMethodStripe, PaymentMethodHolvi, PaymentMethodCash:
		return PaymentMethod(s), true
	}
	return "", false
}

// ParseOrderStatus разбирает статус заказа
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderPaid, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}
