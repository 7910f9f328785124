package payment_webhook

import (
	"context"

	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/stripegateway"
)

type PaymentVerifier interface {
	Parse(payload []byte, signature string) (*stripegateway.PaymentEvent, error)
}

type BookingPayments interface {
	ConfirmGatewayPayment(ctx context.Context, id string, settled bool) error
}

type OrderPayments interface {
	ConfirmGatewayPayment(ctx context.Context, id string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
