package stripegateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	eventPaymentSucceeded  = "payment_intent.succeeded"
	eventPaymentProcessing = "payment_intent.processing"

	MetadataBookingID = "booking_id"
	MetadataOrderID   = "order_id"
)

var (
	ErrInvalidSignature = errors.New("stripegateway: invalid webhook signature")
	ErrInvalidPayload   = errors.New("stripegateway: invalid webhook payload")
)

// Outcome что делать с записью по событию шлюза
type Outcome string

const (
	OutcomeSettled    Outcome = "settled"    // оплата прошла
	OutcomeProcessing Outcome = "processing" // оплата принята, расчёт асинхронный
	OutcomeIgnored    Outcome = "ignored"    // событие нас не касается
)

// PaymentEvent проверенное событие оплаты
type PaymentEvent struct {
	EventID         string
	PaymentIntentID string
	Outcome         Outcome
	BookingID       string
	OrderID         string
}

// Verifier проверяет подпись Stripe-Signature и разбирает событие
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Parse проверяет подпись и извлекает из payment_intent ссылку на бронирование или заказ
func (v *Verifier) Parse(payload []byte, signature string) (*PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &PaymentEvent{EventID: event.ID, Outcome: OutcomeIgnored}

	switch string(event.Type) {
	case eventPaymentSucceeded:
		result.Outcome = OutcomeSettled
	case eventPaymentProcessing:
		result.Outcome = OutcomeProcessing
	default:
		return result, nil
	}

	if event.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrInvalidPayload, event.ID)
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("%w: decode payment intent: %v", ErrInvalidPayload, err)
	}

	result.PaymentIntentID = intent.ID
	result.BookingID = intent.Metadata[MetadataBookingID]
	result.OrderID = intent.Metadata[MetadataOrderID]

	if result.BookingID == "" && result.OrderID == "" {
		result.Outcome = OutcomeIgnored
	}

	return result, nil
}
