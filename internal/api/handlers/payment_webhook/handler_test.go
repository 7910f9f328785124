package payment_webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/stripegateway"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings"
	"github.com/waelosamahelmi/saroistavaloon/pkg/logger"
)

type fakeVerifier struct {
	event *stripegateway.PaymentEvent
	err   error
}

func (f *fakeVerifier) Parse(_ []byte, _ string) (*stripegateway.PaymentEvent, error) {
	return f.event, f.err
}

type fakeBookings struct {
	id      string
	settled bool
	err     error
}

func (f *fakeBookings) ConfirmGatewayPayment(_ context.Context, id string, settled bool) error {
	f.id, f.settled = id, settled
	return f.err
}

type fakeOrders struct {
	id  string
	err error
}

func (f *fakeOrders) ConfirmGatewayPayment(_ context.Context, id string) error {
	f.id = id
	return f.err
}

func serve(h *Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/stripe/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_BookingSettled(t *testing.T) {
	b, o := &fakeBookings{}, &fakeOrders{}
	v := &fakeVerifier{event: &stripegateway.PaymentEvent{EventID: "evt_1", Outcome: stripegateway.OutcomeSettled, BookingID: "b-1"}}

	rec := serve(NewHandler(v, b, o, logger.NewNop()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b-1", b.id)
	assert.True(t, b.settled)
	assert.Empty(t, o.id)
	assert.Contains(t, rec.Body.String(), `"applied"`)
}

func TestHandle_BookingProcessing(t *testing.T) {
	b := &fakeBookings{}
	v := &fakeVerifier{event: &stripegateway.PaymentEvent{EventID: "evt_2", Outcome: stripegateway.OutcomeProcessing, BookingID: "b-2"}}

	rec := serve(NewHandler(v, b, &fakeOrders{}, logger.NewNop()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b-2", b.id)
	assert.False(t, b.settled)
}

func TestHandle_OrderSettled(t *testing.T) {
	o := &fakeOrders{}
	v := &fakeVerifier{event: &stripegateway.PaymentEvent{EventID: "evt_3", Outcome: stripegateway.OutcomeSettled, OrderID: "o-1"}}

	rec := serve(NewHandler(v, &fakeBookings{}, o, logger.NewNop()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o-1", o.id)
}

func TestHandle_OrderProcessingSkipped(t *testing.T) {
	o := &fakeOrders{}
	v := &fakeVerifier{event: &stripegateway.PaymentEvent{EventID: "evt_4", Outcome: stripegateway.OutcomeProcessing, OrderID: "o-1"}}

	rec := serve(NewHandler(v, &fakeBookings{}, o, logger.NewNop()))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, o.id)
	assert.Contains(t, rec.Body.String(), `"skipped"`)
}

func TestHandle_Failures(t *testing.T) {
	settled := &stripegateway.PaymentEvent{EventID: "evt_5", Outcome: stripegateway.OutcomeSettled, BookingID: "b-1"}

	tests := []struct {
		name       string
		verifier   *fakeVerifier
		bookingErr error
		wantStatus int
	}{
		{
			name:       "bad signature",
			verifier:   &fakeVerifier{err: fmt.Errorf("%w: mismatch", stripegateway.ErrInvalidSignature)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ignored event",
			verifier:   &fakeVerifier{event: &stripegateway.PaymentEvent{EventID: "evt_6", Outcome: stripegateway.OutcomeIgnored}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown booking is acknowledged",
			verifier:   &fakeVerifier{event: settled},
			bookingErr: bookings.ErrBookingNotFound,
			wantStatus: http.StatusOK,
		},
		{
			name:       "cancelled booking is acknowledged",
			verifier:   &fakeVerifier{event: settled},
			bookingErr: fmt.Errorf("%w: cancelled", bookings.ErrInvalidTransition),
			wantStatus: http.StatusOK,
		},
		{
			name:       "storage failure asks for redelivery",
			verifier:   &fakeVerifier{event: settled},
			bookingErr: errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.verifier, &fakeBookings{err: tt.bookingErr}, &fakeOrders{}, logger.NewNop()))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
