package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/pkg/logger"
)

func TestNewBookingEvent_UsesEffectiveStatus(t *testing.T) {
	start := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	method := domain.PaymentMethodStripe
	b := &domain.Booking{
		ID:            "b-1",
		CustomerID:    "user-1",
		ServiceTitle:  "Консультация",
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentPaid,
		PaymentMethod: &method,
		Price:         decimal.RequireFromString("80.00"),
	}

	before := NewBookingEvent(BookingPaid, b, start.Add(-time.Hour))
	payload, ok := before.Payload.(BookingPayload)
	require.True(t, ok)
	assert.Equal(t, "b-1", before.AggregateID)
	assert.Equal(t, "confirmed", payload.Status)
	require.NotNil(t, payload.PaymentMethod)
	assert.Equal(t, "stripe", *payload.PaymentMethod)

	after := NewBookingEvent(BookingPaid, b, start.Add(time.Minute))
	assert.Equal(t, "completed", after.Payload.(BookingPayload).Status)
}

func TestNewOrderEvent_JSON(t *testing.T) {
	at := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	o := &domain.Order{
		ID:            "o-1",
		MaterialID:    "m-1",
		MaterialTitle: "Гайд",
		CustomerID:    "user-1",
		Price:         decimal.RequireFromString("15.50"),
		Status:        domain.OrderPending,
	}

	raw, err := json.Marshal(NewOrderEvent(OrderCreated, o, at))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "order.created", decoded["type"])
	assert.Equal(t, "o-1", decoded["aggregateId"])

	payload := decoded["payload"].(map[string]interface{})
	assert.Equal(t, "m-1", payload["materialId"])
	assert.Equal(t, "15.5", payload["price"])
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(logger.NewNop())
	assert.NoError(t, p.Publish(context.Background(), Event{Type: BookingCreated, AggregateID: "b-1"}))
	assert.NoError(t, p.Close())
}
