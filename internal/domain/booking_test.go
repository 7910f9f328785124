package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base  = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	early = base.Add(-48 * time.Hour)
)

func newPending() *Booking {
	return &Booking{
		ID:              "bk-1",
		CustomerID:      "cust-1",
		StartTime:       base,
		EndTime:         base.Add(time.Hour),
		DurationMinutes: 60,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
	}
}

func TestBooking_EffectiveStatus(t *testing.T) {
	b := newPending()
	b.Status = StatusConfirmed

	assert.Equal(t, StatusConfirmed, b.EffectiveStatus(base.Add(-time.Minute)))
	assert.Equal(t, StatusCompleted, b.EffectiveStatus(base))
	assert.Equal(t, StatusCompleted, b.EffectiveStatus(base.Add(time.Hour)))

	pending := newPending()
	assert.Equal(t, StatusPending, pending.EffectiveStatus(base.Add(time.Hour)))
}

func TestBooking_MarkPaid_FromPending(t *testing.T) {
	b := newPending()

	require.NoError(t, b.MarkPaid(PaymentMethodCash, early))

	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentPaid, b.PaymentStatus)
	require.NotNil(t, b.PaymentMethod)
	assert.Equal(t, PaymentMethodCash, *b.PaymentMethod)
	assert.Equal(t, early, *b.PaidAt)
}

func TestBooking_InvoiceThenSettle(t *testing.T) {
	b := newPending()

	require.NoError(t, b.IssueInvoice("INV-2026-ABCDEF12", early.Add(14*24*time.Hour), early))
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentInvoiced, b.PaymentStatus)
	assert.Equal(t, PaymentMethodHolvi, *b.PaymentMethod)

	require.NoError(t, b.MarkPaid(PaymentMethodHolvi, early.Add(time.Hour)))
	assert.Equal(t, PaymentPaid, b.PaymentStatus)

	assert.ErrorIs(t, b.MarkPaid(PaymentMethodHolvi, early.Add(2*time.Hour)), ErrInvalidTransition)
}

func TestBooking_Cancel(t *testing.T) {
	t.Run("pending", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Cancel(early))
		assert.Equal(t, StatusCancelled, b.Status)
		assert.NotNil(t, b.CancelledAt)
	})

	t.Run("confirmed before start", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.MarkPaid(PaymentMethodCash, early))
		require.NoError(t, b.Cancel(early))
	})

	t.Run("already cancelled", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Cancel(early))
		err := b.Cancel(early)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("completed", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.MarkPaid(PaymentMethodCash, early))
		snapshot := *b

		assert.ErrorIs(t, b.Cancel(base.Add(time.Minute)), ErrInvalidTransition)
		assert.Equal(t, snapshot, *b)
	})
}

func TestBooking_TerminalStatesDoNotMutate(t *testing.T) {
	b := newPending()
	require.NoError(t, b.Cancel(early))
	snapshot := *b

	assert.ErrorIs(t, b.MarkPaid(PaymentMethodCash, early), ErrInvalidTransition)
	assert.ErrorIs(t, b.AttachPaymentLink("https://pay.example/x", early), ErrInvalidTransition)
	assert.ErrorIs(t, b.MarkInvoiced(PaymentMethodStripe, early), ErrInvalidTransition)
	assert.Equal(t, snapshot, *b)
}

func TestBooking_AttachPaymentLink(t *testing.T) {
	b := newPending()
	require.NoError(t, b.AttachPaymentLink("https://pay.example/abc", early))
	assert.Equal(t, "https://pay.example/abc", *b.PaymentLink)
	assert.Equal(t, StatusPending, b.Status)
}

func TestBooking_Overlaps(t *testing.T) {
	b := newPending() // 10:00-11:00

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", base.Add(15 * time.Minute), base.Add(45 * time.Minute), true},
		{"partial before", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"touching before", base.Add(-time.Hour), base, false},
		{"touching after", base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"covering", base.Add(-time.Hour), base.Add(2 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Overlaps(tt.start, tt.end))
		})
	}
}

func TestBookingsFilter_Matches(t *testing.T) {
	b := newPending()
	cust := "cust-1"
	other := "cust-2"
	from := base.Add(-time.Hour)
	to := base

	assert.True(t, BookingsFilter{}.Matches(b))
	assert.True(t, BookingsFilter{CustomerID: &cust, Statuses: ActiveStatuses}.Matches(b))
	assert.False(t, BookingsFilter{CustomerID: &other}.Matches(b))
	assert.False(t, BookingsFilter{Statuses: []BookingStatus{StatusCancelled}}.Matches(b))
	assert.True(t, BookingsFilter{StartFrom: &from}.Matches(b))
	assert.False(t, BookingsFilter{StartTo: &to}.Matches(b))
}
