package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waelosamahelmi/saroistavaloon/internal/domain"
	"github.com/waelosamahelmi/saroistavaloon/internal/infra/storage/filestore"
	"github.com/waelosamahelmi/saroistavaloon/internal/integrations/events"
	"github.com/waelosamahelmi/saroistavaloon/internal/service/bookings/models"
	"github.com/waelosamahelmi/saroistavaloon/pkg/logger"
	"github.com/waelosamahelmi/saroistavaloon/pkg/ptr"
)

var testLoc = time.FixedZone("EET", 2*60*60)

var (
	monday   = time.Date(2030, time.January, 7, 0, 0, 0, 0, testLoc)
	clock    = monday.AddDate(0, 0, -2).Add(12 * time.Hour)
	anna     = domain.Principal{UserID: "anna", Role: domain.RoleCustomer}
	bob      = domain.Principal{UserID: "bob", Role: domain.RoleCustomer}
	operator = domain.Principal{UserID: "admin", Role: domain.RoleOperator}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type nopMetrics struct{}

func (nopMetrics) IncBookingTransition(string) {}

type fixture struct {
	store     *filestore.Store
	svc       *Service
	publisher *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)

	publisher := &recordingPublisher{}
	svc := NewService(store.Bookings(), store.TxManager(), publisher, nopMetrics{}, testLoc, 14, logger.NewNop()).
		WithClock(func() time.Time { return clock })

	return &fixture{store: store, svc: svc, publisher: publisher}
}

func (f *fixture) seed(t *testing.T, customer string, start time.Time, status domain.BookingStatus) *domain.Booking {
	t.Helper()

	b, err := f.store.Bookings().Create(context.Background(), &domain.Booking{
		ServiceID:       "svc-1",
		CustomerID:      customer,
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		DurationMinutes: 60,
		Status:          status,
		PaymentStatus:   domain.PaymentPending,
		ServiceTitle:    "Coaching session",
		Price:           decimal.NewFromInt(80),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) reload(t *testing.T, id string) *domain.Booking {
	t.Helper()
	b, err := f.store.Bookings().GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestGetByID_Scope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)

	resp, err := f.svc.GetByID(ctx, b.ID, anna)
	require.NoError(t, err)
	assert.Equal(t, b.ID, resp.ID)
	assert.Equal(t, "pending", resp.Status)

	_, err = f.svc.GetByID(ctx, b.ID, bob)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.svc.GetByID(ctx, b.ID, operator)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(ctx, "missing", operator)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestList_FiltersAndScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := f.seed(t, "anna", clock.Add(-48*time.Hour), domain.StatusConfirmed)
	upcoming := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusConfirmed)
	pending := f.seed(t, "anna", monday.Add(12*time.Hour), domain.StatusPending)
	f.seed(t, "bob", monday.Add(14*time.Hour), domain.StatusPending)

	ids := func(resp *models.BookingListResponse) []string {
		out := make([]string, len(resp.Bookings))
		for i, b := range resp.Bookings {
			out[i] = b.ID
		}
		return out
	}

	resp, err := f.svc.List(ctx, &models.ListBookingsRequest{Actor: anna})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{past.ID, upcoming.ID, pending.ID}, ids(resp))

	resp, err = f.svc.List(ctx, &models.ListBookingsRequest{Actor: operator})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 4)

	resp, err = f.svc.List(ctx, &models.ListBookingsRequest{Actor: anna, Status: ptr.Ptr("completed")})
	require.NoError(t, err)
	assert.Equal(t, []string{past.ID}, ids(resp))
	assert.Equal(t, "completed", resp.Bookings[0].Status)

	resp, err = f.svc.List(ctx, &models.ListBookingsRequest{Actor: anna, Status: ptr.Ptr("confirmed")})
	require.NoError(t, err)
	assert.Equal(t, []string{upcoming.ID}, ids(resp))

	resp, err = f.svc.List(ctx, &models.ListBookingsRequest{Actor: anna, When: ptr.Ptr(models.WhenUpcoming)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{upcoming.ID, pending.ID}, ids(resp))

	resp, err = f.svc.List(ctx, &models.ListBookingsRequest{Actor: anna, When: ptr.Ptr(models.WhenPast)})
	require.NoError(t, err)
	assert.Equal(t, []string{past.ID}, ids(resp))

	_, err = f.svc.List(ctx, &models.ListBookingsRequest{Actor: anna, Status: ptr.Ptr("paid")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.List(ctx, &models.ListBookingsRequest{Actor: anna, When: ptr.Ptr("tomorrow")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)

	_, err := f.svc.Cancel(ctx, b.ID, bob)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	assert.Equal(t, domain.StatusPending, f.reload(t, b.ID).Status)

	resp, err := f.svc.Cancel(ctx, b.ID, anna)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	assert.NotNil(t, resp.CancelledAt)

	_, err = f.svc.Cancel(ctx, b.ID, anna)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	assert.Equal(t, []string{events.BookingCancelled}, f.publisher.types())
}

func TestCancel_ByOperatorAndCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	confirmed := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusConfirmed)
	_, err := f.svc.Cancel(ctx, confirmed.ID, operator)
	require.NoError(t, err)

	completed := f.seed(t, "anna", clock.Add(-2*time.Hour), domain.StatusConfirmed)
	_, err = f.svc.Cancel(ctx, completed.ID, anna)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusConfirmed, f.reload(t, completed.ID).Status)
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)

	resp, err := f.svc.MarkPaid(ctx, b.ID, &models.MarkPaidRequest{})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "paid", resp.PaymentStatus)
	assert.Equal(t, "cash", ptr.Value(resp.PaymentMethod))

	_, err = f.svc.MarkPaid(ctx, b.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.MarkPaid(ctx, b.ID, &models.MarkPaidRequest{PaymentMethod: ptr.Ptr("bitcoin")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkPaid_CancelledIsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)

	_, err := f.svc.Cancel(ctx, b.ID, anna)
	require.NoError(t, err)
	before := f.reload(t, b.ID)

	_, err = f.svc.MarkPaid(ctx, b.ID, &models.MarkPaidRequest{PaymentMethod: ptr.Ptr("stripe")})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	after := f.reload(t, b.ID)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.PaymentStatus, after.PaymentStatus)
	assert.Nil(t, after.PaymentMethod)
}

func TestAttachPaymentLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)

	_, err := f.svc.AttachPaymentLink(ctx, b.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	resp, err := f.svc.AttachPaymentLink(ctx, b.ID, "https://pay.example.com/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/abc", ptr.Value(resp.PaymentLink))
	assert.Equal(t, "pending", resp.Status)

	_, err = f.svc.MarkPaid(ctx, b.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.AttachPaymentLink(ctx, b.ID, "https://pay.example.com/def")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestIssueInvoiceThenSettle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)

	resp, err := f.svc.IssueInvoice(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "invoiced", resp.PaymentStatus)
	assert.Equal(t, "holvi", ptr.Value(resp.PaymentMethod))
	assert.Regexp(t, `^INV-2030-[0-9A-F]{8}$`, ptr.Value(resp.InvoiceNumber))
	assert.Equal(t, "2030-01-19", ptr.Value(resp.InvoiceDueDate))

	_, err = f.svc.IssueInvoice(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resp, err = f.svc.MarkPaid(ctx, b.ID, &models.MarkPaidRequest{PaymentMethod: ptr.Ptr("holvi")})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.PaymentStatus)

	assert.Equal(t, []string{events.BookingInvoiced, events.BookingPaid}, f.publisher.types())
}

func TestConfirmGatewayPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)

	require.NoError(t, f.svc.ConfirmGatewayPayment(ctx, b.ID, false))
	stored := f.reload(t, b.ID)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
	assert.Equal(t, domain.PaymentInvoiced, stored.PaymentStatus)

	// повторная доставка processing
	require.NoError(t, f.svc.ConfirmGatewayPayment(ctx, b.ID, false))

	require.NoError(t, f.svc.ConfirmGatewayPayment(ctx, b.ID, true))
	stored = f.reload(t, b.ID)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodStripe, *stored.PaymentMethod)

	// повторная доставка succeeded
	require.NoError(t, f.svc.ConfirmGatewayPayment(ctx, b.ID, true))

	assert.Equal(t, []string{events.BookingConfirmed, events.BookingPaid}, f.publisher.types())
}

func TestConfirmGatewayPayment_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.ConfirmGatewayPayment(ctx, "missing", true), ErrBookingNotFound)

	b := f.seed(t, "anna", monday.Add(10*time.Hour), domain.StatusPending)
	_, err := f.svc.Cancel(ctx, b.ID, anna)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ConfirmGatewayPayment(ctx, b.ID, true), ErrInvalidTransition)
}
