package mark_order_paid

// MarkPaidRequest HTTP request model; без тела считается оплатой наличными
type MarkPaidRequest struct {
	PaymentMethod *string `json:"paymentMethod,omitempty" validate:"omitempty,oneof=stripe holvi cash"`
}
