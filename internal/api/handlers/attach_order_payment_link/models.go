package attach_order_payment_link

// AttachPaymentLinkRequest HTTP request model
type AttachPaymentLinkRequest struct {
	PaymentLink string `json:"paymentLink" validate:"required,url,max=2048"`
}
