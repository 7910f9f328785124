package payment_webhook

// AckResponse подтверждение приёма события шлюзу
type AckResponse struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}
