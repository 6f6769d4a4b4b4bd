package dto

// CheckoutResponse represents the hosted checkout session handed to the
// client for redirect
type CheckoutResponse struct {
	URL string `json:"url"`
}

// WebhookAck represents the acknowledgment returned to the billing
// provider
type WebhookAck struct {
	Received bool `json:"received"`
}
