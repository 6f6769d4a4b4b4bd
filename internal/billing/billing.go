package billing

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"MAILMUSE_BACK-END/internal/config"
)

// Webhook event types the service reacts to. Unknown types are acknowledged
// and ignored.
const (
	EventCheckoutCompleted    = "checkout.completed"
	EventSubscriptionCanceled = "subscription.canceled"
)

// signatureTolerance bounds webhook replay
const signatureTolerance = 5 * time.Minute

// Signature verification errors
var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleSignature   = errors.New("webhook signature timestamp outside tolerance")
)

// Event is a provider webhook event
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the subscription identifiers we care about
type EventData struct {
	UserID         string `json:"client_reference_id"`
	CustomerID     string `json:"customer_id"`
	SubscriptionID string `json:"subscription_id"`
}

// ParseEvent decodes a webhook payload
func ParseEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("invalid webhook payload: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("webhook payload has no event type")
	}
	return ev, nil
}

// VerifySignature checks the provider's signed-webhook header against the
// shared secret. The header format is "t=<unix>,v1=<hex hmac>" where the MAC
// covers "<unix>.<payload>".
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if header == "" || secret == "" {
		return ErrMissingSignature
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrStaleSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign produces a webhook signature header. Used by tests and the local
// development webhook simulator.
func Sign(payload []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

// Client is a thin HTTP client for the payments provider's checkout API
type Client struct {
	cfg        config.BillingConfig
	httpClient *http.Client
}

// NewClient creates the checkout client
func NewClient(cfg config.BillingConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type checkoutRequest struct {
	PriceID           string `json:"price_id"`
	ClientReferenceID string `json:"client_reference_id"`
	CustomerEmail     string `json:"customer_email"`
	SuccessURL        string `json:"success_url"`
	CancelURL         string `json:"cancel_url"`
}

type checkoutResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutSession opens a subscription checkout for the user and
// returns the hosted payment page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, userID, email string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("billing is not configured")
	}

	body, err := json.Marshal(checkoutRequest{
		PriceID:           c.cfg.PriceID,
		ClientReferenceID: userID,
		CustomerEmail:     email,
		SuccessURL:        c.cfg.SuccessURL,
		CancelURL:         c.cfg.CancelURL,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payments provider returned status %d", resp.StatusCode)
	}

	var session checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("invalid checkout response: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("checkout response has no URL")
	}
	return session.URL, nil
}
