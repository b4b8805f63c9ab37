// Package sms sends text messages through a Semaphore-compatible gateway and
// generates the one-time passwords delivered over it. Dispatch is per
// recipient: one gateway failure marks that recipient failed and the batch
// carries on, so a bad number never blocks a barangay-wide broadcast.
package sms

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reinzjustinedagang/osca-ims-backend/internal/config"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/db/models"
	"github.com/reinzjustinedagang/osca-ims-backend/internal/telemetry"
)

// OTPValidity is how long a generated one-time password stays usable.
const OTPValidity = 5 * time.Minute

// Credentials carries the gateway API key and registered sender name
type Credentials struct {
	APIKey     string
	SenderName string
}

// Delivery is the outcome of one send attempt to one recipient
type Delivery struct {
	Recipient   string
	Status      string
	ReferenceID *string
	CreditUsed  int
}

// Result summarizes a dispatch batch
type Result struct {
	Deliveries []Delivery
	Sent       int
	Failed     int
}

// Client submits messages to the gateway
type Client struct {
	gatewayURL string
	client     *http.Client
}

// NewClient creates a Client from the SMS configuration
func NewClient(cfg config.SMSConfig) *Client {
	return &Client{
		gatewayURL: cfg.GatewayURL,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

// gatewayResponse is the subset of the gateway's reply we keep. The gateway
// answers with an array of per-message objects.
type gatewayResponse struct {
	MessageID json.Number `json:"message_id"`
	Status    string      `json:"status"`
}

// Send dispatches the message to every recipient and returns per-recipient
// outcomes. Gateway errors are folded into failed deliveries rather than
// returned, so the caller always gets a complete result to log.
func (c *Client) Send(ctx context.Context, creds Credentials, recipients []string, message string) *Result {
	result := &Result{Deliveries: make([]Delivery, 0, len(recipients))}

	for _, recipient := range recipients {
		delivery := c.sendOne(ctx, creds, recipient, message)
		if delivery.Status == models.SMSStatusSent {
			result.Sent++
			telemetry.SMSMessagesTotal.WithLabelValues("sent").Inc()
		} else {
			result.Failed++
			telemetry.SMSMessagesTotal.WithLabelValues("failed").Inc()
		}
		result.Deliveries = append(result.Deliveries, delivery)
	}

	return result
}

func (c *Client) sendOne(ctx context.Context, creds Credentials, recipient, message string) Delivery {
	start := time.Now()
	referenceID, err := c.submit(ctx, creds, recipient, message)
	telemetry.SMSGatewayDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Warn("sms dispatch failed", "recipient", recipient, "error", err)
		return Delivery{Recipient: recipient, Status: models.SMSStatusFailed}
	}

	return Delivery{
		Recipient:   recipient,
		Status:      models.SMSStatusSent,
		ReferenceID: referenceID,
		CreditUsed:  1,
	}
}

func (c *Client) submit(ctx context.Context, creds Credentials, recipient, message string) (*string, error) {
	form := url.Values{}
	form.Set("apikey", creds.APIKey)
	form.Set("number", recipient)
	form.Set("message", message)
	if creds.SenderName != "" {
		form.Set("sendername", creds.SenderName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var replies []gatewayResponse
	if err := json.Unmarshal(body, &replies); err != nil || len(replies) == 0 {
		// Accepted but unparseable; treat as sent without a reference.
		return nil, nil
	}

	referenceID := replies[0].MessageID.String()
	return &referenceID, nil
}

// GenerateOTP returns a zero-padded 6-digit code from a cryptographic source
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
