// Package models - sms.go defines the SMS gateway credentials singleton, the delivery
// log, one-time passwords, and the dev key gating account registration.
package models

import "time"

// SMS delivery statuses recorded per recipient outcome.
const (
	SMSStatusSent   = "Sent"
	SMSStatusFailed = "Failed"
)

// SMSCredentials is the singleton (id=1) gateway credential row
type SMSCredentials struct {
	ID         int16     `json:"id" db:"id"`
	APIKey     string    `json:"api_key" db:"api_key"`
	SenderName string    `json:"sender_name" db:"sender_name"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// SMSLog is one append-only delivery record, one row per recipient outcome
type SMSLog struct {
	ID          int64     `json:"id" db:"id"`
	Recipient   string    `json:"recipient" db:"recipient"`
	Message     string    `json:"message" db:"message"`
	Status      string    `json:"status" db:"status"`
	ReferenceID *string   `json:"reference_id" db:"reference_id"`
	CreditUsed  *float64  `json:"credit_used" db:"credit_used"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// OTPCode is an ephemeral single-use verification code
type OTPCode struct {
	ID        int64     `json:"id" db:"id"`
	Mobile    string    `json:"mobile" db:"mobile"`
	OTP       string    `json:"otp" db:"otp"`
	Purpose   string    `json:"purpose" db:"purpose"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DevKey is a short-lived single-use token gating new account registration
type DevKey struct {
	ID        int64     `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
