// Package models - citizen.go defines the SeniorCitizen record: fixed identity columns
// plus a flexible form document shaped by the admin-managed form schema. Age and gender
// are derived from the form document at read time, never stored.
package models

import "time"

// SeniorCitizen represents one registry record
type SeniorCitizen struct {
	ID         int64          `json:"id" db:"id"`
	FirstName  string         `json:"firstName" db:"first_name"`
	LastName   string         `json:"lastName" db:"last_name"`
	MiddleName *string        `json:"middleName" db:"middle_name"`
	Suffix     *string        `json:"suffix" db:"suffix"`
	BarangayID *int64         `json:"barangay_id" db:"barangay_id"`
	FormData   map[string]any `json:"form_data" db:"-"`

	// Derived at read time from form_data.birthdate and form_data.gender.
	Age    *int    `json:"age" db:"age"`
	Gender *string `json:"gender" db:"gender"`

	// BarangayName is joined in by list queries for display and search.
	BarangayName *string `json:"barangay_name" db:"barangay_name"`

	Deleted   bool       `json:"deleted" db:"deleted"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// SMSRecipient is a citizen's resolved contact number for bulk SMS sends.
// The number prefers form_data.mobileNumber and falls back to
// form_data.emergencyContactNumber; citizens with neither are excluded.
type SMSRecipient struct {
	ID           int64   `json:"id" db:"id"`
	FirstName    string  `json:"firstName" db:"first_name"`
	LastName     string  `json:"lastName" db:"last_name"`
	BarangayName *string `json:"barangay_name" db:"barangay_name"`
	Number       string  `json:"number" db:"number"`
}

// BarangayCount is one bar of the citizens-per-barangay chart.
type BarangayCount struct {
	BarangayName string `json:"barangay_name" db:"barangay_name"`
	Count        int    `json:"count" db:"count"`
}
