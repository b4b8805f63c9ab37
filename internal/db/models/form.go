// Package models - form.go defines the admin-managed form schema: groups giving
// sections an order, and fields describing the dynamic citizen attributes.
package models

import "time"

// Form field types understood by the front end.
const (
	FieldTypeText   = "text"
	FieldTypeSelect = "select"
	FieldTypeDate   = "date"
	FieldTypeNumber = "number"
)

// FormGroup represents a section of the citizen intake form
type FormGroup struct {
	ID         int64  `json:"id" db:"id"`
	GroupKey   string `json:"group_key" db:"group_key"`
	GroupLabel string `json:"group_label" db:"group_label"`
}

// FormField represents one dynamic attribute a citizen record may carry.
// (FieldName, Label) is unique across the whole table. Options holds the
// comma-delimited choices for select fields and is nil otherwise.
type FormField struct {
	ID        int64     `json:"id" db:"id"`
	FieldName string    `json:"field_name" db:"field_name"`
	Label     string    `json:"label" db:"label"`
	Type      string    `json:"type" db:"type"`
	Options   *string   `json:"options" db:"options"`
	Required  bool      `json:"required" db:"required"`
	GroupKey  string    `json:"group" db:"group_key"`
	Order     int       `json:"order" db:"field_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FieldOrder is one entry of a bulk reorder request.
type FieldOrder struct {
	ID    int64 `json:"id"`
	Order int   `json:"order"`
}
