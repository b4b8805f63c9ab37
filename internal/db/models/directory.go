// Package models - directory.go defines the simple keyed reference-data entities:
// barangays, positions, officials, benefits, events, and SMS templates.
package models

import "time"

// Official slot types. The "top" and "mid" slots admit at most one occupant each.
const (
	OfficialTypeTop    = "top"
	OfficialTypeMid    = "mid"
	OfficialTypeBottom = "bottom"
)

// Event kinds.
const (
	EventTypeEvent     = "event"
	EventTypeSlideshow = "slideshow"
)

// Benefit types. Counts shown on the dashboard exclude "republic acts".
const (
	BenefitTypeDiscount     = "discount"
	BenefitTypeFinancial    = "financial assistance"
	BenefitTypeMedical      = "medical benefits"
	BenefitTypePerks        = "privileges and perks"
	BenefitTypeRepublicActs = "republic acts"
)

// Barangay represents one barangay of the municipality
type Barangay struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"barangay_name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Position represents a named office, scoped by type (e.g. barangay, orgchart)
type Position struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Official represents a municipal official or an organizational chart entry;
// both share the same shape and slot rules and differ only in their table.
type Official struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Position      string    `json:"position" db:"position"`
	Type          string    `json:"type" db:"type"`
	ImageURL      *string   `json:"image_url" db:"image_url"`
	ImagePublicID *string   `json:"image_public_id" db:"image_public_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// BarangayOfficial represents an official seated in a barangay; the
// (barangay, position) pair is unique.
type BarangayOfficial struct {
	ID            int64     `json:"id" db:"id"`
	BarangayName  string    `json:"barangay_name" db:"barangay_name"`
	Position      string    `json:"position" db:"position"`
	OfficialName  string    `json:"official_name" db:"official_name"`
	ImageURL      *string   `json:"image_url" db:"image_url"`
	ImagePublicID *string   `json:"image_public_id" db:"image_public_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Benefit represents one benefit program; soft-deleted rows stay out of listings
type Benefit struct {
	ID            int64     `json:"id" db:"id"`
	Type          string    `json:"type" db:"type"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description" db:"description"`
	Provider      *string   `json:"provider" db:"provider"`
	ImageURL      *string   `json:"image_url" db:"image_url"`
	ImagePublicID *string   `json:"image_public_id" db:"image_public_id"`
	Deleted       bool      `json:"-" db:"deleted"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Event represents an announcement, either a dated event or a slideshow image
type Event struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   *string    `json:"description" db:"description"`
	Type          string     `json:"type" db:"type"`
	EventDate     *time.Time `json:"date" db:"event_date"`
	ImageURL      *string    `json:"image_url" db:"image_url"`
	ImagePublicID *string    `json:"image_public_id" db:"image_public_id"`
	Deleted       bool       `json:"-" db:"deleted"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// SMSTemplate represents a reusable message body
type SMSTemplate struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Message   string    `json:"message" db:"message"`
	Category  *string   `json:"category" db:"category"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SystemSettings is the singleton (id=1) municipality profile
type SystemSettings struct {
	ID            int16     `json:"id" db:"id"`
	Municipality  string    `json:"municipality" db:"municipality"`
	Province      string    `json:"province" db:"province"`
	Address       string    `json:"address" db:"address"`
	ContactEmail  string    `json:"contact_email" db:"contact_email"`
	ContactNumber string    `json:"contact_number" db:"contact_number"`
	About         string    `json:"about" db:"about"`
	SealURL       *string   `json:"seal_url" db:"seal_url"`
	SealPublicID  *string   `json:"seal_public_id" db:"seal_public_id"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
