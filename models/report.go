package models

import "time"

// Urgency levels chosen by the reporter
const (
	UrgencyLow       = "low"
	UrgencyNormal    = "normal"
	UrgencyHigh      = "high"
	UrgencyEmergency = "emergency"
)

const (
	ReportStatusPending = "pending"
	ReportStatusActive  = "active"
)

var (
	UrgencyLevels  = []string{UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyEmergency}
	AnimalTypes    = []string{"dog", "cat", "bird", "horse", "livestock", "wildlife", "other"}
	SituationTypes = []string{"abuse", "neglect", "injury", "abandonment", "hoarding", "fighting", "other"}
)

type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" bson:"lng" validate:"gte=-180,lte=180"`
}

// Report is a single submitted incident record.
type Report struct {
	ID            string       `json:"id" bson:"_id"`
	Description   string       `json:"description" bson:"description"`
	Location      string       `json:"location" bson:"location"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	ContactName   *string      `json:"contact_name" bson:"contact_name,omitempty"`
	ContactEmail  *string      `json:"contact_email" bson:"contact_email,omitempty"`
	ContactPhone  *string      `json:"contact_phone" bson:"contact_phone,omitempty"`
	ImageURL      *string      `json:"image_url" bson:"image_url,omitempty"`
	UrgencyLevel  string       `json:"urgency_level" bson:"urgency_level"`
	AnimalType    *string      `json:"animal_type" bson:"animal_type,omitempty"`
	SituationType *string      `json:"situation_type" bson:"situation_type,omitempty"`
	AIAnalysis    *AIAnalysis  `json:"ai_analysis" bson:"ai_analysis,omitempty"`
	Status        string       `json:"status" bson:"status"`

	// Derived from the AI analysis at save time
	Severity                      string `json:"severity" bson:"severity"`
	AIUrgencyScore                int    `json:"ai_urgency_score" bson:"ai_urgency_score"`
	Category                      string `json:"category" bson:"category"`
	RequiresImmediateIntervention bool   `json:"requires_immediate_intervention" bson:"requires_immediate_intervention"`
	EstimatedAnimalCount          int    `json:"estimated_animal_count" bson:"estimated_animal_count"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// SubmitReportRequest carries the fields accepted by both submission endpoints.
type SubmitReportRequest struct {
	ID            string       `json:"id,omitempty"`
	Description   string       `json:"description" validate:"required,max=5000"`
	Location      string       `json:"location" validate:"required,max=500"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" validate:"omitempty"`
	ContactName   string       `json:"contact_name,omitempty" validate:"max=200"`
	ContactEmail  string       `json:"contact_email,omitempty" validate:"omitempty,email_address"`
	ContactPhone  string       `json:"contact_phone,omitempty" validate:"omitempty,phone"`
	ImageURL      string       `json:"image_url,omitempty" validate:"omitempty,url"`
	UrgencyLevel  string       `json:"urgency_level,omitempty" validate:"omitempty,urgency_level"`
	AnimalType    string       `json:"animal_type,omitempty" validate:"omitempty,animal_type"`
	SituationType string       `json:"situation_type,omitempty" validate:"omitempty,situation_type"`
	AIAnalysis    *AIAnalysis  `json:"ai_analysis,omitempty"`
}

// ActiveReport is the map-facing projection of a report.
type ActiveReport struct {
	ID            string      `json:"id"`
	Description   string      `json:"description"`
	Location      string      `json:"location"`
	Coordinates   Coordinates `json:"coordinates"`
	UrgencyLevel  string      `json:"urgency_level"`
	AnimalType    *string     `json:"animal_type"`
	SituationType *string     `json:"situation_type"`
	CreatedAt     time.Time   `json:"created_at"`
	ImageURL      *string     `json:"image_url"`
	ContactInfo   ContactInfo `json:"contact_info"`
	AIAnalysis    *AIAnalysis `json:"ai_analysis"`
}

type ContactInfo struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// ReportFilter narrows the active report list. Zero values match everything.
type ReportFilter struct {
	Urgency   []string `json:"urgency,omitempty"`
	TimeRange string   `json:"time_range,omitempty"`
	Search    string   `json:"search,omitempty"`
}

type ActiveReportsResponse struct {
	Success  bool           `json:"success"`
	Reports  []ActiveReport `json:"reports"`
	Total    int            `json:"total"`
	Fallback bool           `json:"fallback,omitempty"`
	Message  string         `json:"message,omitempty"`
}
