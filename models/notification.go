package models

import "time"

// Email notification types
const (
	EmailTypeConfirmation = "confirmation"
	EmailTypeAuthority    = "authority"
	EmailTypeCustom       = "custom"
)

type ReportDetails struct {
	Description  string      `json:"description,omitempty"`
	Location     string      `json:"location,omitempty"`
	ContactName  string      `json:"contact_name,omitempty"`
	ContactEmail string      `json:"contact_email,omitempty"`
	ImageURL     string      `json:"image_url,omitempty"`
	AIAnalysis   *AIAnalysis `json:"ai_analysis,omitempty"`
}

type EmailNotifyRequest struct {
	ReportID         string         `json:"report_id" validate:"required"`
	Email            string         `json:"email" validate:"required,email_address"`
	NotificationType string         `json:"notification_type,omitempty" validate:"omitempty,oneof=confirmation authority custom"`
	Subject          string         `json:"subject,omitempty"`
	Content          string         `json:"content,omitempty"`
	ReportDetails    *ReportDetails `json:"report_details,omitempty"`
}

// OutgoingEmail is a rendered message ready for a provider.
type OutgoingEmail struct {
	To          string
	ToName      string
	Subject     string
	HTMLContent string
	Tags        []string
}

type EmailResult struct {
	MessageID string    `json:"message_id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	SentAt    time.Time `json:"sent_at"`
}

type EmailNotifyResponse struct {
	Success   bool         `json:"success"`
	EmailSent bool         `json:"email_sent"`
	Details   *EmailResult `json:"details"`
}

type WhatsAppNotifyRequest struct {
	PhoneNumber     string `json:"phone_number" validate:"required,phone"`
	Message         string `json:"message" validate:"required,max=1500"`
	ReportID        string `json:"report_id,omitempty"`
	UrgencyLevel    string `json:"urgency_level,omitempty"`
	RescueTeamPhone string `json:"rescue_team_phone,omitempty" validate:"omitempty,phone"`
}

type MessageReceipt struct {
	MessageSID string `json:"message_sid"`
	Status     string `json:"status"`
	To         string `json:"to"`
	Error      string `json:"error,omitempty"`
}

type WhatsAppResult struct {
	MessageSID         string          `json:"message_sid"`
	Status             string          `json:"status"`
	To                 string          `json:"to"`
	SentAt             time.Time       `json:"sent_at"`
	RescueNotification *MessageReceipt `json:"rescue_notification"`
}

type WhatsAppNotifyResponse struct {
	Success      bool            `json:"success"`
	WhatsAppSent bool            `json:"whatsapp_sent"`
	Details      *WhatsAppResult `json:"details"`
}

type OrganizationAlertRequest struct {
	ReportID         string `json:"report_id" validate:"required"`
	Email            string `json:"email" validate:"required,email_address"`
	OrganizationName string `json:"organization_name,omitempty"`
}
