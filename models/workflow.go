package models

// Workflow error messages recorded per failed step
const (
	WorkflowErrAIAnalysis = "AI analysis failed"
	WorkflowErrSave       = "Failed to save report to database"
	WorkflowErrEmail      = "Email notification failed"
	WorkflowErrWhatsApp   = "WhatsApp notification failed"
	WorkflowErrQRCode     = "QR code generation failed"
)

type NotificationsSent struct {
	Email    bool `json:"email"`
	WhatsApp bool `json:"whatsapp"`
}

// WorkflowResult collects the outcome of every attempted submission step.
type WorkflowResult struct {
	ReportID          string            `json:"report_id"`
	AIAnalysis        *AIAnalysis       `json:"ai_analysis"`
	Saved             bool              `json:"saved"`
	NotificationsSent NotificationsSent `json:"notifications_sent"`
	EmailMessageID    string            `json:"email_message_id,omitempty"`
	WhatsAppSID       string            `json:"whatsapp_message_sid,omitempty"`
	RescueAlertSID    string            `json:"rescue_alert_message_sid,omitempty"`
	QRGenerated       bool              `json:"qr_generated"`
	QRCodeURL         string            `json:"-"`
	Errors            []string          `json:"errors"`
}

// Success reports whether persistence produced an identifier.
func (w *WorkflowResult) Success() bool {
	return w.Saved && w.ReportID != ""
}

func (w *WorkflowResult) AddError(message string) {
	w.Errors = append(w.Errors, message)
}

type SubmitReportResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	ReportID  string          `json:"report_id,omitempty"`
	Workflow  *WorkflowResult `json:"workflow"`
	QRCodeURL string          `json:"qr_code_url,omitempty"`
}

type SaveReportResponse struct {
	Success  bool    `json:"success"`
	ReportID string  `json:"report_id"`
	Data     *Report `json:"data"`
	Message  string  `json:"message"`
}

// ReportCreatedEvent is published and broadcast after a report is persisted.
type ReportCreatedEvent struct {
	ReportID     string       `json:"report_id"`
	Location     string       `json:"location"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
	UrgencyLevel string       `json:"urgency_level"`
	Severity     string       `json:"severity"`
	Report       ActiveReport `json:"report"`
}
