package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"rescueradar/models"
	"rescueradar/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// NotificationService renders report emails and hands them to the configured provider
type NotificationService struct {
	email     EmailService
	baseURL   string
	templates *template.Template
}

func NewNotificationService(email EmailService, baseURL string) *NotificationService {
	return &NotificationService{
		email:     email,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		templates: template.Must(template.New("email").Parse(emailTemplates)),
	}
}

func (ns *NotificationService) Provider() string {
	return ns.email.Provider()
}

type emailTemplateData struct {
	ReportID             string
	Details              *models.ReportDetails
	OrganizationName     string
	BaseURL              string
	ReportURL            string
	Severity             string
	Urgency              string
	RequiresIntervention bool
}

// RenderEmail builds the subject and HTML body for a notification request
func (ns *NotificationService) RenderEmail(req models.EmailNotifyRequest) (models.OutgoingEmail, error) {
	notificationType := req.NotificationType
	if notificationType == "" {
		notificationType = models.EmailTypeConfirmation
	}

	out := models.OutgoingEmail{
		To:     req.Email,
		ToName: "Reporter",
		Tags:   []string{"report_" + req.ReportID, notificationType},
	}
	if req.ReportDetails != nil && req.ReportDetails.ContactName != "" {
		out.ToName = req.ReportDetails.ContactName
	}

	data := emailTemplateData{
		ReportID:  req.ReportID,
		Details:   req.ReportDetails,
		BaseURL:   ns.baseURL,
		ReportURL: fmt.Sprintf("%s/admin/reports/%s", ns.baseURL, url.PathEscape(req.ReportID)),
	}
	if req.ReportDetails != nil && req.ReportDetails.AIAnalysis != nil {
		data.Severity = req.ReportDetails.AIAnalysis.Severity
		data.Urgency = fmt.Sprintf("%d", req.ReportDetails.AIAnalysis.UrgencyLevel)
		data.RequiresIntervention = req.ReportDetails.AIAnalysis.RequiresImmediateIntervention
	}

	switch notificationType {
	case models.EmailTypeConfirmation:
		out.Subject = fmt.Sprintf("RescueRadar - Report Confirmation #%s", req.ReportID)
		return ns.render(out, "confirmation", data)
	case models.EmailTypeAuthority:
		out.Subject = fmt.Sprintf("🚨 RescueRadar Alert - New Animal Cruelty Report #%s", req.ReportID)
		return ns.render(out, "authority", data)
	default:
		out.Subject = req.Subject
		if out.Subject == "" {
			out.Subject = fmt.Sprintf("RescueRadar Notification - %s", req.ReportID)
		}
		out.HTMLContent = req.Content
		if out.HTMLContent == "" {
			out.HTMLContent = "Notification from RescueRadar"
		}
		return out, nil
	}
}

func (ns *NotificationService) render(out models.OutgoingEmail, name string, data emailTemplateData) (models.OutgoingEmail, error) {
	var buf bytes.Buffer
	if err := ns.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return out, fmt.Errorf("render %s email: %w", name, err)
	}
	out.HTMLContent = buf.String()
	return out, nil
}

// SendEmail renders and delivers one notification
func (ns *NotificationService) SendEmail(ctx context.Context, req models.EmailNotifyRequest) (*models.EmailResult, error) {
	email, err := ns.RenderEmail(req)
	if err != nil {
		return nil, err
	}

	messageID, err := ns.email.Send(ctx, email)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"report_id": req.ReportID,
			"provider":  ns.email.Provider(),
		}).Errorf("Email notification failed: %v", err)

		if errors.Is(err, ErrEmailAuthentication) {
			return nil, utils.NewExternalServiceError(ns.email.Provider(), "Email service authentication failed", err)
		}
		return nil, utils.NewExternalServiceError(ns.email.Provider(), "Failed to send email notification", err)
	}

	logrus.WithFields(logrus.Fields{
		"report_id":  req.ReportID,
		"message_id": messageID,
	}).Info("Email sent successfully")

	return &models.EmailResult{
		MessageID: messageID,
		Recipient: req.Email,
		Subject:   email.Subject,
		SentAt:    time.Now().UTC(),
	}, nil
}

// SendOrganizationAlert emails a rescue organization about a stored report
func (ns *NotificationService) SendOrganizationAlert(ctx context.Context, report *models.Report, req models.OrganizationAlertRequest) (*models.EmailResult, error) {
	data := emailTemplateData{
		ReportID:         report.ID,
		Details:          DetailsFromReport(report),
		OrganizationName: req.OrganizationName,
		BaseURL:          ns.baseURL,
		ReportURL:        fmt.Sprintf("%s/admin/reports/%s", ns.baseURL, url.PathEscape(report.ID)),
	}
	if report.AIAnalysis != nil {
		data.Severity = report.AIAnalysis.Severity
		data.Urgency = fmt.Sprintf("%d", report.AIAnalysis.UrgencyLevel)
		data.RequiresIntervention = report.AIAnalysis.RequiresImmediateIntervention
	}

	out := models.OutgoingEmail{
		To:      req.Email,
		ToName:  req.OrganizationName,
		Subject: fmt.Sprintf("Urgent Animal Rescue Alert - Report #%s", report.ID),
	}
	content, err := ns.render(out, "authority", data)
	if err != nil {
		return nil, err
	}

	return ns.SendEmail(ctx, models.EmailNotifyRequest{
		ReportID:         report.ID,
		Email:            req.Email,
		NotificationType: models.EmailTypeCustom,
		Subject:          content.Subject,
		Content:          content.HTMLContent,
		ReportDetails:    &models.ReportDetails{ContactName: req.OrganizationName},
	})
}

// DetailsFromReport projects a stored report into template details
func DetailsFromReport(report *models.Report) *models.ReportDetails {
	return &models.ReportDetails{
		Description:  report.Description,
		Location:     report.Location,
		ContactName:  utils.StringValue(report.ContactName),
		ContactEmail: utils.StringValue(report.ContactEmail),
		ImageURL:     utils.StringValue(report.ImageURL),
		AIAnalysis:   report.AIAnalysis,
	}
}

const emailTemplates = `
{{define "confirmation"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: linear-gradient(135deg, #f97316 0%, #fb7185 100%); padding: 20px; border-radius: 10px 10px 0 0;">
    <h1 style="color: white; margin: 0; text-align: center;">🐾 RescueRadar</h1>
    <p style="color: white; text-align: center; margin: 10px 0 0 0;">Animal Cruelty Report Confirmed</p>
  </div>
  <div style="background: white; padding: 30px; border-radius: 0 0 10px 10px;">
    <h2 style="color: #f97316; margin-top: 0;">Thank You for Your Report</h2>
    <p>Your animal cruelty report has been successfully submitted and assigned ID: <strong>{{.ReportID}}</strong></p>
    {{with .Details}}<div style="background: #f9fafb; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #374151; margin-top: 0;">Report Details:</h3>
      <p><strong>Location:</strong> {{if .Location}}{{.Location}}{{else}}Not specified{{end}}</p>
      <p><strong>Severity:</strong> {{if $.Severity}}{{$.Severity}}{{else}}Under analysis{{end}}</p>
      <p><strong>Urgency Level:</strong> {{if $.Urgency}}{{$.Urgency}}{{else}}Being assessed{{end}}/10</p>
      <p><strong>Status:</strong> Pending Investigation</p>
    </div>{{end}}
    <h3 style="color: #374151;">What Happens Next?</h3>
    <ul style="color: #6b7280;">
      <li>Our AI system has analyzed your report for urgency and severity</li>
      <li>Appropriate authorities and rescue organizations have been notified</li>
      <li>You will receive updates as the case progresses</li>
    </ul>
    <div style="background: #fef3c7; border-left: 4px solid #f59e0b; padding: 15px; margin: 20px 0;">
      <p style="margin: 0; color: #92400e;"><strong>Emergency:</strong> If this is an immediate life-threatening situation, please also call your local emergency services.</p>
    </div>
    <div style="text-align: center; margin-top: 30px;">
      <a href="{{.BaseURL}}" style="background: #f97316; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Visit RescueRadar</a>
    </div>
  </div>
</div>{{end}}
{{define "authority"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #dc2626; padding: 20px; border-radius: 10px 10px 0 0;">
    <h1 style="color: white; margin: 0; text-align: center;">🚨 URGENT ALERT</h1>
    <p style="color: white; text-align: center; margin: 10px 0 0 0;">New Animal Cruelty Report</p>
  </div>
  <div style="background: white; padding: 30px; border-radius: 0 0 10px 10px;">
    {{if .OrganizationName}}<p>Dear {{.OrganizationName}},</p>{{end}}
    <h2 style="color: #dc2626; margin-top: 0;">Report ID: {{.ReportID}}</h2>
    {{with .Details}}<div style="background: #fef2f2; border: 1px solid #fecaca; padding: 20px; border-radius: 8px; margin: 20px 0;">
      <h3 style="color: #374151; margin-top: 0;">Report Details:</h3>
      <p><strong>Location:</strong> {{.Location}}</p>
      <p><strong>Description:</strong> {{.Description}}</p>
      <p><strong>AI Severity:</strong> {{if $.Severity}}{{$.Severity}}{{else}}Unknown{{end}}</p>
      <p><strong>Urgency Level:</strong> {{if $.Urgency}}{{$.Urgency}}{{else}}Unknown{{end}}/10</p>
      <p><strong>Requires Immediate Intervention:</strong> {{if $.RequiresIntervention}}YES{{else}}No{{end}}</p>
      {{if .ContactEmail}}<p><strong>Reporter Contact:</strong> {{.ContactEmail}}</p>{{end}}
      {{if .ImageURL}}<p><strong>Evidence:</strong> Image attached</p>{{end}}
    </div>{{end}}
    <div style="background: #dcfce7; border: 1px solid #bbf7d0; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <p style="margin: 0; color: #166534;"><strong>Action Required:</strong> Please investigate this report and take appropriate action based on the severity level.</p>
    </div>
    <div style="text-align: center; margin-top: 30px;">
      <a href="{{.ReportURL}}" style="background: #dc2626; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Full Report</a>
    </div>
  </div>
</div>{{end}}`
