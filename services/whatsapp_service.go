package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"rescueradar/models"
	"rescueradar/utils"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageCreator is the Twilio messages API used for WhatsApp delivery
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// ProviderError carries a Twilio error code back to the caller
type ProviderError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("Twilio Error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

type WhatsAppService struct {
	client MessageCreator
	from   string
}

// NewWhatsAppService returns a disabled service when credentials are missing
func NewWhatsAppService(accountSID, authToken, fromNumber string) *WhatsAppService {
	if accountSID == "" || authToken == "" {
		return &WhatsAppService{from: fromNumber}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewWhatsAppServiceWithClient(client.Api, fromNumber)
}

func NewWhatsAppServiceWithClient(client MessageCreator, fromNumber string) *WhatsAppService {
	return &WhatsAppService{client: client, from: whatsappAddress(fromNumber)}
}

func (s *WhatsAppService) Enabled() bool {
	return s != nil && s.client != nil
}

// Send delivers the reporter message and, when a rescue team number is given, a
// second alert. A failed rescue alert is recorded on the result, not returned.
func (s *WhatsAppService) Send(ctx context.Context, req models.WhatsAppNotifyRequest) (*models.WhatsAppResult, error) {
	if !s.Enabled() {
		return nil, utils.NewNotConfiguredError("WhatsApp")
	}
	if strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(req.Message) == "" {
		return nil, utils.NewBadRequestError("Phone number and message are required")
	}

	to := utils.NormalizePhoneNumber(req.PhoneNumber)
	msg, err := s.create(to, FormatWhatsAppMessage(req))
	if err != nil {
		return nil, err
	}

	result := &models.WhatsAppResult{
		MessageSID: utils.StringValue(msg.Sid),
		Status:     utils.StringValue(msg.Status),
		To:         to,
		SentAt:     time.Now().UTC(),
	}

	if req.RescueTeamPhone != "" {
		rescueTo := utils.NormalizePhoneNumber(req.RescueTeamPhone)
		receipt := &models.MessageReceipt{To: rescueTo}

		rescueMsg, err := s.create(rescueTo, FormatRescueAlert(req))
		if err != nil {
			logrus.WithField("report_id", req.ReportID).Warnf("Rescue team alert failed: %v", err)
			receipt.Status = "failed"
			receipt.Error = err.Error()
		} else {
			receipt.MessageSID = utils.StringValue(rescueMsg.Sid)
			receipt.Status = utils.StringValue(rescueMsg.Status)
		}
		result.RescueNotification = receipt
	}

	logrus.WithFields(logrus.Fields{
		"report_id":   req.ReportID,
		"message_sid": result.MessageSID,
	}).Info("WhatsApp message sent")

	return result, nil
}

func (s *WhatsAppService) create(to, body string) (*openapi.ApiV2010Message, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(whatsappAddress(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.client.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) && restErr.Code != 0 {
			return nil, &ProviderError{Code: restErr.Code, Message: restErr.Message, Cause: err}
		}
		return nil, utils.NewExternalServiceError("twilio", "Failed to send WhatsApp notification", err)
	}
	return msg, nil
}

// FormatWhatsAppMessage prefixes an urgency marker and appends the report id
func FormatWhatsAppMessage(req models.WhatsAppNotifyRequest) string {
	prefix := "📢 "
	if req.UrgencyLevel == models.UrgencyHigh || req.UrgencyLevel == models.UrgencyEmergency {
		prefix = "🚨 URGENT: "
	}

	message := prefix + req.Message
	if req.ReportID != "" {
		message += "\n\nReport ID: " + req.ReportID
	}
	return message
}

func FormatRescueAlert(req models.WhatsAppNotifyRequest) string {
	reportID := req.ReportID
	if reportID == "" {
		reportID = "N/A"
	}
	urgency := req.UrgencyLevel
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	return fmt.Sprintf("🆘 New Animal Rescue Report!\n\n%s\n\nReport ID: %s\nUrgency: %s\n\nPlease respond ASAP.",
		req.Message, reportID, urgency)
}

// ProviderErrorStatus is the HTTP status used for coded Twilio errors
func ProviderErrorStatus(err error) (int, int, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return http.StatusBadRequest, providerErr.Code, true
	}
	return 0, 0, false
}

func whatsappAddress(number string) string {
	if number == "" || strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
