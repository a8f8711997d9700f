package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescueradar/models"
	"rescueradar/utils"
)

type workflowFixture struct {
	repo        *fakeReportRepo
	chat        *fakeChat
	messages    *fakeMessages
	email       *fakeEmail
	broadcaster *fakeBroadcaster
	publisher   *fakePublisher
	svc         *ReportSubmissionService
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	f := &workflowFixture{
		repo:        newFakeReportRepo(),
		chat:        &fakeChat{content: validAnalysisJSON},
		messages:    &fakeMessages{failFor: map[string]error{}},
		email:       &fakeEmail{},
		broadcaster: &fakeBroadcaster{},
		publisher:   &fakePublisher{},
	}
	f.svc = NewReportSubmissionService(ReportSubmissionDeps{
		Repository:    f.repo,
		AI:            NewAIServiceWithClient(f.chat, ""),
		Notifications: NewNotificationService(f.email, "https://rescueradar.example"),
		WhatsApp:      NewWhatsAppServiceWithClient(f.messages, "+14155238886"),
		QR:            NewQRService("https://rescueradar.example"),
		Publisher:     f.publisher,
		Broadcaster:   f.broadcaster,
	})
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return f
}

func TestSubmit_RejectsMissingFieldsBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name string
		req  models.SubmitReportRequest
	}{
		{"missing description", models.SubmitReportRequest{Location: "Main St"}},
		{"blank description", models.SubmitReportRequest{Description: "   ", Location: "Main St"}},
		{"missing location", models.SubmitReportRequest{Description: "Injured dog"}},
		{"bad email", models.SubmitReportRequest{Description: "Injured dog", Location: "Main St", ContactEmail: "nobody"}},
		{"bad phone", models.SubmitReportRequest{Description: "Injured dog", Location: "Main St", ContactPhone: "call me"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorkflowFixture(t)

			result, err := f.svc.Submit(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, result)

			_, ok := utils.GetValidationErrors(err)
			assert.True(t, ok)
			assert.Zero(t, f.chat.calls)
			assert.Zero(t, f.repo.creates)
			assert.Empty(t, f.messages.sent)
			assert.Empty(t, f.email.sent)
		})
	}
}

func TestSubmit_WithoutContactDetails(t *testing.T) {
	f := newWorkflowFixture(t)

	result, err := f.svc.Submit(context.Background(), models.SubmitReportRequest{
		Description: "Injured dog",
		Location:    "Main St",
	})
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.True(t, result.Saved)
	assert.NotEmpty(t, result.ReportID)
	assert.False(t, result.NotificationsSent.Email)
	assert.False(t, result.NotificationsSent.WhatsApp)
	assert.True(t, result.QRGenerated)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "https://rescueradar.example/api/generate-qr?report_id="+result.ReportID+"&format=png&size=200", result.QRCodeURL)

	stored, err := f.repo.GetByID(context.Background(), result.ReportID)
	require.NoError(t, err)
	assert.Equal(t, models.UrgencyNormal, stored.UrgencyLevel)
	assert.Equal(t, models.ReportStatusPending, stored.Status)
	assert.Equal(t, "high", stored.Severity)
	assert.Equal(t, 8, stored.AIUrgencyScore)
	assert.Equal(t, 2, stored.EstimatedAnimalCount)
	assert.Nil(t, stored.ContactEmail)

	require.Len(t, f.publisher.events, 1)
	require.Len(t, f.broadcaster.events, 1)
	assert.Equal(t, result.ReportID, f.broadcaster.events[0].ReportID)
}

func TestSubmit_WhatsAppFailureIsNotFatal(t *testing.T) {
	f := newWorkflowFixture(t)
	f.messages.failFor["whatsapp:+15551234567"] = errors.New("provider down")

	result, err := f.svc.Submit(context.Background(), models.SubmitReportRequest{
		Description:  "Dog chained without water",
		Location:     "Main St",
		ContactPhone: "+1 555 123 4567",
		ContactEmail: "reporter@example.com",
	})
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.False(t, result.NotificationsSent.WhatsApp)
	assert.True(t, result.NotificationsSent.Email)
	assert.Equal(t, "msg-1", result.EmailMessageID)
	assert.Contains(t, result.Errors, models.WorkflowErrWhatsApp)
	assert.True(t, result.QRGenerated)

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "RescueRadar - Report Confirmation #"+result.ReportID, f.email.sent[0].Subject)
}

func TestSubmit_SendsRescueTeamAlertWhenConfigured(t *testing.T) {
	f := newWorkflowFixture(t)
	f.svc.rescuePhone = "+15550000000"

	result, err := f.svc.Submit(context.Background(), models.SubmitReportRequest{
		Description:  "Horse left in flooded field",
		Location:     "River Rd",
		ContactPhone: "+15551234567",
		UrgencyLevel: "Emergency",
	})
	require.NoError(t, err)

	assert.True(t, result.NotificationsSent.WhatsApp)
	require.Len(t, f.messages.sent, 2)
	assert.Equal(t, "whatsapp:+15550000000", *f.messages.sent[1].To)
	assert.Contains(t, *f.messages.sent[0].Body, "🚨 URGENT: ")
	assert.Equal(t, "SMwhatsapp:+15550000000", result.RescueAlertSID)
}

func TestSubmit_SaveFailureAbortsRemainingSteps(t *testing.T) {
	f := newWorkflowFixture(t)
	f.repo.createErr = errors.New("connection refused")

	result, err := f.svc.Submit(context.Background(), models.SubmitReportRequest{
		Description:  "Injured dog",
		Location:     "Main St",
		ContactEmail: "reporter@example.com",
		ContactPhone: "+15551234567",
	})
	require.NoError(t, err)

	assert.False(t, result.Success())
	assert.False(t, result.Saved)
	assert.Empty(t, result.ReportID)
	assert.Equal(t, []string{models.WorkflowErrSave}, result.Errors)
	assert.NotNil(t, result.AIAnalysis)
	assert.False(t, result.QRGenerated)
	assert.Empty(t, f.email.sent)
	assert.Empty(t, f.messages.sent)
	assert.Empty(t, f.publisher.events)
}

func TestSubmit_AIFailureContinuesWithNullAnalysis(t *testing.T) {
	f := newWorkflowFixture(t)
	f.chat.err = errors.New("timeout")

	result, err := f.svc.Submit(context.Background(), models.SubmitReportRequest{
		Description: "Injured dog",
		Location:    "Main St",
	})
	require.NoError(t, err)

	assert.True(t, result.Success())
	assert.Nil(t, result.AIAnalysis)
	assert.Equal(t, []string{models.WorkflowErrAIAnalysis}, result.Errors)

	stored, err := f.repo.GetByID(context.Background(), result.ReportID)
	require.NoError(t, err)
	assert.Equal(t, "unknown", stored.Severity)
	assert.Equal(t, 5, stored.AIUrgencyScore)
	assert.Equal(t, "other", stored.Category)
	assert.Equal(t, 1, stored.EstimatedAnimalCount)
}

func TestSave_StoreErrorMessageDependsOnEnvironment(t *testing.T) {
	req := models.SubmitReportRequest{Description: "Injured dog", Location: "Main St"}

	f := newWorkflowFixture(t)
	f.repo.createErr = errors.New("relation \"reports\" does not exist")
	_, err := f.svc.Save(context.Background(), req)
	serviceErr, ok := utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "Internal server error", serviceErr.Message)

	f.svc.development = true
	_, err = f.svc.Save(context.Background(), req)
	serviceErr, ok = utils.GetServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "relation \"reports\" does not exist", serviceErr.Message)
}

func TestSave_KeepsCallerIDAndTrimsOptionalFields(t *testing.T) {
	f := newWorkflowFixture(t)

	report, err := f.svc.Save(context.Background(), models.SubmitReportRequest{
		ID:          "custom-1",
		Description: "  Cat hoarding  ",
		Location:    " Elm St ",
		ContactName: "   ",
		AnimalType:  "CAT",
	})
	require.NoError(t, err)

	assert.Equal(t, "custom-1", report.ID)
	assert.Equal(t, "Cat hoarding", report.Description)
	assert.Equal(t, "Elm St", report.Location)
	assert.Nil(t, report.ContactName)
	require.NotNil(t, report.AnimalType)
	assert.Equal(t, "cat", *report.AnimalType)
	assert.Zero(t, f.chat.calls)
	assert.Len(t, f.broadcaster.events, 1)
}

func TestGetReport_NotFound(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.svc.GetReport(context.Background(), "missing")
	assert.Equal(t, 404, utils.StatusCodeOf(err))
}

func TestSave_EmptyAnalysisGetsDefaults(t *testing.T) {
	f := newWorkflowFixture(t)

	report, err := f.svc.Save(context.Background(), models.SubmitReportRequest{
		Description: "Injured dog",
		Location:    "Main St",
		AIAnalysis:  &models.AIAnalysis{},
	})
	require.NoError(t, err)

	assert.Equal(t, "unknown", report.Severity)
	assert.Equal(t, 5, report.AIUrgencyScore)
	assert.Equal(t, "other", report.Category)
	assert.Equal(t, 1, report.EstimatedAnimalCount)
	assert.Nil(t, report.AIAnalysis)
}

func TestSave_KeepsValidSuppliedAnalysis(t *testing.T) {
	f := newWorkflowFixture(t)

	report, err := f.svc.Save(context.Background(), models.SubmitReportRequest{
		Description: "Injured dog",
		Location:    "Main St",
		AIAnalysis:  &models.AIAnalysis{Severity: "HIGH", Category: "neglect", UrgencyLevel: 8, ConfidenceScore: 0.7},
	})
	require.NoError(t, err)

	assert.Equal(t, "high", report.Severity)
	assert.Equal(t, 8, report.AIUrgencyScore)
	assert.Equal(t, "neglect", report.Category)
	require.NotNil(t, report.AIAnalysis)
	assert.Zero(t, f.chat.calls)
}

func TestNewReport_DefaultsEachMissingAnalysisField(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	req := models.SubmitReportRequest{Description: "Injured dog", Location: "Main St"}

	report := NewReport(req, &models.AIAnalysis{Severity: "high", UrgencyLevel: 0}, now)
	assert.Equal(t, "high", report.Severity)
	assert.Equal(t, 5, report.AIUrgencyScore)
	assert.Equal(t, "other", report.Category)

	report = NewReport(req, &models.AIAnalysis{Category: "neglect", UrgencyLevel: 11}, now)
	assert.Equal(t, "unknown", report.Severity)
	assert.Equal(t, 5, report.AIUrgencyScore)
	assert.Equal(t, "neglect", report.Category)
}

func TestSubmit_IgnoresAnalysisInRequestBody(t *testing.T) {
	f := newWorkflowFixture(t)

	result, err := f.svc.Submit(context.Background(), models.SubmitReportRequest{
		Description: "Injured dog",
		Location:    "Main St",
		AIAnalysis:  &models.AIAnalysis{Severity: "bogus", UrgencyLevel: 99},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.chat.calls)
	require.NotNil(t, result.AIAnalysis)
	assert.Equal(t, "high", result.AIAnalysis.Severity)
	assert.Equal(t, 8, result.AIAnalysis.UrgencyLevel)
	assert.Empty(t, result.Errors)

	stored, err := f.svc.GetReport(context.Background(), result.ReportID)
	require.NoError(t, err)
	assert.Equal(t, "high", stored.Severity)
	assert.Equal(t, 2, stored.EstimatedAnimalCount)
}
