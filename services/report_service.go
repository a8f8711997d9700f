package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rescueradar/metrics"
	"rescueradar/models"
	"rescueradar/repositories"
	"rescueradar/utils"
)

// Workflow step names used in metrics and logs
const (
	StepAIAnalysis = "ai_analysis"
	StepSave       = "save"
	StepEmail      = "email"
	StepWhatsApp   = "whatsapp"
	StepQRCode     = "qr_code"
)

const defaultAIUrgencyScore = 5

// ReportBroadcaster pushes newly created reports to live feed subscribers.
type ReportBroadcaster interface {
	BroadcastReportCreated(event models.ReportCreatedEvent)
}

type ReportSubmissionDeps struct {
	Repository    repositories.ReportRepository
	AI            *AIService
	Notifications *NotificationService
	WhatsApp      *WhatsAppService
	QR            *QRService
	Publisher     EventPublisher
	Broadcaster   ReportBroadcaster
	Cache         *Cache
	RescuePhone   string
	Development   bool
}

// ReportSubmissionService is the single entry point for storing reports, used by
// both the full workflow and the direct save endpoint.
type ReportSubmissionService struct {
	repo          repositories.ReportRepository
	ai            *AIService
	notifications *NotificationService
	whatsapp      *WhatsAppService
	qr            *QRService
	publisher     EventPublisher
	broadcaster   ReportBroadcaster
	cache         *Cache
	validator     *utils.ValidationService
	rescuePhone   string
	development   bool
	now           func() time.Time
}

func NewReportSubmissionService(deps ReportSubmissionDeps) *ReportSubmissionService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &ReportSubmissionService{
		repo:          deps.Repository,
		ai:            deps.AI,
		notifications: deps.Notifications,
		whatsapp:      deps.WhatsApp,
		qr:            deps.QR,
		publisher:     publisher,
		broadcaster:   deps.Broadcaster,
		cache:         deps.Cache,
		validator:     utils.NewValidationService(),
		rescuePhone:   strings.TrimSpace(deps.RescuePhone),
		development:   deps.Development,
		now:           time.Now,
	}
}

// Validate trims the request in place and checks it. It never touches the network.
func (s *ReportSubmissionService) Validate(req *models.SubmitReportRequest) error {
	req.ID = strings.TrimSpace(req.ID)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.ContactEmail = strings.TrimSpace(req.ContactEmail)
	req.ContactPhone = strings.TrimSpace(req.ContactPhone)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.UrgencyLevel = strings.ToLower(strings.TrimSpace(req.UrgencyLevel))
	req.AnimalType = strings.ToLower(strings.TrimSpace(req.AnimalType))
	req.SituationType = strings.ToLower(strings.TrimSpace(req.SituationType))

	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return &utils.ValidationFailedError{Errors: errs}
	}
	return nil
}

// Save validates and persists a report, then runs the post-save side effects.
func (s *ReportSubmissionService) Save(ctx context.Context, req models.SubmitReportRequest) (*models.Report, error) {
	if err := s.Validate(&req); err != nil {
		return nil, err
	}
	report, err := s.persist(ctx, req, s.suppliedAnalysis(req.AIAnalysis))
	metrics.ObserveStep(StepSave, err == nil)
	if err != nil {
		return nil, err
	}
	s.afterSave(ctx, report)
	return report, nil
}

// Submit runs the complete report workflow. Only a validation error is returned;
// every step failure is recorded on the result instead.
func (s *ReportSubmissionService) Submit(ctx context.Context, req models.SubmitReportRequest) (*models.WorkflowResult, error) {
	if err := s.Validate(&req); err != nil {
		return nil, err
	}

	result := &models.WorkflowResult{Errors: []string{}}
	log := logrus.WithField("location", req.Location)

	// 1. AI analysis
	analysis, err := s.analyze(ctx, req)
	metrics.ObserveStep(StepAIAnalysis, err == nil)
	if err != nil {
		log.WithError(err).Warn("AI analysis step failed")
		result.AddError(models.WorkflowErrAIAnalysis)
	}
	result.AIAnalysis = analysis

	// 2. Save; everything after needs the identifier
	report, err := s.persist(ctx, req, analysis)
	metrics.ObserveStep(StepSave, err == nil)
	if err != nil {
		log.WithError(err).Error("Save step failed, aborting workflow")
		result.AddError(models.WorkflowErrSave)
		return result, nil
	}
	result.ReportID = report.ID
	result.Saved = true
	log = log.WithField("report_id", report.ID)

	s.afterSave(ctx, report)

	// 3. Confirmation email
	if report.ContactEmail != nil {
		emailResult, err := s.sendConfirmation(ctx, report)
		metrics.ObserveStep(StepEmail, err == nil)
		if err != nil {
			log.WithError(err).Warn("Email step failed")
			result.AddError(models.WorkflowErrEmail)
		} else {
			result.NotificationsSent.Email = true
			result.EmailMessageID = emailResult.MessageID
		}
	}

	// 4. WhatsApp to the reporter, plus the rescue team alert
	if report.ContactPhone != nil {
		waResult, err := s.sendWhatsApp(ctx, report)
		metrics.ObserveStep(StepWhatsApp, err == nil)
		if err != nil {
			log.WithError(err).Warn("WhatsApp step failed")
			result.AddError(models.WorkflowErrWhatsApp)
		} else {
			result.NotificationsSent.WhatsApp = true
			result.WhatsAppSID = waResult.MessageSID
			if waResult.RescueNotification != nil {
				result.RescueAlertSID = waResult.RescueNotification.MessageSID
			}
		}
	}

	// 5. QR code for the public report page
	_, err = s.generateQR(report.ID)
	metrics.ObserveStep(StepQRCode, err == nil)
	if err != nil {
		log.WithError(err).Warn("QR code step failed")
		result.AddError(models.WorkflowErrQRCode)
	} else {
		result.QRGenerated = true
		result.QRCodeURL = s.qr.EndpointURL(report.ID)
	}

	log.WithFields(logrus.Fields{
		"email":    result.NotificationsSent.Email,
		"whatsapp": result.NotificationsSent.WhatsApp,
		"qr":       result.QRGenerated,
		"errors":   len(result.Errors),
	}).Info("Report workflow completed")

	return result, nil
}

// GetReport loads a stored report by id.
func (s *ReportSubmissionService) GetReport(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			return nil, utils.ErrReportNotFound
		}
		return nil, s.storeError("get report", err)
	}
	return report, nil
}

// suppliedAnalysis checks an analysis sent by the caller of the save endpoint.
// One that fails the model-output checks is dropped so the row gets the defaults.
func (s *ReportSubmissionService) suppliedAnalysis(supplied *models.AIAnalysis) *models.AIAnalysis {
	if supplied == nil {
		return nil
	}
	analysis := *supplied
	if err := NormalizeAnalysis(&analysis); err != nil {
		logrus.WithError(err).Warn("Ignoring invalid ai_analysis on saved report")
		return nil
	}
	return &analysis
}

// analyze always asks the model; an analysis in the request body is not trusted here.
func (s *ReportSubmissionService) analyze(ctx context.Context, req models.SubmitReportRequest) (*models.AIAnalysis, error) {
	analysis, _, err := s.ai.Analyze(ctx, models.AnalysisRequest{
		Description:   req.Description,
		Location:      req.Location,
		ImageURL:      req.ImageURL,
		AnimalType:    req.AnimalType,
		SituationType: req.SituationType,
	})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func (s *ReportSubmissionService) persist(ctx context.Context, req models.SubmitReportRequest, analysis *models.AIAnalysis) (*models.Report, error) {
	report := NewReport(req, analysis, s.now().UTC())
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, s.storeError("save report", err)
	}
	logrus.WithFields(logrus.Fields{
		"report_id": report.ID,
		"urgency":   report.UrgencyLevel,
		"severity":  report.Severity,
	}).Info("Report saved")
	return report, nil
}

// storeError surfaces the driver message only in development.
func (s *ReportSubmissionService) storeError(operation string, err error) error {
	serviceErr := utils.NewDatabaseError(operation, err).(utils.ServiceError)
	if s.development {
		serviceErr.Message = err.Error()
	} else {
		serviceErr.Message = "Internal server error"
	}
	return serviceErr
}

// afterSave publishes, broadcasts and invalidates the feed cache. Failures are logged only.
func (s *ReportSubmissionService) afterSave(ctx context.Context, report *models.Report) {
	event := models.ReportCreatedEvent{
		ReportID:     report.ID,
		Location:     report.Location,
		Coordinates:  report.Coordinates,
		UrgencyLevel: report.UrgencyLevel,
		Severity:     report.Severity,
		Report:       ToActiveReport(*report, nil),
	}

	if err := s.publisher.PublishReportCreated(ctx, event); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("failure").Inc()
		logrus.WithError(err).WithField("report_id", report.ID).Warn("Failed to publish report event")
	} else {
		metrics.EventsPublishedTotal.WithLabelValues("success").Inc()
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastReportCreated(event)
	}
	s.cache.Delete(ctx, ActiveReportsCacheKey)
}

func (s *ReportSubmissionService) sendConfirmation(ctx context.Context, report *models.Report) (*models.EmailResult, error) {
	if s.notifications == nil {
		return nil, utils.NewNotConfiguredError("Email notification")
	}
	return s.notifications.SendEmail(ctx, models.EmailNotifyRequest{
		ReportID:         report.ID,
		Email:            utils.StringValue(report.ContactEmail),
		NotificationType: models.EmailTypeConfirmation,
		ReportDetails:    DetailsFromReport(report),
	})
}

func (s *ReportSubmissionService) sendWhatsApp(ctx context.Context, report *models.Report) (*models.WhatsAppResult, error) {
	return s.whatsapp.Send(ctx, models.WhatsAppNotifyRequest{
		PhoneNumber:     utils.StringValue(report.ContactPhone),
		Message:         reporterWhatsAppMessage(report),
		ReportID:        report.ID,
		UrgencyLevel:    report.UrgencyLevel,
		RescueTeamPhone: s.rescuePhone,
	})
}

func (s *ReportSubmissionService) generateQR(reportID string) (*models.QRCode, error) {
	if s.qr == nil {
		return nil, utils.NewNotConfiguredError("QR code")
	}
	return s.qr.Generate(models.QRRequest{
		ReportID: reportID,
		Format:   models.QRFormatPNG,
		Size:     DefaultQRSize,
	})
}

func reporterWhatsAppMessage(report *models.Report) string {
	return "Thank you for your animal rescue report! Your report ID: " + report.ID +
		". We will investigate and take action soon."
}

// NewReport builds the stored row from a validated request, applying defaults and
// the columns derived from the analysis.
func NewReport(req models.SubmitReportRequest, analysis *models.AIAnalysis, now time.Time) *models.Report {
	id := req.ID
	if id == "" {
		id = utils.GenerateUUID()
	}
	urgency := req.UrgencyLevel
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	report := &models.Report{
		ID:                   id,
		Description:          req.Description,
		Location:             req.Location,
		Coordinates:          req.Coordinates,
		ContactName:          utils.TrimmedOrNil(req.ContactName),
		ContactEmail:         utils.TrimmedOrNil(req.ContactEmail),
		ContactPhone:         utils.TrimmedOrNil(req.ContactPhone),
		ImageURL:             utils.TrimmedOrNil(req.ImageURL),
		UrgencyLevel:         urgency,
		AnimalType:           utils.TrimmedOrNil(req.AnimalType),
		SituationType:        utils.TrimmedOrNil(req.SituationType),
		AIAnalysis:           analysis,
		Status:               models.ReportStatusPending,
		Severity:             "unknown",
		AIUrgencyScore:       defaultAIUrgencyScore,
		Category:             "other",
		EstimatedAnimalCount: 1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if analysis != nil {
		if analysis.Severity != "" {
			report.Severity = analysis.Severity
		}
		if analysis.UrgencyLevel >= 1 && analysis.UrgencyLevel <= 10 {
			report.AIUrgencyScore = analysis.UrgencyLevel
		}
		if analysis.Category != "" {
			report.Category = analysis.Category
		}
		report.RequiresImmediateIntervention = analysis.RequiresImmediateIntervention
		if analysis.EstimatedAnimalCount > 0 {
			report.EstimatedAnimalCount = analysis.EstimatedAnimalCount
		}
	}
	return report
}
