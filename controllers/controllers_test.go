package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescueradar/models"
	"rescueradar/repositories"
	"rescueradar/services"
	"rescueradar/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryReports struct {
	mu        sync.Mutex
	reports   map[string]models.Report
	createErr error
	listErr   error
}

func newMemoryReports() *memoryReports {
	return &memoryReports{reports: map[string]models.Report{}}
}

func (m *memoryReports) Create(_ context.Context, r *models.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *memoryReports) GetByID(_ context.Context, id string) (*models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, repositories.ErrReportNotFound
	}
	return &r, nil
}

func (m *memoryReports) ListRecent(_ context.Context, _ int) ([]models.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Report, 0, len(m.reports))
	for _, r := range m.reports {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryReports) Ping(context.Context) error { return nil }

type testServer struct {
	router  *gin.Engine
	reports *memoryReports
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	reports := newMemoryReports()
	cache := services.NewCache(nil)
	notifications := services.NewNotificationService(services.NewMockEmailService(), "http://localhost:8080")
	whatsapp := services.NewWhatsAppService("", "", "")
	qr := services.NewQRService("http://localhost:8080")
	submissions := services.NewReportSubmissionService(services.ReportSubmissionDeps{
		Repository:    reports,
		AI:            services.NewAIService("", "", ""),
		Notifications: notifications,
		WhatsApp:      whatsapp,
		QR:            qr,
		Cache:         cache,
	})
	places, err := services.NewPlaceService("", cache)
	require.NoError(t, err)
	uploads := services.NewUploadService(services.NewLocalStorage(t.TempDir(), "/uploads"))

	report := NewReportController(submissions, false)
	notification := NewNotificationController(notifications, whatsapp, "", false)
	mapController := NewMapController(services.NewFeedService(reports, cache), places, submissions, notifications, false)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(utils.MethodNotAllowedResponse)

	api := r.Group("/api")
	api.POST("/report", report.SubmitReport)
	api.POST("/save-report", report.SaveReport)
	api.POST("/ai-analysis", NewAIController(services.NewAIService("", "", ""), false).Analyze)
	api.POST("/email-notify", notification.EmailNotify)
	api.POST("/whatsapp-notify", notification.WhatsAppNotify)
	api.GET("/generate-qr", NewQRController(qr, false).GenerateQR)
	api.POST("/upload-image", NewUploadController(uploads, false).UploadImage)
	api.GET("/reports/active", mapController.ActiveReports)
	api.GET("/organizations/nearby", mapController.NearbyOrganizations)
	api.POST("/organizations/alert", mapController.AlertOrganization)
	api.GET("/admin/reports/:id", NewAdminController(submissions, nil, false).GetReport)

	health := services.NewHealthService("test", []services.ServiceCheck{
		{Name: "ai_analysis", Values: []string{""}},
		{Name: "database", Values: []string{"postgres://localhost/rescueradar"}},
	}, nil, nil)
	api.GET("/health", NewHealthController(health).Health)

	return &testServer{router: r, reports: reports}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func TestSubmitReport_MinimalReportSucceeds(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/report", gin.H{"description": "Injured dog", "location": "Main St"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SubmitReportResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Report submitted successfully", resp.Message)
	assert.NotEmpty(t, resp.ReportID)
	assert.True(t, resp.Workflow.Saved)
	assert.True(t, resp.Workflow.QRGenerated)
	assert.False(t, resp.Workflow.NotificationsSent.Email)
	assert.False(t, resp.Workflow.NotificationsSent.WhatsApp)
	assert.Contains(t, resp.QRCodeURL, "/api/generate-qr?report_id="+resp.ReportID)
	assert.Contains(t, resp.Workflow.Errors, models.WorkflowErrAIAnalysis)
}

func TestSubmitReport_RejectsMissingFields(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/report", gin.H{"description": "   ", "location": "Main St"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.reports.reports)
}

func TestSubmitReport_SaveFailureReturns500(t *testing.T) {
	s := newTestServer(t)
	s.reports.createErr = errors.New("connection refused")

	w := s.do(http.MethodPost, "/api/report", gin.H{"description": "Injured dog", "location": "Main St"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.SubmitReportResponse
	decode(t, w, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Report submission failed or incomplete", resp.Message)
	assert.Contains(t, resp.Workflow.Errors, models.WorkflowErrSave)
	assert.False(t, resp.Workflow.QRGenerated)
}

func TestSaveReport(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/save-report", gin.H{
		"description":   "Starving cat",
		"location":      "Park Road",
		"contact_email": "reporter@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SaveReportResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, resp.ReportID, resp.Data.ID)
	assert.Equal(t, models.UrgencyNormal, resp.Data.UrgencyLevel)
	assert.Equal(t, "unknown", resp.Data.Severity)

	w = s.do(http.MethodPost, "/api/save-report", gin.H{"description": "x", "location": "y", "contact_email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaveReport_HidesStoreErrorOutsideDevelopment(t *testing.T) {
	s := newTestServer(t)
	s.reports.createErr = errors.New(`pq: relation "reports" does not exist`)

	w := s.do(http.MethodPost, "/api/save-report", gin.H{"description": "x", "location": "y"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestPostEndpoints_RejectOtherMethods(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/report", "/api/save-report", "/api/ai-analysis", "/api/email-notify", "/api/whatsapp-notify"} {
		w := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
		assert.JSONEq(t, `{"message":"Method not allowed"}`, w.Body.String())
	}
}

func TestAIAnalysis_ValidatesBeforeCallingProvider(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/ai-analysis", gin.H{"description": "Injured dog"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/ai-analysis", gin.H{"description": "Injured dog", "location": "Main St"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestEmailNotify(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/email-notify", gin.H{"report_id": "r-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/email-notify", gin.H{"report_id": "r-1", "email": "reporter@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.EmailNotifyResponse
	decode(t, w, &resp)
	assert.True(t, resp.EmailSent)
	assert.Equal(t, "RescueRadar - Report Confirmation #r-1", resp.Details.Subject)
	assert.Equal(t, "reporter@example.com", resp.Details.Recipient)
}

func TestWhatsAppNotify_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/whatsapp-notify", gin.H{"phone_number": "+15551234567"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/whatsapp-notify", gin.H{"phone_number": "+15551234567", "message": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGenerateQR(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/generate-qr", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/generate-qr?report_id=abc&format=svg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.QRResponse
	decode(t, w, &resp)
	assert.Equal(t, "http://localhost:8080/report/abc", resp.QRCode.Data)
	assert.Equal(t, "200x200", resp.QRCode.Size)
	assert.Contains(t, resp.QRCode.QRCodeData, "<svg")

	w = s.do(http.MethodGet, "/api/generate-qr?report_id=abc&download=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-code-abc.png"`, w.Header().Get("Content-Disposition"))
	_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	assert.NoError(t, err)

	w = s.do(http.MethodGet, "/api/generate-qr?report_id=abc&size=10", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActiveReports_FiltersAndFallsBack(t *testing.T) {
	s := newTestServer(t)
	now := time.Now()
	s.reports.reports["old"] = models.Report{ID: "old", Description: "Old case", Location: "A", UrgencyLevel: "high", CreatedAt: now.Add(-25 * time.Hour)}
	s.reports.reports["new"] = models.Report{ID: "new", Description: "New case", Location: "B", UrgencyLevel: "low", CreatedAt: now.Add(-time.Hour)}

	w := s.do(http.MethodGet, "/api/reports/active?time_range=24h", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.ActiveReportsResponse
	decode(t, w, &resp)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, "new", resp.Reports[0].ID)

	w = s.do(http.MethodGet, "/api/reports/active?time_range=1y", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.reports.listErr = errors.New("store down")
	w = s.do(http.MethodGet, "/api/reports/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = models.ActiveReportsResponse{}
	decode(t, w, &resp)
	assert.True(t, resp.Fallback)
	assert.Len(t, resp.Reports, 4)
}

func TestNearbyOrganizations(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/organizations/nearby?lat=19.07", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/organizations/nearby?lat=191&lng=72.8", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/organizations/nearby?lat=19.07&lng=72.87", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAlertOrganization(t *testing.T) {
	s := newTestServer(t)
	s.reports.reports["r-9"] = models.Report{ID: "r-9", Description: "Dogs chained", Location: "Yard", CreatedAt: time.Now()}

	w := s.do(http.MethodPost, "/api/organizations/alert", gin.H{"report_id": "missing", "email": "ngo@example.org"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/organizations/alert", gin.H{"report_id": "r-9", "email": "ngo@example.org", "organization_name": "Paws"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.EmailNotifyResponse
	decode(t, w, &resp)
	assert.Equal(t, "Urgent Animal Rescue Alert - Report #r-9", resp.Details.Subject)
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 8, 8))))

	upload := func(field string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile(field, "photo.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload-image", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := upload("image", img.Bytes())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.UploadImageResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Regexp(t, `^/uploads/\d{4}-\d{2}-\d{2}/[0-9a-f-]+\.png$`, resp.ImageURL)

	w = upload("file", img.Bytes())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No image file provided")

	w = upload("image", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid file type")
}

func TestAdminGetReport(t *testing.T) {
	s := newTestServer(t)
	s.reports.reports["r-1"] = models.Report{ID: "r-1", Description: "d", Location: "l"}

	w := s.do(http.MethodGet, "/api/admin/reports/r-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"r-1"`)

	w = s.do(http.MethodGet, "/api/admin/reports/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth_DegradedReturns206(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusPartialContent, w.Code)

	var resp models.HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "degraded", resp.OverallHealth)
	assert.Equal(t, 1, resp.HealthyServices)
	assert.Equal(t, 2, resp.TotalServices)
}
