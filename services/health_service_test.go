package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"rescueradar/models"
)

func TestHealthService_AllConfigured(t *testing.T) {
	svc := NewHealthService("1.0.0", []ServiceCheck{
		{Name: "ai_analysis", Values: []string{"gsk_live"}},
		{Name: "whatsapp", Values: []string{"AC123", "token"}},
	}, map[string]func(context.Context) error{
		"database": func(context.Context) error { return nil },
	}, []string{"/api/report"})

	resp, status := svc.Check(context.Background())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", resp.OverallHealth)
	assert.Equal(t, 2, resp.HealthyServices)
	assert.Equal(t, "up", resp.Connectivity["database"])
}

func TestHealthService_DegradedOnPlaceholderOrMissingKey(t *testing.T) {
	svc := NewHealthService("1.0.0", []ServiceCheck{
		{Name: "ai_analysis", Values: []string{"your_groq_api_key"}},
		{Name: "email_notification", Values: []string{"xkeysib_here"}},
		{Name: "google_maps", Values: []string{""}},
		{Name: "file_upload", Probe: func(context.Context) error { return errors.New("read-only fs") }},
		{Name: "database", Values: []string{"postgres://db"}},
	}, map[string]func(context.Context) error{
		"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
	}, nil)

	resp, status := svc.Check(context.Background())
	assert.Equal(t, http.StatusPartialContent, status)
	assert.Equal(t, "degraded", resp.OverallHealth)
	assert.Equal(t, 1, resp.HealthyServices)
	assert.Equal(t, 5, resp.TotalServices)
	assert.Equal(t, models.ServiceMisconfigured, resp.Services["ai_analysis"])
	assert.Equal(t, models.ServiceMisconfigured, resp.Services["file_upload"])
	assert.Equal(t, models.ServiceConfigured, resp.Services["database"])
	assert.Equal(t, "down", resp.Connectivity["redis"])
}
