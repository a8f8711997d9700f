package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescueradar/models"
	"rescueradar/repositories"
)

func ptr(s string) *string { return &s }

func TestFilterReports_TimeRange(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	reports := []models.ActiveReport{{ID: "old", UrgencyLevel: "normal", CreatedAt: now.Add(-25 * time.Hour)}}

	assert.Empty(t, FilterReports(reports, models.ReportFilter{TimeRange: TimeRange24h}, now))
	assert.Len(t, FilterReports(reports, models.ReportFilter{TimeRange: TimeRange7d}, now), 1)
	assert.Len(t, FilterReports(reports, models.ReportFilter{TimeRange: TimeRangeAll}, now), 1)
	assert.Len(t, FilterReports(reports, models.ReportFilter{}, now), 1)
}

func TestFilterReports_CombinesFilters(t *testing.T) {
	now := time.Now()
	reports := []models.ActiveReport{
		{ID: "1", Description: "Injured DOG", Location: "Main St", UrgencyLevel: "high", CreatedAt: now},
		{ID: "2", Description: "Starving horse", Location: "Farm Rd", UrgencyLevel: "low", CreatedAt: now},
		{ID: "3", Description: "Abandoned", Location: "Dock", AnimalType: ptr("dog"), UrgencyLevel: "emergency", CreatedAt: now},
	}

	got := FilterReports(reports, models.ReportFilter{Search: "dog"}, now)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	got = FilterReports(reports, models.ReportFilter{Search: "dog", Urgency: []string{"emergency"}}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)

	got = FilterReports(reports, models.ReportFilter{Search: "farm rd"}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestParseUrgencyList(t *testing.T) {
	assert.Equal(t, []string{"high", "emergency"}, ParseUrgencyList(" High, ,emergency "))
	assert.Nil(t, ParseUrgencyList(""))
}

func TestToActiveReport_DefaultsCoordinatesAndUrgency(t *testing.T) {
	r := models.Report{ID: "r1", ContactEmail: ptr("a@b.co")}

	exact := ToActiveReport(r, nil)
	assert.Equal(t, models.Coordinates{Lat: 28.6139, Lng: 77.2090}, exact.Coordinates)
	assert.Equal(t, models.UrgencyNormal, exact.UrgencyLevel)
	assert.Equal(t, "a@b.co", *exact.ContactInfo.Email)

	svc := NewFeedService(newFakeReportRepo(), nil)
	for i := 0; i < 50; i++ {
		jittered := ToActiveReport(r, svc.jitter)
		assert.InDelta(t, 28.6139, jittered.Coordinates.Lat, 0.05)
		assert.InDelta(t, 77.2090, jittered.Coordinates.Lng, 0.05)
	}

	r.Coordinates = &models.Coordinates{Lat: 1, Lng: 2}
	assert.Equal(t, models.Coordinates{Lat: 1, Lng: 2}, ToActiveReport(r, svc.jitter).Coordinates)
}

func TestFeedService_ActiveReports(t *testing.T) {
	repo := newFakeReportRepo()
	now := time.Now()
	repo.reports["a"] = models.Report{ID: "a", UrgencyLevel: "high", CreatedAt: now.Add(-time.Hour)}
	repo.reports["b"] = models.Report{ID: "b", UrgencyLevel: "low", CreatedAt: now}
	svc := NewFeedService(repo, nil)

	resp := svc.ActiveReports(context.Background(), models.ReportFilter{}, 0)
	assert.True(t, resp.Success)
	assert.False(t, resp.Fallback)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "b", resp.Reports[0].ID)

	resp = svc.ActiveReports(context.Background(), models.ReportFilter{Urgency: []string{"high"}}, 0)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "a", resp.Reports[0].ID)
}

func TestFeedService_FallsBackToDemoData(t *testing.T) {
	repo := newFakeReportRepo()
	repo.listErr = errors.New("connection refused")
	svc := NewFeedService(repo, nil)

	resp := svc.ActiveReports(context.Background(), models.ReportFilter{}, 0)
	assert.True(t, resp.Success)
	assert.True(t, resp.Fallback)
	assert.Equal(t, DemoFallbackMessage, resp.Message)
	require.Equal(t, 4, resp.Total)
	assert.Equal(t, "demo-001", resp.Reports[0].ID)
	assert.Equal(t, "demo-004", resp.Reports[3].ID)

	resp = svc.ActiveReports(context.Background(), models.ReportFilter{Urgency: []string{"emergency"}}, 0)
	assert.Equal(t, 2, resp.Total)
}

func TestFeedService_DemoDataWhenStoreNeverConnected(t *testing.T) {
	repo := repositories.NewUnavailableReportRepository("postgres", errors.New("connection refused"))
	svc := NewFeedService(repo, nil)

	resp := svc.ActiveReports(context.Background(), models.ReportFilter{}, 0)
	assert.True(t, resp.Success)
	assert.True(t, resp.Fallback)
	assert.Equal(t, 4, resp.Total)
}
