package services

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"rescueradar/models"
	"rescueradar/repositories"
)

// Time range filter values
const (
	TimeRangeAll = "all"
	TimeRange24h = "24h"
	TimeRange7d  = "7d"
	TimeRange30d = "30d"
)

// Reports without coordinates are placed near this point.
const (
	defaultLat    = 28.6139
	defaultLng    = 77.2090
	jitterSpanDeg = 0.1
)

const DemoFallbackMessage = "Using demo data - API connection failed. The map shows sample reports for demonstration."

type FeedService struct {
	repo  repositories.ReportRepository
	cache *Cache
	now   func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFeedService(repo repositories.ReportRepository, cache *Cache) *FeedService {
	return &FeedService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ActiveReports returns recent reports matching filter. A store failure yields the
// demo dataset with Fallback set rather than an error.
func (s *FeedService) ActiveReports(ctx context.Context, filter models.ReportFilter, limit int) *models.ActiveReportsResponse {
	reports, err := s.load(ctx, limit)
	if err != nil {
		logrus.WithError(err).Warn("Failed to fetch reports, serving demo data")
		demo := FilterReports(DemoReports(s.now()), filter, s.now())
		return &models.ActiveReportsResponse{
			Success:  true,
			Reports:  demo,
			Total:    len(demo),
			Fallback: true,
			Message:  DemoFallbackMessage,
		}
	}

	filtered := FilterReports(reports, filter, s.now())
	return &models.ActiveReportsResponse{
		Success: true,
		Reports: filtered,
		Total:   len(filtered),
	}
}

// Refresh reloads the unfiltered list from the store and repopulates the cache.
func (s *FeedService) Refresh(ctx context.Context) ([]models.ActiveReport, error) {
	s.cache.Delete(ctx, ActiveReportsCacheKey)
	return s.load(ctx, repositories.DefaultListLimit)
}

func (s *FeedService) load(ctx context.Context, limit int) ([]models.ActiveReport, error) {
	useCache := limit <= 0 || limit == repositories.DefaultListLimit
	if useCache {
		var cached []models.ActiveReport
		if s.cache.GetJSON(ctx, ActiveReportsCacheKey, &cached) {
			return cached, nil
		}
	}

	stored, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	reports := make([]models.ActiveReport, 0, len(stored))
	for _, r := range stored {
		reports = append(reports, ToActiveReport(r, s.jitter))
	}
	if useCache {
		s.cache.SetJSON(ctx, ActiveReportsCacheKey, reports, ActiveReportsCacheTTL)
	}
	return reports, nil
}

// jitter returns an offset in [-0.05, 0.05).
func (s *FeedService) jitter() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (s.rng.Float64() - 0.5) * jitterSpanDeg
}

// ToActiveReport projects a stored report for the map. Missing coordinates get the
// default point offset by jitter; a nil jitter places them on the point itself.
func ToActiveReport(r models.Report, jitter func() float64) models.ActiveReport {
	coords := models.Coordinates{Lat: defaultLat, Lng: defaultLng}
	if r.Coordinates != nil {
		coords = *r.Coordinates
	} else if jitter != nil {
		coords.Lat += jitter()
		coords.Lng += jitter()
	}
	urgency := r.UrgencyLevel
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	return models.ActiveReport{
		ID:            r.ID,
		Description:   r.Description,
		Location:      r.Location,
		Coordinates:   coords,
		UrgencyLevel:  urgency,
		AnimalType:    r.AnimalType,
		SituationType: r.SituationType,
		CreatedAt:     r.CreatedAt,
		ImageURL:      r.ImageURL,
		ContactInfo: models.ContactInfo{
			Name:  r.ContactName,
			Email: r.ContactEmail,
			Phone: r.ContactPhone,
		},
		AIAnalysis: r.AIAnalysis,
	}
}

// FilterReports applies the urgency, time range and search filters. All set
// filters must match; empty ones match everything.
func FilterReports(reports []models.ActiveReport, filter models.ReportFilter, now time.Time) []models.ActiveReport {
	out := make([]models.ActiveReport, 0, len(reports))
	for _, r := range reports {
		if MatchesFilter(r, filter, now) {
			out = append(out, r)
		}
	}
	return out
}

func MatchesFilter(r models.ActiveReport, filter models.ReportFilter, now time.Time) bool {
	return matchesUrgency(r, filter.Urgency) &&
		matchesTimeRange(r, filter.TimeRange, now) &&
		matchesSearch(r, filter.Search)
}

func matchesUrgency(r models.ActiveReport, levels []string) bool {
	if len(levels) == 0 {
		return true
	}
	for _, level := range levels {
		if strings.EqualFold(strings.TrimSpace(level), r.UrgencyLevel) {
			return true
		}
	}
	return false
}

func matchesTimeRange(r models.ActiveReport, timeRange string, now time.Time) bool {
	var window time.Duration
	switch timeRange {
	case TimeRange24h:
		window = 24 * time.Hour
	case TimeRange7d:
		window = 168 * time.Hour
	case TimeRange30d:
		window = 720 * time.Hour
	default:
		return true
	}
	return now.Sub(r.CreatedAt) <= window
}

func matchesSearch(r models.ActiveReport, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	fields := []string{r.Description, r.Location}
	if r.AnimalType != nil {
		fields = append(fields, *r.AnimalType)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// ParseUrgencyList splits a comma separated urgency query value.
func ParseUrgencyList(raw string) []string {
	var levels []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			levels = append(levels, part)
		}
	}
	return levels
}

// DemoReports is the sample dataset served when the store is unreachable.
func DemoReports(now time.Time) []models.ActiveReport {
	str := func(s string) *string { return &s }
	return []models.ActiveReport{
		{
			ID:            "demo-001",
			Description:   "Injured stray dog found near Mumbai Central Station. The dog appears to have a leg injury and is limping. Local residents have been feeding it but professional medical attention is needed.",
			Location:      "Mumbai Central Railway Station, Mumbai, Maharashtra",
			Coordinates:   models.Coordinates{Lat: 19.0707, Lng: 72.8203},
			UrgencyLevel:  models.UrgencyHigh,
			AnimalType:    str("dog"),
			SituationType: str("injury"),
			CreatedAt:     now.Add(-2 * time.Hour),
			ContactInfo:   models.ContactInfo{Name: str("Concerned Citizen"), Phone: str("+91-9876543210")},
		},
		{
			ID:            "demo-002",
			Description:   "Cat stuck on high-rise building terrace for over 24 hours. Building residents report the cat appears weak and hasn't eaten. Fire department assistance may be required.",
			Location:      "Worli Sea Face, Mumbai, Maharashtra",
			Coordinates:   models.Coordinates{Lat: 19.0176, Lng: 72.8151},
			UrgencyLevel:  models.UrgencyEmergency,
			AnimalType:    str("cat"),
			SituationType: str("other"),
			CreatedAt:     now.Add(-4 * time.Hour),
			ContactInfo:   models.ContactInfo{Name: str("Building Society"), Email: str("society@example.com")},
		},
		{
			ID:            "demo-003",
			Description:   "Multiple street dogs showing signs of poisoning in residential area. Three dogs found unconscious, immediate veterinary attention required.",
			Location:      "Bandra West, Mumbai, Maharashtra",
			Coordinates:   models.Coordinates{Lat: 19.0596, Lng: 72.8295},
			UrgencyLevel:  models.UrgencyEmergency,
			AnimalType:    str("dog"),
			SituationType: str("abuse"),
			CreatedAt:     now.Add(-1 * time.Hour),
			ContactInfo: models.ContactInfo{
				Name:  str("Animal Welfare Volunteer"),
				Phone: str("+91-9876543211"),
				Email: str("volunteer@animalcare.org"),
			},
		},
		{
			ID:            "demo-004",
			Description:   "Abandoned kitten found in cardboard box near market area. Kitten appears very young and needs immediate care and feeding.",
			Location:      "Crawford Market, Mumbai, Maharashtra",
			Coordinates:   models.Coordinates{Lat: 18.9467, Lng: 72.8342},
			UrgencyLevel:  models.UrgencyNormal,
			AnimalType:    str("cat"),
			SituationType: str("abandonment"),
			CreatedAt:     now.Add(-6 * time.Hour),
			ContactInfo:   models.ContactInfo{Name: str("Market Vendor"), Phone: str("+91-9876543212")},
		},
	}
}
