package services

import (
	"context"
	"net/http"
	"sort"
	"time"

	"rescueradar/models"
	"rescueradar/utils"
)

const healthProbeTimeout = 2 * time.Second

// ServiceCheck marks a service configured when every value is set and not a
// template placeholder, and Probe (if any) succeeds.
type ServiceCheck struct {
	Name   string
	Values []string
	Probe  func(ctx context.Context) error
}

type HealthService struct {
	version      string
	started      time.Time
	checks       []ServiceCheck
	connectivity map[string]func(ctx context.Context) error
	endpoints    []string
}

func NewHealthService(version string, checks []ServiceCheck, connectivity map[string]func(ctx context.Context) error, endpoints []string) *HealthService {
	return &HealthService{
		version:      version,
		started:      time.Now(),
		checks:       checks,
		connectivity: connectivity,
		endpoints:    endpoints,
	}
}

// Check returns the health report and its HTTP status: 200 when every service
// is configured, 206 otherwise.
func (s *HealthService) Check(ctx context.Context) (*models.HealthResponse, int) {
	resp := &models.HealthResponse{
		Status:       "healthy",
		Services:     make(map[string]string, len(s.checks)),
		Connectivity: make(map[string]string, len(s.connectivity)),
		Endpoints:    s.endpoints,
		Version:      s.version,
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		Timestamp:    time.Now().UTC(),
	}

	for _, check := range s.checks {
		status := models.ServiceConfigured
		if !valuesConfigured(check.Values) || !probe(ctx, check.Probe) {
			status = models.ServiceMisconfigured
		} else {
			resp.HealthyServices++
		}
		resp.Services[check.Name] = status
	}
	resp.TotalServices = len(s.checks)

	names := make([]string, 0, len(s.connectivity))
	for name := range s.connectivity {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if probe(ctx, s.connectivity[name]) {
			resp.Connectivity[name] = "up"
		} else {
			resp.Connectivity[name] = "down"
		}
	}

	if resp.HealthyServices == resp.TotalServices {
		resp.OverallHealth = "healthy"
		return resp, http.StatusOK
	}
	resp.OverallHealth = "degraded"
	return resp, http.StatusPartialContent
}

func valuesConfigured(values []string) bool {
	for _, v := range values {
		if utils.IsPlaceholder(v) {
			return false
		}
	}
	return true
}

func probe(ctx context.Context, fn func(ctx context.Context) error) bool {
	if fn == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	return fn(ctx) == nil
}
