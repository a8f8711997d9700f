package models

import "time"

// Standard API Response wrapper
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// Service configuration states reported by health
const (
	ServiceConfigured    = "configured"
	ServiceMisconfigured = "misconfigured"
)

// Health Check Response
type HealthResponse struct {
	Status          string            `json:"status"`
	OverallHealth   string            `json:"overall_health"`
	HealthyServices int               `json:"healthy_services"`
	TotalServices   int               `json:"total_services"`
	Services        map[string]string `json:"services"`
	Connectivity    map[string]string `json:"connectivity"`
	Endpoints       []string          `json:"endpoints"`
	Version         string            `json:"version"`
	Uptime          string            `json:"uptime"`
	Timestamp       time.Time         `json:"timestamp"`
}

// Error Response Codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeAuthentication = "AUTHENTICATION_ERROR"
	ErrCodeAuthorization  = "AUTHORIZATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeExternal       = "EXTERNAL_SERVICE_ERROR"
	ErrCodeMethod         = "METHOD_NOT_ALLOWED"
)
