package repositories

import (
	"context"
	"errors"
	"rescueradar/models"
)

var ErrReportNotFound = errors.New("report not found")

// ReportRepository persists reports. Implementations must treat Create as a
// single atomic insert keyed by report.ID.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	ListRecent(ctx context.Context, limit int) ([]models.Report, error)
	Ping(ctx context.Context) error
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
