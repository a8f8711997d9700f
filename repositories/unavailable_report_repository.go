package repositories

import (
	"context"
	"fmt"
	"rescueradar/models"
)

// UnavailableReportRepository stands in when the store could not be reached at
// startup. Every call fails with the connection error, so callers take their
// store-down paths instead of the process exiting.
type UnavailableReportRepository struct {
	driver string
	cause  error
}

func NewUnavailableReportRepository(driver string, cause error) *UnavailableReportRepository {
	return &UnavailableReportRepository{driver: driver, cause: cause}
}

func (ur *UnavailableReportRepository) err() error {
	return fmt.Errorf("%s store unavailable: %w", ur.driver, ur.cause)
}

func (ur *UnavailableReportRepository) Create(context.Context, *models.Report) error {
	return ur.err()
}

func (ur *UnavailableReportRepository) GetByID(context.Context, string) (*models.Report, error) {
	return nil, ur.err()
}

func (ur *UnavailableReportRepository) ListRecent(context.Context, int) ([]models.Report, error) {
	return nil, ur.err()
}

func (ur *UnavailableReportRepository) Ping(context.Context) error {
	return ur.err()
}
