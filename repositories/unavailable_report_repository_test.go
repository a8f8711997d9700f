package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"rescueradar/models"
)

func TestUnavailableReportRepository_EveryCallFails(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
	repo := NewUnavailableReportRepository("postgres", cause)
	ctx := context.Background()

	err := repo.Create(ctx, &models.Report{ID: "r1"})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "postgres store unavailable")

	report, err := repo.GetByID(ctx, "r1")
	assert.Nil(t, report)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrReportNotFound)

	reports, err := repo.ListRecent(ctx, 10)
	assert.Nil(t, reports)
	assert.ErrorIs(t, err, cause)

	assert.ErrorIs(t, repo.Ping(ctx), cause)
}
