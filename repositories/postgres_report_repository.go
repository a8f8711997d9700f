package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"rescueradar/models"
)

const reportColumns = `id, description, location, coordinates, contact_name, contact_email, contact_phone,
	image_url, urgency_level, animal_type, situation_type, ai_analysis, status, severity,
	ai_urgency_score, category, requires_immediate_intervention, estimated_animal_count,
	created_at, updated_at`

type PostgresReportRepository struct {
	db *sql.DB
}

func NewPostgresReportRepository(db *sql.DB) *PostgresReportRepository {
	return &PostgresReportRepository{db: db}
}

func (pr *PostgresReportRepository) Create(ctx context.Context, report *models.Report) error {
	coordinates, err := marshalNullable(report.Coordinates)
	if err != nil {
		return fmt.Errorf("encode coordinates: %w", err)
	}
	analysis, err := marshalNullable(report.AIAnalysis)
	if err != nil {
		return fmt.Errorf("encode ai analysis: %w", err)
	}

	_, err = pr.db.ExecContext(ctx,
		`INSERT INTO reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		report.ID,
		report.Description,
		report.Location,
		coordinates,
		report.ContactName,
		report.ContactEmail,
		report.ContactPhone,
		report.ImageURL,
		report.UrgencyLevel,
		report.AnimalType,
		report.SituationType,
		analysis,
		report.Status,
		report.Severity,
		report.AIUrgencyScore,
		report.Category,
		report.RequiresImmediateIntervention,
		report.EstimatedAnimalCount,
		report.CreatedAt,
		report.UpdatedAt,
	)
	return err
}

func (pr *PostgresReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	row := pr.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)

	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

func (pr *PostgresReportRepository) ListRecent(ctx context.Context, limit int) ([]models.Report, error) {
	rows, err := pr.db.QueryContext(ctx,
		`SELECT `+reportColumns+` FROM reports ORDER BY created_at DESC LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (pr *PostgresReportRepository) Ping(ctx context.Context) error {
	return pr.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var (
		report                                  models.Report
		coordinates, analysis                   []byte
		contactName, contactEmail, contactPhone sql.NullString
		imageURL, animalType, situationType     sql.NullString
	)

	err := row.Scan(
		&report.ID,
		&report.Description,
		&report.Location,
		&coordinates,
		&contactName,
		&contactEmail,
		&contactPhone,
		&imageURL,
		&report.UrgencyLevel,
		&animalType,
		&situationType,
		&analysis,
		&report.Status,
		&report.Severity,
		&report.AIUrgencyScore,
		&report.Category,
		&report.RequiresImmediateIntervention,
		&report.EstimatedAnimalCount,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(coordinates) > 0 {
		report.Coordinates = &models.Coordinates{}
		if err := json.Unmarshal(coordinates, report.Coordinates); err != nil {
			return nil, fmt.Errorf("decode coordinates for %s: %w", report.ID, err)
		}
	}
	if len(analysis) > 0 {
		report.AIAnalysis = &models.AIAnalysis{}
		if err := json.Unmarshal(analysis, report.AIAnalysis); err != nil {
			return nil, fmt.Errorf("decode ai analysis for %s: %w", report.ID, err)
		}
	}

	report.ContactName = nullString(contactName)
	report.ContactEmail = nullString(contactEmail)
	report.ContactPhone = nullString(contactPhone)
	report.ImageURL = nullString(imageURL)
	report.AnimalType = nullString(animalType)
	report.SituationType = nullString(situationType)

	return &report, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// marshalNullable encodes v as JSON, mapping nil pointers to SQL NULL
func marshalNullable[T any](v *T) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
