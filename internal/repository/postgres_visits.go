package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// PostgresVisitsRepository 就诊记录Repository实现
type PostgresVisitsRepository struct {
	db *sql.DB
}

// NewPostgresVisitsRepository 创建就诊记录Repository
func NewPostgresVisitsRepository(db *sql.DB) *PostgresVisitsRepository {
	return &PostgresVisitsRepository{db: db}
}

var _ VisitsRepository = (*PostgresVisitsRepository)(nil)

const visitColumns = `
	id,
	patient_id,
	visit_date,
	COALESCE(doctor_name, '') AS doctor_name,
	COALESCE(reason, '') AS reason,
	COALESCE(diagnosis, '') AS diagnosis,
	COALESCE(treatment, '') AS treatment`

func scanVisit(row interface{ Scan(dest ...any) error }) (*domain.Visit, error) {
	var v domain.Visit
	err := row.Scan(
		&v.ID,
		&v.PatientID,
		&v.VisitDate,
		&v.DoctorName,
		&v.Reason,
		&v.Diagnosis,
		&v.Treatment,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Insert 追加一条就诊记录
func (r *PostgresVisitsRepository) Insert(ctx context.Context, visit *domain.Visit) (*domain.Visit, error) {
	query := `
		INSERT INTO visits (
			patient_id,
			visit_date,
			doctor_name,
			reason,
			diagnosis,
			treatment
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + visitColumns

	row := r.db.QueryRowContext(ctx, query,
		visit.PatientID,
		visit.VisitDate,
		visit.DoctorName,
		visit.Reason,
		visit.Diagnosis,
		visit.Treatment,
	)

	inserted, err := scanVisit(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert visit: %w", err)
	}
	return inserted, nil
}

// ListByPatient 获取该患者全部就诊记录（就诊日期倒序，最新在前）
func (r *PostgresVisitsRepository) ListByPatient(ctx context.Context, patientID int64) ([]*domain.Visit, error) {
	query := `SELECT` + visitColumns + `
		FROM visits
		WHERE patient_id = $1
		ORDER BY visit_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []*domain.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, v)
	}

	return visits, rows.Err()
}
