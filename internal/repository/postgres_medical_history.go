package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// PostgresMedicalHistoryRepository 病史Repository实现
type PostgresMedicalHistoryRepository struct {
	db *sql.DB
}

// NewPostgresMedicalHistoryRepository 创建病史Repository
func NewPostgresMedicalHistoryRepository(db *sql.DB) *PostgresMedicalHistoryRepository {
	return &PostgresMedicalHistoryRepository{db: db}
}

var _ MedicalHistoryRepository = (*PostgresMedicalHistoryRepository)(nil)

const medicalHistoryColumns = `
	id,
	patient_id,
	COALESCE(allergies, '') AS allergies,
	COALESCE(medications, '') AS medications,
	COALESCE(conditions, '') AS conditions,
	updated_at`

func scanMedicalHistory(row interface{ Scan(dest ...any) error }) (*domain.MedicalHistory, error) {
	var h domain.MedicalHistory
	err := row.Scan(
		&h.ID,
		&h.PatientID,
		&h.Allergies,
		&h.Medications,
		&h.Conditions,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Insert 追加一条病史记录
func (r *PostgresMedicalHistoryRepository) Insert(ctx context.Context, history *domain.MedicalHistory) (*domain.MedicalHistory, error) {
	query := `
		INSERT INTO medical_history (
			patient_id,
			allergies,
			medications,
			conditions,
			updated_at
		) VALUES ($1, $2, $3, $4, NOW())
		RETURNING` + medicalHistoryColumns

	row := r.db.QueryRowContext(ctx, query,
		history.PatientID,
		history.Allergies,
		history.Medications,
		history.Conditions,
	)

	inserted, err := scanMedicalHistory(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert medical history: %w", err)
	}
	return inserted, nil
}

// GetLatest 获取该患者最新一条病史；无记录时返回 (nil, nil)
func (r *PostgresMedicalHistoryRepository) GetLatest(ctx context.Context, patientID int64) (*domain.MedicalHistory, error) {
	query := `SELECT` + medicalHistoryColumns + `
		FROM medical_history
		WHERE patient_id = $1
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`

	h, err := scanMedicalHistory(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query medical history: %w", err)
	}
	return h, nil
}

// ListByPatient 获取该患者全部病史记录（最新在前）
func (r *PostgresMedicalHistoryRepository) ListByPatient(ctx context.Context, patientID int64) ([]*domain.MedicalHistory, error) {
	query := `SELECT` + medicalHistoryColumns + `
		FROM medical_history
		WHERE patient_id = $1
		ORDER BY updated_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical history: %w", err)
	}
	defer rows.Close()

	var histories []*domain.MedicalHistory
	for rows.Next() {
		h, err := scanMedicalHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medical history: %w", err)
		}
		histories = append(histories, h)
	}

	return histories, rows.Err()
}
