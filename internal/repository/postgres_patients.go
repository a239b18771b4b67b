package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// PostgresPatientsRepository 患者Repository实现
type PostgresPatientsRepository struct {
	db *sql.DB
}

// NewPostgresPatientsRepository 创建患者Repository
func NewPostgresPatientsRepository(db *sql.DB) *PostgresPatientsRepository {
	return &PostgresPatientsRepository{db: db}
}

// 确保实现了接口
var _ PatientsRepository = (*PostgresPatientsRepository)(nil)

const patientColumns = `
	id,
	name,
	COALESCE(date_of_birth, '') AS date_of_birth,
	COALESCE(gender, '') AS gender,
	COALESCE(national_id, '') AS national_id,
	COALESCE(nationality, '') AS nationality,
	COALESCE(language, '') AS language,
	COALESCE(blood_type, '') AS blood_type,
	COALESCE(profile_photo_path, '') AS profile_photo_path,
	created_at`

func scanPatient(row interface{ Scan(dest ...any) error }) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.DateOfBirth,
		&p.Gender,
		&p.NationalID,
		&p.Nationality,
		&p.Language,
		&p.BloodType,
		&p.ProfilePhotoPath,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create 创建患者，返回数据库实际存储的行
func (r *PostgresPatientsRepository) Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error) {
	query := `
		INSERT INTO patients (
			name,
			date_of_birth,
			gender,
			national_id,
			nationality,
			language,
			blood_type,
			profile_photo_path,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NOW())
		RETURNING` + patientColumns

	row := r.db.QueryRowContext(ctx, query,
		patient.Name,
		patient.DateOfBirth,
		patient.Gender,
		patient.NationalID,
		patient.Nationality,
		patient.Language,
		patient.BloodType,
		patient.ProfilePhotoPath,
	)

	created, err := scanPatient(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert patient: %w", err)
	}
	return created, nil
}

// List 获取全部患者
func (r *PostgresPatientsRepository) List(ctx context.Context) ([]*domain.Patient, error) {
	query := `SELECT` + patientColumns + `
		FROM patients
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query patients: %w", err)
	}
	defer rows.Close()

	var patients []*domain.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, p)
	}

	return patients, rows.Err()
}

// GetByID 按主键获取患者；不存在时返回 (nil, nil)
func (r *PostgresPatientsRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	query := `SELECT` + patientColumns + `
		FROM patients
		WHERE id = $1`

	p, err := scanPatient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query patient: %w", err)
	}
	return p, nil
}

// UpdatePhotoPath 更新头像路径
func (r *PostgresPatientsRepository) UpdatePhotoPath(ctx context.Context, id int64, path string) error {
	query := `UPDATE patients SET profile_photo_path = $1 WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, path, id); err != nil {
		return fmt.Errorf("failed to update profile photo path: %w", err)
	}
	return nil
}
