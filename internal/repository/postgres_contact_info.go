package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// PostgresContactInfoRepository 联系方式Repository实现
type PostgresContactInfoRepository struct {
	db *sql.DB
}

// NewPostgresContactInfoRepository 创建联系方式Repository
func NewPostgresContactInfoRepository(db *sql.DB) *PostgresContactInfoRepository {
	return &PostgresContactInfoRepository{db: db}
}

var _ ContactInfoRepository = (*PostgresContactInfoRepository)(nil)

const contactInfoColumns = `
	id,
	patient_id,
	COALESCE(phone, '') AS phone,
	COALESCE(email, '') AS email,
	COALESCE(address, '') AS address,
	COALESCE(emergency_contact_name, '') AS emergency_contact_name,
	COALESCE(emergency_contact_phone, '') AS emergency_contact_phone,
	updated_at`

func scanContactInfo(row interface{ Scan(dest ...any) error }) (*domain.ContactInfo, error) {
	var c domain.ContactInfo
	err := row.Scan(
		&c.ID,
		&c.PatientID,
		&c.Phone,
		&c.Email,
		&c.Address,
		&c.EmergencyContactName,
		&c.EmergencyContactPhone,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert 追加一条联系方式记录（历史保留，读取只取最新）
func (r *PostgresContactInfoRepository) Insert(ctx context.Context, info *domain.ContactInfo) (*domain.ContactInfo, error) {
	query := `
		INSERT INTO contact_info (
			patient_id,
			phone,
			email,
			address,
			emergency_contact_name,
			emergency_contact_phone,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING` + contactInfoColumns

	row := r.db.QueryRowContext(ctx, query,
		info.PatientID,
		info.Phone,
		info.Email,
		info.Address,
		info.EmergencyContactName,
		info.EmergencyContactPhone,
	)

	inserted, err := scanContactInfo(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert contact info: %w", err)
	}
	return inserted, nil
}

// GetLatest 获取该患者最新一条联系方式；无记录时返回 (nil, nil)
func (r *PostgresContactInfoRepository) GetLatest(ctx context.Context, patientID int64) (*domain.ContactInfo, error) {
	query := `SELECT` + contactInfoColumns + `
		FROM contact_info
		WHERE patient_id = $1
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`

	c, err := scanContactInfo(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query contact info: %w", err)
	}
	return c, nil
}
