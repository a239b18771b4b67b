package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// PostgresVitalsRepository 生命体征Repository实现
type PostgresVitalsRepository struct {
	db *sql.DB
}

// NewPostgresVitalsRepository 创建生命体征Repository
func NewPostgresVitalsRepository(db *sql.DB) *PostgresVitalsRepository {
	return &PostgresVitalsRepository{db: db}
}

var _ VitalsRepository = (*PostgresVitalsRepository)(nil)

const vitalsColumns = `
	id,
	patient_id,
	heart_rate,
	blood_pressure_systolic,
	blood_pressure_diastolic,
	temperature,
	respiratory_rate,
	oxygen_saturation,
	recorded_at`

func scanVitals(row interface{ Scan(dest ...any) error }) (*domain.Vitals, error) {
	var v domain.Vitals
	var heartRate, systolic, diastolic, respiratoryRate sql.NullInt64
	var temperature, oxygenSaturation sql.NullFloat64

	err := row.Scan(
		&v.ID,
		&v.PatientID,
		&heartRate,
		&systolic,
		&diastolic,
		&temperature,
		&respiratoryRate,
		&oxygenSaturation,
		&v.RecordedAt,
	)
	if err != nil {
		return nil, err
	}

	if heartRate.Valid {
		n := int(heartRate.Int64)
		v.HeartRate = &n
	}
	if systolic.Valid {
		n := int(systolic.Int64)
		v.BloodPressureSystolic = &n
	}
	if diastolic.Valid {
		n := int(diastolic.Int64)
		v.BloodPressureDiastolic = &n
	}
	if temperature.Valid {
		v.Temperature = &temperature.Float64
	}
	if respiratoryRate.Valid {
		n := int(respiratoryRate.Int64)
		v.RespiratoryRate = &n
	}
	if oxygenSaturation.Valid {
		v.OxygenSaturation = &oxygenSaturation.Float64
	}

	return &v, nil
}

// Insert 追加一条体征快照（recorded_at 由服务端设置）
func (r *PostgresVitalsRepository) Insert(ctx context.Context, vitals *domain.Vitals) (*domain.Vitals, error) {
	query := `
		INSERT INTO vitals (
			patient_id,
			heart_rate,
			blood_pressure_systolic,
			blood_pressure_diastolic,
			temperature,
			respiratory_rate,
			oxygen_saturation,
			recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING` + vitalsColumns

	row := r.db.QueryRowContext(ctx, query,
		vitals.PatientID,
		vitals.HeartRate,
		vitals.BloodPressureSystolic,
		vitals.BloodPressureDiastolic,
		vitals.Temperature,
		vitals.RespiratoryRate,
		vitals.OxygenSaturation,
	)

	inserted, err := scanVitals(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vitals: %w", err)
	}
	return inserted, nil
}

// GetLatest 获取该患者最新一条体征；无记录时返回 (nil, nil)
// 排序与 ListByPatient 完全一致，保证两条路径取到同一行
func (r *PostgresVitalsRepository) GetLatest(ctx context.Context, patientID int64) (*domain.Vitals, error) {
	query := `SELECT` + vitalsColumns + `
		FROM vitals
		WHERE patient_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	v, err := scanVitals(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query vitals: %w", err)
	}
	return v, nil
}

// ListByPatient 获取该患者全部体征快照（记录时间倒序，最新在前）
func (r *PostgresVitalsRepository) ListByPatient(ctx context.Context, patientID int64) ([]*domain.Vitals, error) {
	query := `SELECT` + vitalsColumns + `
		FROM vitals
		WHERE patient_id = $1
		ORDER BY recorded_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vitals: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.Vitals
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vitals: %w", err)
		}
		snapshots = append(snapshots, v)
	}

	return snapshots, rows.Err()
}
