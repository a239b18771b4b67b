package domain

import "time"

// Vitals 生命体征快照领域模型（对应 vitals 表）
// append-only；单资源接口消费最新一条，聚合接口消费完整历史
type Vitals struct {
	// 主键
	ID int64 `json:"id" db:"id"` // BIGSERIAL, PRIMARY KEY

	// 患者
	PatientID int64 `json:"patient_id" db:"patient_id"` // BIGINT, NOT NULL, REFERENCES patients(id)

	// 测量值（数值原样透传，不做范围校验）
	HeartRate              *int     `json:"heart_rate" db:"heart_rate"`                               // INTEGER, nullable
	BloodPressureSystolic  *int     `json:"blood_pressure_systolic" db:"blood_pressure_systolic"`     // INTEGER, nullable
	BloodPressureDiastolic *int     `json:"blood_pressure_diastolic" db:"blood_pressure_diastolic"`   // INTEGER, nullable
	Temperature            *float64 `json:"temperature" db:"temperature"`                             // DECIMAL(4,1), nullable
	RespiratoryRate        *int     `json:"respiratory_rate" db:"respiratory_rate"`                   // INTEGER, nullable
	OxygenSaturation       *float64 `json:"oxygen_saturation" db:"oxygen_saturation"`                 // DECIMAL(4,1), nullable

	// 记录时间（服务端设置）
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"` // TIMESTAMPTZ, NOT NULL
}
