package domain

import "time"

// MedicalHistory 病史领域模型（对应 medical_history 表）
// append-only 日志，单资源接口只消费最新一条
type MedicalHistory struct {
	// 主键
	ID int64 `json:"id" db:"id"` // BIGSERIAL, PRIMARY KEY

	// 患者
	PatientID int64 `json:"patient_id" db:"patient_id"` // BIGINT, NOT NULL, REFERENCES patients(id)

	// 自由文本字段（不做结构化校验）
	Allergies   string `json:"allergies" db:"allergies"`     // TEXT, nullable
	Medications string `json:"medications" db:"medications"` // TEXT, nullable
	Conditions  string `json:"conditions" db:"conditions"`   // TEXT, nullable

	// 更新时间（服务端设置）
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
