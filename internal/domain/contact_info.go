package domain

import "time"

// ContactInfo 患者联系方式领域模型（对应 contact_info 表）
// 历史上允许多条（append-only），读取时只取最新一条
type ContactInfo struct {
	// 主键
	ID int64 `json:"id" db:"id"` // BIGSERIAL, PRIMARY KEY

	// 患者
	PatientID int64 `json:"patient_id" db:"patient_id"` // BIGINT, NOT NULL, REFERENCES patients(id)

	// 联系方式
	Phone   string `json:"phone" db:"phone"`     // VARCHAR(25), nullable
	Email   string `json:"email" db:"email"`     // VARCHAR(255), nullable
	Address string `json:"address" db:"address"` // TEXT, nullable

	// 紧急联系人
	EmergencyContactName  string `json:"emergency_contact_name" db:"emergency_contact_name"`   // VARCHAR(255), nullable
	EmergencyContactPhone string `json:"emergency_contact_phone" db:"emergency_contact_phone"` // VARCHAR(25), nullable

	// 更新时间（服务端设置）
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
