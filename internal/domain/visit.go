package domain

// Visit 就诊记录领域模型（对应 visits 表）
// append-only，按就诊日期倒序作为完整历史消费
type Visit struct {
	// 主键
	ID int64 `json:"id" db:"id"` // BIGSERIAL, PRIMARY KEY

	// 患者
	PatientID int64 `json:"patient_id" db:"patient_id"` // BIGINT, NOT NULL, REFERENCES patients(id)

	// 就诊信息（日期原样透传，客户端负责格式）
	VisitDate  string `json:"visit_date" db:"visit_date"`   // TEXT, NOT NULL（ISO 日期字符串）
	DoctorName string `json:"doctor_name" db:"doctor_name"` // VARCHAR(255), nullable
	Reason     string `json:"reason" db:"reason"`           // TEXT, nullable
	Diagnosis  string `json:"diagnosis" db:"diagnosis"`     // TEXT, nullable
	Treatment  string `json:"treatment" db:"treatment"`     // TEXT, nullable
}
