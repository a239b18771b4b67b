package domain

import "time"

// ClinicalDocument 临床文档元数据领域模型（对应 clinical_documents 表）
// 文件本体存磁盘，这里只存引用路径；按上传时间倒序作为完整列表消费
type ClinicalDocument struct {
	// 主键
	ID int64 `json:"id" db:"id"` // BIGSERIAL, PRIMARY KEY

	// 患者
	PatientID int64 `json:"patient_id" db:"patient_id"` // BIGINT, NOT NULL, REFERENCES patients(id)

	// 文档元数据
	DocumentName string    `json:"document_name" db:"document_name"` // VARCHAR(255), NOT NULL
	UploadDate   time.Time `json:"upload_date" db:"upload_date"`     // TIMESTAMPTZ, NOT NULL（服务端设置）
	FileType     string    `json:"file_type" db:"file_type"`         // VARCHAR(100), nullable（声明的 MIME 类型）
	FilePath     string    `json:"file_path" db:"file_path"`         // TEXT, NOT NULL（URL 相对路径）
}
