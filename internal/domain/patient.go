package domain

import "time"

// Patient 患者领域模型（对应 patients 表）
// Identity and demographics; all other tables reference patients.id.
type Patient struct {
	// 主键
	ID int64 `json:"id" db:"id"` // BIGSERIAL, PRIMARY KEY

	// Demographics（按客户端提交原样存储，不做格式校验）
	Name        string `json:"name" db:"name"`                   // VARCHAR(255), NOT NULL
	DateOfBirth string `json:"date_of_birth" db:"date_of_birth"` // TEXT, nullable（原样透传）
	Gender      string `json:"gender" db:"gender"`               // VARCHAR(20), nullable
	NationalID  string `json:"national_id" db:"national_id"`     // VARCHAR(50), nullable
	Nationality string `json:"nationality" db:"nationality"`     // VARCHAR(100), nullable
	Language    string `json:"language" db:"language"`           // VARCHAR(50), nullable
	BloodType   string `json:"blood_type" db:"blood_type"`       // VARCHAR(10), nullable

	// 头像路径（可在创建后通过单独接口更新）
	ProfilePhotoPath string `json:"profile_photo_path" db:"profile_photo_path"` // TEXT, nullable

	// 创建时间（服务端设置）
	CreatedAt time.Time `json:"created_at" db:"created_at"` // TIMESTAMPTZ, NOT NULL
}
