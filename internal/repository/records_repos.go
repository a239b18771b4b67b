package repository

import (
	"context"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// 子记录 Repository 接口：六张表中除 patients 外的五张。
// GetLatest 在无记录时返回 (nil, nil)，与 "no sub-record yet" 语义对应；
// List* 按各自时间戳倒序返回完整历史，时间戳相同时按 id 倒序决出
// （显式 tie-break，避免依赖存储层默认顺序）。

// ContactInfoRepository 联系方式Repository接口
type ContactInfoRepository interface {
	Insert(ctx context.Context, info *domain.ContactInfo) (*domain.ContactInfo, error)
	GetLatest(ctx context.Context, patientID int64) (*domain.ContactInfo, error)
}

// MedicalHistoryRepository 病史Repository接口
type MedicalHistoryRepository interface {
	Insert(ctx context.Context, history *domain.MedicalHistory) (*domain.MedicalHistory, error)
	GetLatest(ctx context.Context, patientID int64) (*domain.MedicalHistory, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*domain.MedicalHistory, error)
}

// VisitsRepository 就诊记录Repository接口
type VisitsRepository interface {
	Insert(ctx context.Context, visit *domain.Visit) (*domain.Visit, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*domain.Visit, error)
}

// VitalsRepository 生命体征Repository接口
type VitalsRepository interface {
	Insert(ctx context.Context, vitals *domain.Vitals) (*domain.Vitals, error)
	// GetLatest 与 ListByPatient 的第一个元素必须是同一行（相同排序规则）
	GetLatest(ctx context.Context, patientID int64) (*domain.Vitals, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*domain.Vitals, error)
}

// DocumentsRepository 临床文档Repository接口
type DocumentsRepository interface {
	Insert(ctx context.Context, doc *domain.ClinicalDocument) (*domain.ClinicalDocument, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*domain.ClinicalDocument, error)
}
