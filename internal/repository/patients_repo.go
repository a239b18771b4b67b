package repository

import (
	"context"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// PatientsRepository 患者Repository接口
// 使用强类型领域模型，不使用map[string]any
// 设计原则：从底层（数据库）向上设计，Repository层只负责数据访问
type PatientsRepository interface {
	// Create inserts a patient and returns the stored row (server-assigned
	// id and created_at included).
	Create(ctx context.Context, patient *domain.Patient) (*domain.Patient, error)

	// List returns all patients ordered by id.
	List(ctx context.Context) ([]*domain.Patient, error)

	// GetByID returns (nil, nil) when no such patient exists; callers decide
	// whether that means "{}" or 404.
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)

	// UpdatePhotoPath sets profile_photo_path. Updating a missing patient
	// affects zero rows and is not an error.
	UpdatePhotoPath(ctx context.Context, id int64, path string) error
}
