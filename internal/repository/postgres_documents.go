package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

// PostgresDocumentsRepository 临床文档Repository实现
type PostgresDocumentsRepository struct {
	db *sql.DB
}

// NewPostgresDocumentsRepository 创建临床文档Repository
func NewPostgresDocumentsRepository(db *sql.DB) *PostgresDocumentsRepository {
	return &PostgresDocumentsRepository{db: db}
}

var _ DocumentsRepository = (*PostgresDocumentsRepository)(nil)

const documentColumns = `
	id,
	patient_id,
	document_name,
	upload_date,
	COALESCE(file_type, '') AS file_type,
	file_path`

func scanDocument(row interface{ Scan(dest ...any) error }) (*domain.ClinicalDocument, error) {
	var d domain.ClinicalDocument
	err := row.Scan(
		&d.ID,
		&d.PatientID,
		&d.DocumentName,
		&d.UploadDate,
		&d.FileType,
		&d.FilePath,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Insert 追加一条文档元数据记录（文件已先写入磁盘）
func (r *PostgresDocumentsRepository) Insert(ctx context.Context, doc *domain.ClinicalDocument) (*domain.ClinicalDocument, error) {
	query := `
		INSERT INTO clinical_documents (
			patient_id,
			document_name,
			upload_date,
			file_type,
			file_path
		) VALUES ($1, $2, NOW(), $3, $4)
		RETURNING` + documentColumns

	row := r.db.QueryRowContext(ctx, query,
		doc.PatientID,
		doc.DocumentName,
		doc.FileType,
		doc.FilePath,
	)

	inserted, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert clinical document: %w", err)
	}
	return inserted, nil
}

// ListByPatient 获取该患者全部文档（上传时间倒序，最新在前）
func (r *PostgresDocumentsRepository) ListByPatient(ctx context.Context, patientID int64) ([]*domain.ClinicalDocument, error) {
	query := `SELECT` + documentColumns + `
		FROM clinical_documents
		WHERE patient_id = $1
		ORDER BY upload_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clinical documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.ClinicalDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clinical document: %w", err)
		}
		docs = append(docs, d)
	}

	return docs, rows.Err()
}
