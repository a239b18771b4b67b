package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidFileType 头像MIME类型不在白名单内
var ErrInvalidFileType = errors.New("invalid file type")

// allowedPhotoTypes 头像允许的MIME类型；临床文档不限类型
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
	"image/webp": true,
}

// IsAllowedPhotoType 供调用方在任何落库动作之前预检MIME类型
func IsAllowedPhotoType(contentType string) bool {
	return allowedPhotoTypes[strings.ToLower(contentType)]
}

// UploadService 文件上传落盘
// 先写文件再写数据库行（write-then-record）：插入失败时文件会残留，
// 调用方负责把孤儿路径记进日志
type UploadService struct {
	photoDir    string
	documentDir string
	logger      *zap.Logger
}

// NewUploadService 创建上传服务，photos/ 和 documents/ 两个目录不存在时创建
func NewUploadService(baseDir string, logger *zap.Logger) (*UploadService, error) {
	s := &UploadService{
		photoDir:    filepath.Join(baseDir, "photos"),
		documentDir: filepath.Join(baseDir, "documents"),
		logger:      logger,
	}
	for _, dir := range []string{s.photoDir, s.documentDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
		}
	}
	return s, nil
}

// PhotoDir 头像目录（用于静态文件服务）
func (s *UploadService) PhotoDir() string { return s.photoDir }

// DocumentDir 文档目录（用于静态文件服务）
func (s *UploadService) DocumentDir() string { return s.documentDir }

// SaveProfilePhoto 校验MIME类型并落盘头像，返回URL相对路径
// 类型不合法时不产生任何写入
func (s *UploadService) SaveProfilePhoto(patientID int64, contentType, originalName string, file io.Reader) (string, error) {
	if !allowedPhotoTypes[strings.ToLower(contentType)] {
		return "", ErrInvalidFileType
	}

	name := fmt.Sprintf("patient_%d_%d%s", patientID, time.Now().UnixMilli(), fileExt(originalName))
	if err := s.writeFile(filepath.Join(s.photoDir, name), file); err != nil {
		return "", err
	}
	return "/uploads/photos/" + name, nil
}

// SaveDocument 落盘临床文档（不限类型），返回URL相对路径
func (s *UploadService) SaveDocument(originalName string, file io.Reader) (string, error) {
	name := fmt.Sprintf("%d%s", time.Now().UnixMilli(), fileExt(originalName))
	if err := s.writeFile(filepath.Join(s.documentDir, name), file); err != nil {
		return "", err
	}
	return "/uploads/documents/" + name, nil
}

func (s *UploadService) writeFile(path string, file io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		// 写到一半的文件没有意义，直接清掉
		os.Remove(path)
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", path, err)
	}

	s.logger.Debug("Stored uploaded file", zap.String("path", path))
	return nil
}

func fileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
