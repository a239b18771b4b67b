package service

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestUploadService(t *testing.T) (*UploadService, string) {
	t.Helper()
	baseDir := t.TempDir()
	svc, err := NewUploadService(baseDir, zap.NewNop())
	require.NoError(t, err)
	return svc, baseDir
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestNewUploadService_CreatesDirectories(t *testing.T) {
	svc, baseDir := newTestUploadService(t)

	assert.Equal(t, filepath.Join(baseDir, "photos"), svc.PhotoDir())
	assert.Equal(t, filepath.Join(baseDir, "documents"), svc.DocumentDir())
	assert.DirExists(t, svc.PhotoDir())
	assert.DirExists(t, svc.DocumentDir())
}

func TestSaveProfilePhoto_RejectsInvalidType(t *testing.T) {
	svc, _ := newTestUploadService(t)

	_, err := svc.SaveProfilePhoto(7, "application/pdf", "report.pdf", strings.NewReader("%PDF-1.4"))
	require.ErrorIs(t, err, ErrInvalidFileType)

	// 校验失败时磁盘上不能留下文件
	assert.Empty(t, dirEntries(t, svc.PhotoDir()))
}

func TestSaveProfilePhoto_AcceptedTypes(t *testing.T) {
	for _, contentType := range []string{"image/jpeg", "image/png", "image/jpg", "image/webp", "IMAGE/PNG"} {
		svc, _ := newTestUploadService(t)

		path, err := svc.SaveProfilePhoto(3, contentType, "selfie.png", strings.NewReader("fake image bytes"))
		require.NoError(t, err, contentType)
		assert.True(t, strings.HasPrefix(path, "/uploads/photos/"), "unexpected path %q", path)
	}
}

func TestSaveProfilePhoto_FileNameScheme(t *testing.T) {
	svc, _ := newTestUploadService(t)

	path, err := svc.SaveProfilePhoto(3, "image/png", "selfie.PNG", strings.NewReader("fake image bytes"))
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.Regexp(t, regexp.MustCompile(`^patient_3_\d+\.png$`), name)

	data, err := os.ReadFile(filepath.Join(svc.PhotoDir(), name))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestSaveDocument_FileNameScheme(t *testing.T) {
	svc, _ := newTestUploadService(t)

	path, err := svc.SaveDocument("Lab Results.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "/uploads/documents/"), "unexpected path %q", path)

	name := filepath.Base(path)
	assert.Regexp(t, regexp.MustCompile(`^\d+\.pdf$`), name)
}

func TestSaveDocument_NoExtension(t *testing.T) {
	svc, _ := newTestUploadService(t)

	path, err := svc.SaveDocument("notes", strings.NewReader("plain text"))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d+$`), filepath.Base(path))
}
