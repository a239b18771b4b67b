package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func patientRows(t *testing.T) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "date_of_birth", "gender", "national_id",
		"nationality", "language", "blood_type", "profile_photo_path", "created_at",
	})
}

func TestPatientsCreate_ReturnsStoredRow(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewPostgresPatientsRepository(db)

	createdAt := time.Now()
	rows := patientRows(t).
		AddRow(int64(7), "Omar Ali", "1990-04-12", "male", "29004121234567",
			"Egyptian", "Arabic", "O+", "", createdAt)

	mock.ExpectQuery(`INSERT INTO patients`).
		WithArgs("Omar Ali", "1990-04-12", "male", "29004121234567", "Egyptian", "Arabic", "O+", "").
		WillReturnRows(rows)

	created, err := repo.Create(context.Background(), &domain.Patient{
		Name:        "Omar Ali",
		DateOfBirth: "1990-04-12",
		Gender:      "male",
		NationalID:  "29004121234567",
		Nationality: "Egyptian",
		Language:    "Arabic",
		BloodType:   "O+",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "Omar Ali", created.Name)
	assert.Equal(t, "O+", created.BloodType)
	assert.Equal(t, createdAt, created.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientsGetByID_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewPostgresPatientsRepository(db)

	mock.ExpectQuery(`FROM patients`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	p, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, p)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientsList_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewPostgresPatientsRepository(db)

	mock.ExpectQuery(`FROM patients`).WillReturnRows(patientRows(t))

	patients, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, patients, 0)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientsUpdatePhotoPath(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	repo := NewPostgresPatientsRepository(db)

	mock.ExpectExec(`UPDATE patients SET profile_photo_path`).
		WithArgs("/uploads/photos/patient_3_1700000000000.png", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePhotoPath(context.Background(), 3, "/uploads/photos/patient_3_1700000000000.png")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
