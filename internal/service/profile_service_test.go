package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
	"github.com/Omarelnoamy/health-connect-api/internal/store"
)

// ---- counting fakes（记录调用次数，验证 404 时不发子查询） ----

type fakePatientsRepo struct {
	patient  *domain.Patient
	err      error
	getCalls int
}

func (f *fakePatientsRepo) Create(ctx context.Context, p *domain.Patient) (*domain.Patient, error) {
	return p, nil
}

func (f *fakePatientsRepo) List(ctx context.Context) ([]*domain.Patient, error) {
	return nil, nil
}

func (f *fakePatientsRepo) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	f.getCalls++
	return f.patient, f.err
}

func (f *fakePatientsRepo) UpdatePhotoPath(ctx context.Context, id int64, path string) error {
	return nil
}

type fakeContactsRepo struct {
	latest *domain.ContactInfo
	err    error
	calls  int
}

func (f *fakeContactsRepo) Insert(ctx context.Context, c *domain.ContactInfo) (*domain.ContactInfo, error) {
	return c, nil
}

func (f *fakeContactsRepo) GetLatest(ctx context.Context, patientID int64) (*domain.ContactInfo, error) {
	f.calls++
	return f.latest, f.err
}

type fakeHistoryRepo struct {
	list  []*domain.MedicalHistory
	err   error
	calls int
}

func (f *fakeHistoryRepo) Insert(ctx context.Context, h *domain.MedicalHistory) (*domain.MedicalHistory, error) {
	return h, nil
}

func (f *fakeHistoryRepo) GetLatest(ctx context.Context, patientID int64) (*domain.MedicalHistory, error) {
	if len(f.list) == 0 {
		return nil, f.err
	}
	return f.list[0], f.err
}

func (f *fakeHistoryRepo) ListByPatient(ctx context.Context, patientID int64) ([]*domain.MedicalHistory, error) {
	f.calls++
	return f.list, f.err
}

type fakeVisitsRepo struct {
	list  []*domain.Visit
	err   error
	calls int
}

func (f *fakeVisitsRepo) Insert(ctx context.Context, v *domain.Visit) (*domain.Visit, error) {
	return v, nil
}

func (f *fakeVisitsRepo) ListByPatient(ctx context.Context, patientID int64) ([]*domain.Visit, error) {
	f.calls++
	return f.list, f.err
}

type fakeVitalsRepo struct {
	list  []*domain.Vitals
	err   error
	calls int
}

func (f *fakeVitalsRepo) Insert(ctx context.Context, v *domain.Vitals) (*domain.Vitals, error) {
	return v, nil
}

func (f *fakeVitalsRepo) GetLatest(ctx context.Context, patientID int64) (*domain.Vitals, error) {
	if len(f.list) == 0 {
		return nil, f.err
	}
	return f.list[0], f.err
}

func (f *fakeVitalsRepo) ListByPatient(ctx context.Context, patientID int64) ([]*domain.Vitals, error) {
	f.calls++
	return f.list, f.err
}

type fakeDocumentsRepo struct {
	list  []*domain.ClinicalDocument
	err   error
	calls int
}

func (f *fakeDocumentsRepo) Insert(ctx context.Context, d *domain.ClinicalDocument) (*domain.ClinicalDocument, error) {
	return d, nil
}

func (f *fakeDocumentsRepo) ListByPatient(ctx context.Context, patientID int64) ([]*domain.ClinicalDocument, error) {
	f.calls++
	return f.list, f.err
}

// fakeKV 仅用于单元测试（内存 KV，忽略 TTL 过期）
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type profileFixtures struct {
	patients  *fakePatientsRepo
	contacts  *fakeContactsRepo
	history   *fakeHistoryRepo
	visits    *fakeVisitsRepo
	vitals    *fakeVitalsRepo
	documents *fakeDocumentsRepo
}

func newProfileService(f *profileFixtures, kv store.KV) *ProfileService {
	return NewProfileService(
		f.patients, f.contacts, f.history, f.visits, f.vitals, f.documents,
		kv, 10*time.Second, zap.NewNop(),
	)
}

func existingPatient() *domain.Patient {
	return &domain.Patient{ID: 1, Name: "Omar Ali", CreatedAt: time.Now()}
}

func TestGetFullProfile_PatientNotFound_NoSubQueries(t *testing.T) {
	f := &profileFixtures{
		patients:  &fakePatientsRepo{patient: nil},
		contacts:  &fakeContactsRepo{},
		history:   &fakeHistoryRepo{},
		visits:    &fakeVisitsRepo{},
		vitals:    &fakeVitalsRepo{},
		documents: &fakeDocumentsRepo{},
	}
	svc := newProfileService(f, nil)

	_, err := svc.GetFullProfile(context.Background(), 42)
	require.ErrorIs(t, err, ErrPatientNotFound)

	assert.Equal(t, 1, f.patients.getCalls)
	assert.Equal(t, 0, f.contacts.calls)
	assert.Equal(t, 0, f.history.calls)
	assert.Equal(t, 0, f.visits.calls)
	assert.Equal(t, 0, f.vitals.calls)
	assert.Equal(t, 0, f.documents.calls)
}

func TestGetFullProfile_MergesAllRecords(t *testing.T) {
	hr80, hr75 := 80, 75
	now := time.Now()
	f := &profileFixtures{
		patients: &fakePatientsRepo{patient: existingPatient()},
		contacts: &fakeContactsRepo{latest: &domain.ContactInfo{ID: 3, PatientID: 1, Phone: "+201001234567"}},
		history:  &fakeHistoryRepo{list: []*domain.MedicalHistory{{ID: 2, PatientID: 1, Allergies: "penicillin"}}},
		visits:   &fakeVisitsRepo{list: []*domain.Visit{{ID: 4, PatientID: 1, VisitDate: "2024-03-02"}}},
		vitals: &fakeVitalsRepo{list: []*domain.Vitals{
			{ID: 6, PatientID: 1, HeartRate: &hr80, RecordedAt: now},
			{ID: 5, PatientID: 1, HeartRate: &hr75, RecordedAt: now.Add(-time.Hour)},
		}},
		documents: &fakeDocumentsRepo{list: []*domain.ClinicalDocument{{ID: 7, PatientID: 1, DocumentName: "labs.pdf"}}},
	}
	svc := newProfileService(f, nil)

	profile, err := svc.GetFullProfile(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), profile.Patient.ID)
	require.NotNil(t, profile.ContactInfo)
	assert.Equal(t, "+201001234567", profile.ContactInfo.Phone)
	require.Len(t, profile.Visits, 1)
	require.Len(t, profile.MedicalHistory, 1)
	require.Len(t, profile.ClinicalDocuments, 1)

	// vitals 取历史头部，与单资源接口的 LIMIT 1 查询是同一行
	require.NotNil(t, profile.Vitals)
	assert.Equal(t, int64(6), profile.Vitals.ID)
	latest, err := f.vitals.GetLatest(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, profile.Vitals.ID)
}

func TestGetFullProfile_EmptySubRecords_NullsAndEmptyArrays(t *testing.T) {
	f := &profileFixtures{
		patients:  &fakePatientsRepo{patient: existingPatient()},
		contacts:  &fakeContactsRepo{},
		history:   &fakeHistoryRepo{},
		visits:    &fakeVisitsRepo{},
		vitals:    &fakeVitalsRepo{},
		documents: &fakeDocumentsRepo{},
	}
	svc := newProfileService(f, nil)

	profile, err := svc.GetFullProfile(context.Background(), 1)
	require.NoError(t, err)

	data, err := json.Marshal(profile)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"contact_info":null`)
	assert.Contains(t, string(data), `"vitals":null`)
	assert.Contains(t, string(data), `"clinical_documents":[]`)
	assert.Contains(t, string(data), `"medical_history":[]`)
	assert.Contains(t, string(data), `"visits":[]`)
}

func TestGetFullProfile_SubQueryFailureFailsWhole(t *testing.T) {
	f := &profileFixtures{
		patients:  &fakePatientsRepo{patient: existingPatient()},
		contacts:  &fakeContactsRepo{},
		history:   &fakeHistoryRepo{},
		visits:    &fakeVisitsRepo{err: errors.New("connection reset")},
		vitals:    &fakeVitalsRepo{},
		documents: &fakeDocumentsRepo{},
	}
	svc := newProfileService(f, nil)

	_, err := svc.GetFullProfile(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "visits")
}

func TestGetFullProfile_CacheHitSkipsRepositories(t *testing.T) {
	f := &profileFixtures{
		patients:  &fakePatientsRepo{patient: existingPatient()},
		contacts:  &fakeContactsRepo{},
		history:   &fakeHistoryRepo{},
		visits:    &fakeVisitsRepo{},
		vitals:    &fakeVitalsRepo{},
		documents: &fakeDocumentsRepo{},
	}
	kv := newFakeKV()
	svc := newProfileService(f, kv)

	ctx := context.Background()

	_, err := svc.GetFullProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.patients.getCalls)
	assert.Equal(t, 1, f.visits.calls)

	// 第二次命中缓存，不再查库
	_, err = svc.GetFullProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.patients.getCalls)
	assert.Equal(t, 1, f.visits.calls)

	// 失效后重新走库
	svc.InvalidateProfile(ctx, 1)
	_, err = svc.GetFullProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, f.patients.getCalls)
	assert.Equal(t, 2, f.visits.calls)
}

func TestGetFullProfile_NotFoundIsNotCached(t *testing.T) {
	f := &profileFixtures{
		patients:  &fakePatientsRepo{patient: nil},
		contacts:  &fakeContactsRepo{},
		history:   &fakeHistoryRepo{},
		visits:    &fakeVisitsRepo{},
		vitals:    &fakeVitalsRepo{},
		documents: &fakeDocumentsRepo{},
	}
	kv := newFakeKV()
	svc := newProfileService(f, kv)

	ctx := context.Background()

	_, err := svc.GetFullProfile(ctx, 42)
	require.ErrorIs(t, err, ErrPatientNotFound)

	// 患者随后被创建，缓存里不能残留 404 结果
	f.patients.patient = &domain.Patient{ID: 42, Name: "New Patient"}
	profile, err := svc.GetFullProfile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), profile.Patient.ID)
}
