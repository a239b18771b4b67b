package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
	"github.com/Omarelnoamy/health-connect-api/internal/repository"
	"github.com/Omarelnoamy/health-connect-api/internal/store"
)

// ErrPatientNotFound 聚合接口专用：患者主键不存在
// （子记录不存在不是错误，序列化为 null / 空数组）
var ErrPatientNotFound = errors.New("patient not found")

// PatientProfile 全量档案聚合响应
// contact_info 和 vitals 缺失时为 null；列表字段缺失时为空数组
type PatientProfile struct {
	Patient           *domain.Patient            `json:"patient"`
	ContactInfo       *domain.ContactInfo        `json:"contact_info"`
	ClinicalDocuments []*domain.ClinicalDocument `json:"clinical_documents"`
	MedicalHistory    []*domain.MedicalHistory   `json:"medical_history"`
	Visits            []*domain.Visit            `json:"visits"`
	Vitals            *domain.Vitals             `json:"vitals"`
}

// ProfileService 全量档案聚合器
// 先确认患者存在，再并发读五张子表，组装单个复合响应；
// 组装结果可选地缓存进 Redis（短TTL），任何针对该患者的写操作负责失效
type ProfileService struct {
	patients  repository.PatientsRepository
	contacts  repository.ContactInfoRepository
	history   repository.MedicalHistoryRepository
	visits    repository.VisitsRepository
	vitals    repository.VitalsRepository
	documents repository.DocumentsRepository
	kv        store.KV // nil 表示禁用缓存
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewProfileService 创建档案聚合服务；kv 传 nil 时关闭缓存
func NewProfileService(
	patients repository.PatientsRepository,
	contacts repository.ContactInfoRepository,
	history repository.MedicalHistoryRepository,
	visits repository.VisitsRepository,
	vitals repository.VitalsRepository,
	documents repository.DocumentsRepository,
	kv store.KV,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		patients:  patients,
		contacts:  contacts,
		history:   history,
		visits:    visits,
		vitals:    vitals,
		documents: documents,
		kv:        kv,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func profileCacheKey(patientID int64) string {
	return fmt.Sprintf("patient:%d:full", patientID)
}

// GetFullProfile 获取患者全量档案
// 1. 缓存命中直接返回
// 2. 患者不存在 -> ErrPatientNotFound，不再发起任何子查询
// 3. 五个子读并发执行，任一失败整体失败（无部分成功）
// 4. vitals 取完整历史的第一个元素，与 LIMIT 1 的单资源接口同一行
func (s *ProfileService) GetFullProfile(ctx context.Context, patientID int64) (*PatientProfile, error) {
	if s.kv != nil {
		if raw, err := s.kv.Get(ctx, profileCacheKey(patientID)); err == nil {
			var cached PatientProfile
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		} else if err != store.ErrCacheMiss {
			s.logger.Debug("Profile cache read failed",
				zap.Int64("patient_id", patientID),
				zap.Error(err),
			)
		}
	}

	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	var (
		contact       *domain.ContactInfo
		docs          []*domain.ClinicalDocument
		histories     []*domain.MedicalHistory
		visitHistory  []*domain.Visit
		vitalsHistory []*domain.Vitals
	)

	// 子表互不相关，读之间没有顺序约束；唯一的顺序约束是
	// 患者存在性检查必须先于 fan-out
	var wg sync.WaitGroup
	errCh := make(chan error, 5)

	wg.Add(5)
	go func() {
		defer wg.Done()
		v, err := s.contacts.GetLatest(ctx, patientID)
		if err != nil {
			errCh <- fmt.Errorf("contact info: %w", err)
			return
		}
		contact = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.documents.ListByPatient(ctx, patientID)
		if err != nil {
			errCh <- fmt.Errorf("clinical documents: %w", err)
			return
		}
		docs = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.history.ListByPatient(ctx, patientID)
		if err != nil {
			errCh <- fmt.Errorf("medical history: %w", err)
			return
		}
		histories = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.visits.ListByPatient(ctx, patientID)
		if err != nil {
			errCh <- fmt.Errorf("visits: %w", err)
			return
		}
		visitHistory = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.vitals.ListByPatient(ctx, patientID)
		if err != nil {
			errCh <- fmt.Errorf("vitals: %w", err)
			return
		}
		vitalsHistory = v
	}()

	wg.Wait()
	close(errCh)
	for err := range errCh {
		return nil, fmt.Errorf("failed to aggregate profile: %w", err)
	}

	profile := &PatientProfile{
		Patient:           patient,
		ContactInfo:       contact,
		ClinicalDocuments: docs,
		MedicalHistory:    histories,
		Visits:            visitHistory,
	}
	if len(vitalsHistory) > 0 {
		profile.Vitals = vitalsHistory[0]
	}

	// 列表字段序列化为 []，不输出 null
	if profile.ClinicalDocuments == nil {
		profile.ClinicalDocuments = []*domain.ClinicalDocument{}
	}
	if profile.MedicalHistory == nil {
		profile.MedicalHistory = []*domain.MedicalHistory{}
	}
	if profile.Visits == nil {
		profile.Visits = []*domain.Visit{}
	}

	s.cacheProfile(ctx, patientID, profile)
	return profile, nil
}

// InvalidateProfile 删除该患者的档案缓存；所有写接口在落库成功后调用
func (s *ProfileService) InvalidateProfile(ctx context.Context, patientID int64) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Del(ctx, profileCacheKey(patientID)); err != nil {
		s.logger.Debug("Failed to invalidate profile cache",
			zap.Int64("patient_id", patientID),
			zap.Error(err),
		)
	}
}

// cacheProfile 缓存写入尽力而为，失败只记日志
func (s *ProfileService) cacheProfile(ctx context.Context, patientID int64, profile *PatientProfile) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, profileCacheKey(patientID), string(data), s.cacheTTL); err != nil {
		s.logger.Debug("Failed to update profile cache",
			zap.Int64("patient_id", patientID),
			zap.Error(err),
		)
	}
}
