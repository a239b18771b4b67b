package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Omarelnoamy/health-connect-api/internal/domain"
	"github.com/Omarelnoamy/health-connect-api/internal/repository"
	"github.com/Omarelnoamy/health-connect-api/internal/service"
)

const maxMultipartMemory = 32 << 20 // 32MB
const maxBodyBytes = 1 << 20

// PatientHandler 患者及其子资源 Handler
type PatientHandler struct {
	patients  repository.PatientsRepository
	contacts  repository.ContactInfoRepository
	history   repository.MedicalHistoryRepository
	visits    repository.VisitsRepository
	vitals    repository.VitalsRepository
	documents repository.DocumentsRepository
	uploads   *service.UploadService
	profiles  *service.ProfileService
	logger    *zap.Logger
}

// NewPatientHandler 创建患者管理 Handler
func NewPatientHandler(
	patients repository.PatientsRepository,
	contacts repository.ContactInfoRepository,
	history repository.MedicalHistoryRepository,
	visits repository.VisitsRepository,
	vitals repository.VitalsRepository,
	documents repository.DocumentsRepository,
	uploads *service.UploadService,
	profiles *service.ProfileService,
	logger *zap.Logger,
) *PatientHandler {
	return &PatientHandler{
		patients:  patients,
		contacts:  contacts,
		history:   history,
		visits:    visits,
		vitals:    vitals,
		documents: documents,
		uploads:   uploads,
		profiles:  profiles,
		logger:    logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *PatientHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	// ListPatients
	case path == "/patients" && r.Method == http.MethodGet:
		h.ListPatients(w, r)
	// CreatePatient
	case path == "/patients" && r.Method == http.MethodPost:
		h.CreatePatient(w, r)
	// ExportPatients (必须在 GetPatient 之前，因为路径更具体)
	case path == "/patients/export" && r.Method == http.MethodGet:
		h.ExportPatients(w, r)
	case path == "/patients" || path == "/patients/export":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		h.servePatientSubresource(w, r, strings.TrimPrefix(path, "/patients/"))
	}
}

func (h *PatientHandler) servePatientSubresource(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(strings.TrimSuffix(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" || len(parts) > 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	patientID, ok := parseID(parts[0])
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid patient id")
		return
	}

	// GetPatient - /patients/:id
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetPatient(w, r, patientID)
		return
	}

	switch parts[1] {
	case "photo":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.UploadPhoto(w, r, patientID)
	case "full":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.GetFullProfile(w, r, patientID)
	case "vitals":
		switch r.Method {
		case http.MethodGet:
			h.GetLatestVitals(w, r, patientID)
		case http.MethodPut:
			h.InsertVitals(w, r, patientID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "medical_history":
		switch r.Method {
		case http.MethodGet:
			h.GetLatestMedicalHistory(w, r, patientID)
		case http.MethodPut:
			h.InsertMedicalHistory(w, r, patientID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "contact_info":
		switch r.Method {
		case http.MethodGet:
			h.GetLatestContactInfo(w, r, patientID)
		case http.MethodPut:
			h.InsertContactInfo(w, r, patientID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "visits":
		switch r.Method {
		case http.MethodGet:
			h.ListVisits(w, r, patientID)
		case http.MethodPut:
			h.InsertVisit(w, r, patientID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "clinical_documents":
		switch r.Method {
		case http.MethodGet:
			h.ListDocuments(w, r, patientID)
		case http.MethodPost:
			h.UploadDocument(w, r, patientID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// CreatePatient POST /patients（multipart，profile_photo 可选）
// 类型校验先于任何落库动作；照片落盘在患者行插入之后，
// 更新照片路径失败时文件残留为孤儿，只记日志
func (h *PatientHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	photo, photoHeader, err := r.FormFile("profile_photo")
	hasPhoto := err == nil
	if hasPhoto {
		defer photo.Close()
		if !service.IsAllowedPhotoType(photoHeader.Header.Get("Content-Type")) {
			writeError(w, http.StatusBadRequest, "Invalid file type")
			return
		}
	}

	patient := &domain.Patient{
		Name:        r.FormValue("name"),
		DateOfBirth: r.FormValue("date_of_birth"),
		Gender:      r.FormValue("gender"),
		NationalID:  r.FormValue("national_id"),
		Nationality: r.FormValue("nationality"),
		Language:    r.FormValue("language"),
		BloodType:   r.FormValue("blood_type"),
	}

	created, err := h.patients.Create(r.Context(), patient)
	if err != nil {
		h.logger.Error("Failed to create patient", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if hasPhoto {
		path, err := h.uploads.SaveProfilePhoto(created.ID, photoHeader.Header.Get("Content-Type"), photoHeader.Filename, photo)
		if err != nil {
			h.logger.Error("Failed to save profile photo",
				zap.Int64("patient_id", created.ID),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if err := h.patients.UpdatePhotoPath(r.Context(), created.ID, path); err != nil {
			h.logger.Error("Failed to record photo path, file orphaned on disk",
				zap.Int64("patient_id", created.ID),
				zap.String("path", path),
				zap.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		created.ProfilePhotoPath = path
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListPatients GET /patients
func (h *PatientHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.patients.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list patients", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if patients == nil {
		patients = []*domain.Patient{}
	}
	writeJSON(w, http.StatusOK, patients)
}

// GetPatient GET /patients/:id，不存在时返回 {}
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request, patientID int64) {
	patient, err := h.patients.GetByID(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to get patient", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if patient == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, patient)
}

// UploadPhoto POST /patients/:id/photo（multipart photo 必填）
func (h *PatientHandler) UploadPhoto(w http.ResponseWriter, r *http.Request, patientID int64) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No photo uploaded")
		return
	}
	photo, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No photo uploaded")
		return
	}
	defer photo.Close()

	path, err := h.uploads.SaveProfilePhoto(patientID, header.Header.Get("Content-Type"), header.Filename, photo)
	if err != nil {
		if err == service.ErrInvalidFileType {
			writeError(w, http.StatusBadRequest, "Invalid file type")
			return
		}
		h.logger.Error("Failed to save profile photo", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := h.patients.UpdatePhotoPath(r.Context(), patientID, path); err != nil {
		h.logger.Error("Failed to record photo path, file orphaned on disk",
			zap.Int64("patient_id", patientID),
			zap.String("path", path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.profiles.InvalidateProfile(r.Context(), patientID)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"profile_photo_path": path,
	})
}

// GetFullProfile GET /patients/:id/full
func (h *PatientHandler) GetFullProfile(w http.ResponseWriter, r *http.Request, patientID int64) {
	profile, err := h.profiles.GetFullProfile(r.Context(), patientID)
	if err != nil {
		if err == service.ErrPatientNotFound {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}
		h.logger.Error("Failed to aggregate patient profile", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetLatestVitals GET /patients/:id/vitals，无记录时返回 {}
func (h *PatientHandler) GetLatestVitals(w http.ResponseWriter, r *http.Request, patientID int64) {
	latest, err := h.vitals.GetLatest(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to get latest vitals", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// InsertVitals PUT /patients/:id/vitals，时间戳由服务端生成
func (h *PatientHandler) InsertVitals(w http.ResponseWriter, r *http.Request, patientID int64) {
	var vitals domain.Vitals
	if err := readBodyJSON(r, maxBodyBytes, &vitals); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	vitals.PatientID = patientID

	inserted, err := h.vitals.Insert(r.Context(), &vitals)
	if err != nil {
		h.logger.Error("Failed to insert vitals", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.profiles.InvalidateProfile(r.Context(), patientID)
	writeJSON(w, http.StatusOK, inserted)
}

// GetLatestMedicalHistory GET /patients/:id/medical_history，无记录时返回 {}
func (h *PatientHandler) GetLatestMedicalHistory(w http.ResponseWriter, r *http.Request, patientID int64) {
	latest, err := h.history.GetLatest(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to get medical history", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// InsertMedicalHistory PUT /patients/:id/medical_history
func (h *PatientHandler) InsertMedicalHistory(w http.ResponseWriter, r *http.Request, patientID int64) {
	var history domain.MedicalHistory
	if err := readBodyJSON(r, maxBodyBytes, &history); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	history.PatientID = patientID

	inserted, err := h.history.Insert(r.Context(), &history)
	if err != nil {
		h.logger.Error("Failed to insert medical history", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.profiles.InvalidateProfile(r.Context(), patientID)
	writeJSON(w, http.StatusOK, inserted)
}

// GetLatestContactInfo GET /patients/:id/contact_info，无记录时返回 {}
func (h *PatientHandler) GetLatestContactInfo(w http.ResponseWriter, r *http.Request, patientID int64) {
	latest, err := h.contacts.GetLatest(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to get contact info", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// InsertContactInfo PUT /patients/:id/contact_info
func (h *PatientHandler) InsertContactInfo(w http.ResponseWriter, r *http.Request, patientID int64) {
	var contact domain.ContactInfo
	if err := readBodyJSON(r, maxBodyBytes, &contact); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	contact.PatientID = patientID

	inserted, err := h.contacts.Insert(r.Context(), &contact)
	if err != nil {
		h.logger.Error("Failed to insert contact info", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.profiles.InvalidateProfile(r.Context(), patientID)
	writeJSON(w, http.StatusOK, inserted)
}

// ListVisits GET /patients/:id/visits，按就诊日期倒序
func (h *PatientHandler) ListVisits(w http.ResponseWriter, r *http.Request, patientID int64) {
	visits, err := h.visits.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to list visits", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if visits == nil {
		visits = []*domain.Visit{}
	}
	writeJSON(w, http.StatusOK, visits)
}

// InsertVisit PUT /patients/:id/visits
func (h *PatientHandler) InsertVisit(w http.ResponseWriter, r *http.Request, patientID int64) {
	var visit domain.Visit
	if err := readBodyJSON(r, maxBodyBytes, &visit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	visit.PatientID = patientID

	inserted, err := h.visits.Insert(r.Context(), &visit)
	if err != nil {
		h.logger.Error("Failed to insert visit", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.profiles.InvalidateProfile(r.Context(), patientID)
	writeJSON(w, http.StatusOK, inserted)
}

// ListDocuments GET /patients/:id/clinical_documents，按上传日期倒序
func (h *PatientHandler) ListDocuments(w http.ResponseWriter, r *http.Request, patientID int64) {
	docs, err := h.documents.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("Failed to list clinical documents", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if docs == nil {
		docs = []*domain.ClinicalDocument{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// UploadDocument POST /patients/:id/clinical_documents（multipart file 必填）
// 文档不做类型白名单；先落盘再插行，插行失败时文件残留为孤儿
func (h *PatientHandler) UploadDocument(w http.ResponseWriter, r *http.Request, patientID int64) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	path, err := h.uploads.SaveDocument(header.Filename, file)
	if err != nil {
		h.logger.Error("Failed to save clinical document", zap.Int64("patient_id", patientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	doc := &domain.ClinicalDocument{
		PatientID:    patientID,
		DocumentName: header.Filename,
		FileType:     header.Header.Get("Content-Type"),
		FilePath:     path,
	}
	inserted, err := h.documents.Insert(r.Context(), doc)
	if err != nil {
		h.logger.Error("Failed to record clinical document, file orphaned on disk",
			zap.Int64("patient_id", patientID),
			zap.String("path", path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.profiles.InvalidateProfile(r.Context(), patientID)
	writeJSON(w, http.StatusCreated, inserted)
}
