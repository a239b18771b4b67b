package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于静态文件等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// statusRecorder 捕获下游写入的状态码用于访问日志
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	r.mux.ServeHTTP(rec, req)

	r.logger.Info("HTTP request",
		zap.String("request_id", uuid.NewString()),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)),
	)
}

// RegisterPatientRoutes 注册患者及其子资源路由
func (r *Router) RegisterPatientRoutes(h *PatientHandler) {
	r.Handle("/patients", h.ServeHTTP)
	r.Handle("/patients/", h.ServeHTTP)
}

// RegisterInfoRoutes 注册运维类路由
func (r *Router) RegisterInfoRoutes(h *InfoHandler) {
	r.Handle("/server-info", h.ServerInfo)
	r.Handle("/health", h.Health)
}

// RegisterUploadRoutes 静态托管已落盘的头像与文档
func (r *Router) RegisterUploadRoutes(photoDir, documentDir string) {
	r.HandleHandler("/uploads/photos/",
		http.StripPrefix("/uploads/photos/", http.FileServer(http.Dir(photoDir))))
	r.HandleHandler("/uploads/documents/",
		http.StripPrefix("/uploads/documents/", http.FileServer(http.Dir(documentDir))))
}
