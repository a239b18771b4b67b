package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// InfoHandler 运维类接口（服务发现 + 健康检查）
type InfoHandler struct {
	apiPort int
	appPort int
	logger  *zap.Logger
}

// NewInfoHandler 创建 InfoHandler；addr 形如 ":4000" 或 "0.0.0.0:4000"
func NewInfoHandler(addr string, appPort int, logger *zap.Logger) *InfoHandler {
	return &InfoHandler{
		apiPort: portFromAddr(addr),
		appPort: appPort,
		logger:  logger,
	}
}

// ServerInfo GET /server-info，局域网客户端用它发现后端地址
func (h *InfoHandler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"host":    localIPv4(),
		"apiPort": h.apiPort,
		"appPort": h.appPort,
	})
}

// Health GET /health
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func portFromAddr(addr string) int {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return 0
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return 0
	}
	return port
}

// localIPv4 返回第一个非回环 IPv4 地址，取不到时退回 localhost
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "localhost"
}
