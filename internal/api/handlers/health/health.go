package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"mixologist/internal/core/ai/queue"
	"mixologist/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout 就緒檢查的儲存 ping 上限
const readyTimeout = 2 * time.Second

// Pinger 可檢查連線狀態的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueReporter 生成隊列狀態來源
type QueueReporter interface {
	GetQueueStatus() queue.Status
}

// CacheReporter 生成結果快取統計來源
type CacheReporter interface {
	CacheStats() map[string]interface{}
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler 健康檢查處理程序
type Handler struct {
	version string
	store   Pinger
	queue   QueueReporter
	cache   CacheReporter
}

// NewHandler 創建健康檢查處理程序；生成式備援停用時 q 與 cache 為 nil
func NewHandler(version string, store Pinger, q QueueReporter, cache CacheReporter) *Handler {
	return &Handler{version: version, store: store, queue: q, cache: cache}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.queue != nil {
		status := h.queue.GetQueueStatus()
		response.Queue = &status
	}
	if h.cache != nil {
		response.Cache = h.cache.CacheStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：收藏儲存必須可連線
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			common.LogWarn("就緒檢查失敗", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"error":  err.Error(),
				"code":   common.ErrCodeServiceUnavailable,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
