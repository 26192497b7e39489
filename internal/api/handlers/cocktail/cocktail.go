package cocktail

import (
	"context"
	"io"
	"net/http"
	"strings"

	"mixologist/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 搜尋結果狀態
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
)

// Searcher 搜尋聚合器
type Searcher interface {
	Search(ctx context.Context, query string, mode common.SearchMode, progress common.ProgressFunc) ([]common.CocktailProfile, error)
}

// ImageResolver 圖片解析
type ImageResolver interface {
	Resolve(ctx context.Context, name, glassware, garnish, color string) string
}

// SearchResponse 搜尋回應
type SearchResponse struct {
	Status  string                   `json:"status"`
	Count   int                      `json:"count"`
	Single  bool                     `json:"single"`
	Results []common.CocktailProfile `json:"results"`
}

// ImageRequest 圖片請求
type ImageRequest struct {
	Name      string `json:"name" binding:"required"`
	Glassware string `json:"glassware"`
	Garnish   string `json:"garnish"`
	Color     string `json:"color"`
}

// ImageResponse 圖片回應；找不到圖片時 image_url 為 null
type ImageResponse struct {
	ImageURL *string `json:"image_url"`
}

// Handler 調酒搜尋處理程序
type Handler struct {
	searcher Searcher
	images   ImageResolver
}

// NewHandler 創建新的調酒處理程序；images 可為 nil
func NewHandler(searcher Searcher, images ImageResolver) *Handler {
	return &Handler{
		searcher: searcher,
		images:   images,
	}
}

// NewSearchResponse 依結果數量組成回應
func NewSearchResponse(results []common.CocktailProfile) SearchResponse {
	if results == nil {
		results = []common.CocktailProfile{}
	}
	status := StatusSuccess
	if len(results) == 0 {
		status = StatusNotFound
	}
	return SearchResponse{
		Status:  status,
		Count:   len(results),
		Single:  len(results) == 1,
		Results: results,
	}
}

func requestID(c *gin.Context) string {
	id := requestid.Get(c)
	if id == "" {
		id = c.GetHeader("X-Request-ID")
	}
	if id == "" {
		id = common.GenerateUUID()
		c.Header("X-Request-ID", id)
	}
	return id
}

// parseQuery 讀取 q 與 mode 參數
func parseQuery(c *gin.Context) (string, common.SearchMode, error) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return "", "", common.NewValidationError("query parameter q is required")
	}
	mode, err := common.ParseSearchMode(c.Query("mode"))
	if err != nil {
		return "", "", err
	}
	return query, mode, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
		"code":  common.ErrCodeInvalidRequest,
	})
}

// completeSingle 只有一筆結果且沒有圖片時補上圖片
func (h *Handler) completeSingle(ctx context.Context, results []common.CocktailProfile) []common.CocktailProfile {
	if h.images == nil || len(results) != 1 || results[0].ImageURL != "" {
		return results
	}
	p := results[0]
	if img := h.images.Resolve(ctx, p.Name, p.Glassware, p.Garnish, p.Color); img != "" {
		results[0] = p.WithImage(img)
	}
	return results
}

// HandleSearch 搜尋調酒
func (h *Handler) HandleSearch(c *gin.Context) {
	reqID := requestID(c)

	query, mode, err := parseQuery(c)
	if err != nil {
		common.LogWarn("搜尋參數無效", zap.Error(err), zap.String("request_id", reqID))
		badRequest(c, err)
		return
	}

	common.LogInfo("開始處理搜尋請求",
		zap.String("request_id", reqID),
		zap.String("query", query),
		zap.String("mode", string(mode)),
		zap.String("client_ip", c.ClientIP()),
	)

	ctx := c.Request.Context()
	results, err := h.searcher.Search(ctx, query, mode, func(status string) {
		common.LogDebug("搜尋進度", zap.String("request_id", reqID), zap.String("status", status))
	})
	if err != nil {
		common.LogError("搜尋失敗",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInternalError,
		})
		return
	}

	c.JSON(http.StatusOK, NewSearchResponse(h.completeSingle(ctx, results)))
}

type searchOutcome struct {
	results []common.CocktailProfile
	err     error
}

// HandleSearchStream 以 SSE 推送搜尋進度，最後送出 result 事件
func (h *Handler) HandleSearchStream(c *gin.Context) {
	reqID := requestID(c)

	query, mode, err := parseQuery(c)
	if err != nil {
		common.LogWarn("搜尋參數無效", zap.Error(err), zap.String("request_id", reqID))
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	events := make(chan string, 8)
	done := make(chan searchOutcome, 1)

	go func() {
		results, err := h.searcher.Search(ctx, query, mode, func(status string) {
			select {
			case events <- status:
			case <-ctx.Done():
			}
		})
		if err == nil {
			results = h.completeSingle(ctx, results)
		}
		done <- searchOutcome{results: results, err: err}
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case status := <-events:
			c.SSEvent("progress", gin.H{"status": status})
			return true
		case out := <-done:
			// 進度一定早於結果送出
			for drained := false; !drained; {
				select {
				case status := <-events:
					c.SSEvent("progress", gin.H{"status": status})
				default:
					drained = true
				}
			}
			if out.err != nil {
				common.LogError("搜尋失敗",
					zap.Error(out.err),
					zap.String("request_id", reqID),
				)
				c.SSEvent("error", gin.H{
					"error": out.err.Error(),
					"code":  common.ErrCodeInternalError,
				})
				return false
			}
			c.SSEvent("result", NewSearchResponse(out.results))
			return false
		case <-ctx.Done():
			return false
		}
	})
}

// HandleImage 為調酒解析圖片
func (h *Handler) HandleImage(c *gin.Context) {
	reqID := requestID(c)

	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", reqID),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	var resp ImageResponse
	if h.images != nil {
		if img := h.images.Resolve(c.Request.Context(), req.Name, req.Glassware, req.Garnish, req.Color); img != "" {
			resp.ImageURL = &img
		}
	}

	common.LogInfo("圖片解析完成",
		zap.String("request_id", reqID),
		zap.String("name", req.Name),
		zap.Bool("found", resp.ImageURL != nil),
	)

	c.JSON(http.StatusOK, resp)
}
