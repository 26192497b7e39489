package favorites

import (
	"context"
	"errors"
	"net/http"

	"mixologist/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service 收藏服務
type Service interface {
	Toggle(ctx context.Context, profile common.CocktailProfile) (bool, error)
	Add(ctx context.Context, profile common.CocktailProfile) error
	Remove(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (common.CocktailProfile, error)
	IsFavorite(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]common.CocktailProfile, error)
}

// ToggleResponse 切換後的收藏狀態
type ToggleResponse struct {
	Name     string `json:"name"`
	Favorite bool   `json:"favorite"`
}

// Handler 收藏處理程序
type Handler struct {
	service Service
}

// NewHandler 創建新的收藏處理程序
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// respondError 依錯誤類型回應
func respondError(c *gin.Context, err error) {
	var custom *common.CustomError
	switch {
	case common.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInvalidRequest,
		})
	case errors.As(err, &custom):
		c.JSON(custom.Status, custom.ToResponse(false))
	default:
		common.LogError("收藏操作失敗",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
			"code":  common.ErrCodeInternalError,
		})
	}
}

func bindProfile(c *gin.Context) (common.CocktailProfile, bool) {
	var profile common.CocktailProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  common.ErrCodeInvalidRequest,
		})
		return profile, false
	}
	return profile, true
}

// HandleList 列出收藏
func (h *Handler) HandleList(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(items),
		"favorites": items,
	})
}

// HandleGet 獲取單一收藏
func (h *Handler) HandleGet(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// HandleExists 查詢是否已收藏，名稱不分大小寫
func (h *Handler) HandleExists(c *gin.Context) {
	name := c.Param("name")
	favorite, err := h.service.IsFavorite(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{Name: name, Favorite: favorite})
}

// HandlePut 加入或覆寫收藏
func (h *Handler) HandlePut(c *gin.Context) {
	profile, ok := bindProfile(c)
	if !ok {
		return
	}
	if err := h.service.Add(c.Request.Context(), profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{Name: profile.Name, Favorite: true})
}

// HandleDelete 移除收藏
func (h *Handler) HandleDelete(c *gin.Context) {
	name := c.Param("name")
	if err := h.service.Remove(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToggleResponse{Name: name, Favorite: false})
}

// HandleToggle 切換收藏狀態
func (h *Handler) HandleToggle(c *gin.Context) {
	profile, ok := bindProfile(c)
	if !ok {
		return
	}

	favorite, err := h.service.Toggle(c.Request.Context(), profile)
	if err != nil {
		respondError(c, err)
		return
	}

	common.LogInfo("收藏狀態已切換",
		zap.String("request_id", requestid.Get(c)),
		zap.String("name", profile.Name),
		zap.Bool("favorite", favorite),
	)

	c.JSON(http.StatusOK, ToggleResponse{Name: profile.Name, Favorite: favorite})
}
