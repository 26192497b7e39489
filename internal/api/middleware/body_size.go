package middleware

import (
	"net/http"

	"mixologist/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BodySizeLimit 限制收藏酒譜與圖片請求的 JSON 大小。
// GET 類請求（搜尋、健康檢查）沒有請求體，直接放行；
// 未帶 Content-Length 的請求由 MaxBytesReader 在綁定時截斷。
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		if c.Request.ContentLength > maxSize {
			common.LogWarn("酒譜請求內容過大",
				zap.String("request_id", requestid.Get(c)),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":    "Cocktail payload exceeds the allowed size",
				"code":     common.ErrCodePayloadTooLarge,
				"max_size": maxSize,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
