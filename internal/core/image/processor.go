package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"mixologist/internal/pkg/common"

	_ "golang.org/x/image/webp" // 支援 WebP
)

// Processor 圖片處理器，把生成的圖片統一轉為 JPEG data URI
type Processor struct {
	maxSizeBytes int64
	quality      int
}

// NewProcessor 創建圖片處理器
func NewProcessor(maxSizeBytes int64) *Processor {
	return &Processor{
		maxSizeBytes: maxSizeBytes,
		quality:      85,
	}
}

// Normalize 解碼 base64 data URI、檢查大小後重新編碼為 JPEG
func (p *Processor) Normalize(dataURI string) (string, error) {
	if !common.IsDataURI(dataURI) {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("not a data URI"))
	}

	// 解析 base64 數據
	parts := strings.SplitN(dataURI, ",", 2)
	if len(parts) != 2 || !strings.HasSuffix(parts[0], ";base64") {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid base64 data format"))
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}

	// 檢查文件大小
	if p.maxSizeBytes > 0 && int64(len(decoded)) > p.maxSizeBytes {
		return "", common.ErrInvalidImageSize.Wrap(fmt.Errorf("image size %d exceeds maximum limit of %d bytes", len(decoded), p.maxSizeBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(decoded))
	if err != nil {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.quality}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}
