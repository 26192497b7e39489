// Package image 解析酒譜圖片：先查公開 API 縮圖，再交給生成式圖片服務
package image

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mixologist/internal/core/cocktaildb"
	"mixologist/internal/infrastructure/metrics"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
)

// Lookup 依名稱查詢公開酒譜 API
type Lookup interface {
	SearchByName(ctx context.Context, name string) ([]cocktaildb.Drink, error)
}

// Generator 生成式圖片服務，回傳 data URI
type Generator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// Prompt 圖片生成提示，輸入相同輸出必定相同
func Prompt(name, glassware, garnish, color string) string {
	return fmt.Sprintf("Professional high-end studio photography of a %s cocktail. Served in a %s. Liquid color: %s. Garnish: %s. Luxury bar setting, bokeh background, dramatic lighting, 8k resolution, minimalist aesthetic, photorealistic.",
		name, glassware, color, garnish)
}

// Resolver 圖片解析器
type Resolver struct {
	lookup          Lookup
	generator       Generator
	processor       *Processor
	lookupTimeout   time.Duration
	generateTimeout time.Duration
}

// NewResolver 創建圖片解析器；lookup、generator、processor 皆可為 nil
func NewResolver(lookup Lookup, generator Generator, processor *Processor, lookupTimeout, generateTimeout time.Duration) *Resolver {
	if lookupTimeout <= 0 {
		lookupTimeout = 10 * time.Second
	}
	if generateTimeout <= 0 {
		generateTimeout = 60 * time.Second
	}
	return &Resolver{
		lookup:          lookup,
		generator:       generator,
		processor:       processor,
		lookupTimeout:   lookupTimeout,
		generateTimeout: generateTimeout,
	}
}

// Resolve 依序嘗試公開 API 與生成式服務，全部失敗時回傳空字串
func (r *Resolver) Resolve(ctx context.Context, name, glassware, garnish, color string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if img := r.fromLookup(ctx, name); img != "" {
		metrics.ImageResolutions.WithLabelValues(metrics.SourceImageAPI).Inc()
		return img
	}

	if img := r.fromGenerator(ctx, name, glassware, garnish, color); img != "" {
		metrics.ImageResolutions.WithLabelValues(metrics.SourceImageGen).Inc()
		return img
	}

	metrics.ImageResolutions.WithLabelValues("none").Inc()
	common.LogDebug("找不到圖片", zap.String("name", name))
	return ""
}

func (r *Resolver) fromLookup(ctx context.Context, name string) string {
	if r.lookup == nil {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	drinks, err := r.lookup.SearchByName(callCtx, name)
	if err != nil {
		metrics.SourceErrors.WithLabelValues(metrics.SourceImageAPI).Inc()
		common.LogSourceFailure(metrics.SourceImageAPI, err, zap.String("name", name))
		return ""
	}
	if len(drinks) == 0 {
		return ""
	}
	return strings.TrimSpace(drinks[0].Thumb())
}

func (r *Resolver) fromGenerator(ctx context.Context, name, glassware, garnish, color string) string {
	if r.generator == nil {
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, r.generateTimeout)
	defer cancel()

	img, err := r.generator.GenerateImage(callCtx, Prompt(name, glassware, garnish, color))
	if err != nil {
		metrics.SourceErrors.WithLabelValues(metrics.SourceImageGen).Inc()
		common.LogSourceFailure(metrics.SourceImageGen, err, zap.String("name", name))
		return ""
	}
	if img == "" || r.processor == nil {
		return img
	}

	normalized, err := r.processor.Normalize(img)
	if err != nil {
		common.LogWarn("生成圖片處理失敗，保留原始資料", zap.String("name", name), zap.Error(err))
		return img
	}
	return normalized
}
