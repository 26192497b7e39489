// Package metrics 定義服務的 Prometheus 指標
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 搜尋階段與來源標籤
const (
	SourceLocal      = "local"
	SourceCocktailDB = "cocktaildb"
	SourceGenerative = "generative"
	SourceImageAPI   = "image_api"
	SourceImageGen   = "image_generation"
)

var (
	// SearchRequests 搜尋請求數
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixologist_search_requests_total",
			Help: "Total number of search requests",
		},
		[]string{"mode", "outcome"},
	)

	// SearchDuration 搜尋耗時
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mixologist_search_duration_seconds",
			Help:    "Search pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// StageCandidates 各階段加入結果的酒譜數
	StageCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixologist_stage_candidates_total",
			Help: "Profiles added to results per search stage",
		},
		[]string{"source"},
	)

	// SourceErrors 資料來源失敗次數
	SourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixologist_source_errors_total",
			Help: "Failures per data source (swallowed by the pipeline)",
		},
		[]string{"source"},
	)

	// ImageResolutions 圖片解析結果
	ImageResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixologist_image_resolutions_total",
			Help: "Image resolutions by the source that produced them",
		},
		[]string{"source"},
	)

	// FavoriteOperations 收藏操作
	FavoriteOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixologist_favorite_operations_total",
			Help: "Favorite store operations",
		},
		[]string{"operation", "status"},
	)
)
