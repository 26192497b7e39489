// Package cocktail 實作酒譜搜尋聚合：本地資料集、TheCocktailDB、生成式備援
package cocktail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mixologist/internal/core/cocktaildb"
	"mixologist/internal/infrastructure/metrics"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 進度訊息
const (
	ProgressLocal      = "正在查詢本地酒譜收藏..."
	ProgressExternal   = "正在搜尋國際調酒資料庫..."
	ProgressDetails    = "正在載入 %d 款調酒的詳細資料..."
	ProgressGenerative = "正在呼叫 AI 調酒大師..."
)

// DefaultMaxDetailFetch 材料模式下最多取回幾筆詳細資料
const DefaultMaxDetailFetch = 8

// LocalSource 本地資料集
type LocalSource interface {
	Match(query string, mode common.SearchMode) []common.CocktailProfile
}

// RecipeAPI 公開酒譜 API
type RecipeAPI interface {
	SearchByName(ctx context.Context, name string) ([]cocktaildb.Drink, error)
	FilterByIngredient(ctx context.Context, ingredient string) ([]cocktaildb.DrinkRef, error)
	LookupByID(ctx context.Context, id string) (cocktaildb.Drink, error)
}

// RecipeGenerator 生成式酒譜備援
type RecipeGenerator interface {
	Generate(ctx context.Context, query string, mode common.SearchMode) (*common.CocktailProfile, error)
}

// ImageResolver 圖片解析，失敗時回傳空字串
type ImageResolver interface {
	Resolve(ctx context.Context, name, glassware, garnish, color string) string
}

// Options 聚合器設定
type Options struct {
	MaxDetailFetch    int
	CallTimeout       time.Duration
	GenerativeTimeout time.Duration
}

// Aggregator 依序查詢三個來源並合併去重
type Aggregator struct {
	local     LocalSource
	api       RecipeAPI
	generator RecipeGenerator
	images    ImageResolver
	opts      Options
}

// NewAggregator 創建搜尋聚合器；api、generator、images 可為 nil（略過該來源）
func NewAggregator(local LocalSource, api RecipeAPI, generator RecipeGenerator, images ImageResolver, opts Options) *Aggregator {
	if opts.MaxDetailFetch <= 0 {
		opts.MaxDetailFetch = DefaultMaxDetailFetch
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if opts.GenerativeTimeout <= 0 {
		opts.GenerativeTimeout = 60 * time.Second
	}
	return &Aggregator{
		local:     local,
		api:       api,
		generator: generator,
		images:    images,
		opts:      opts,
	}
}

// resultSet 以小寫名稱去重，先加入者優先
type resultSet struct {
	seen  map[string]struct{}
	items []common.CocktailProfile
}

func newResultSet() *resultSet {
	return &resultSet{
		seen:  make(map[string]struct{}),
		items: []common.CocktailProfile{},
	}
}

func (r *resultSet) add(p common.CocktailProfile) bool {
	key := p.Key()
	if key == "" {
		return false
	}
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	r.items = append(r.items, p)
	return true
}

func (r *resultSet) addAll(profiles []common.CocktailProfile) int {
	added := 0
	for _, p := range profiles {
		if r.add(p) {
			added++
		}
	}
	return added
}

// Search 依序查詢本地、外部 API，皆無結果時才使用生成式備援。
// 來源失敗只會讓該來源沒有結果；只有 ctx 被取消時才回傳錯誤。
func (a *Aggregator) Search(ctx context.Context, query string, mode common.SearchMode, progress common.ProgressFunc) ([]common.CocktailProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []common.CocktailProfile{}, nil
	}
	if mode != common.SearchByName && mode != common.SearchByIngredient {
		return nil, common.NewValidationError(fmt.Sprintf("unsupported search mode %q", mode))
	}
	if progress == nil {
		progress = func(string) {}
	}

	start := time.Now()
	defer func() {
		metrics.SearchDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	}()

	results := newResultSet()

	// 階段一：本地資料集
	progress(ProgressLocal)
	if a.local != nil {
		added := results.addAll(a.local.Match(query, mode))
		metrics.StageCandidates.WithLabelValues(metrics.SourceLocal).Add(float64(added))
	}
	if err := ctx.Err(); err != nil {
		metrics.SearchRequests.WithLabelValues(string(mode), "error").Inc()
		return nil, err
	}

	// 階段二：TheCocktailDB
	progress(ProgressExternal)
	if a.api != nil {
		added := results.addAll(a.searchExternal(ctx, query, mode, progress))
		metrics.StageCandidates.WithLabelValues(metrics.SourceCocktailDB).Add(float64(added))
	}
	if err := ctx.Err(); err != nil {
		metrics.SearchRequests.WithLabelValues(string(mode), "error").Inc()
		return nil, err
	}

	// 階段三：只有前兩階段完全沒有結果時才呼叫生成式備援
	if len(results.items) == 0 {
		progress(ProgressGenerative)
		if p := a.generate(ctx, query, mode); p != nil && results.add(*p) {
			metrics.StageCandidates.WithLabelValues(metrics.SourceGenerative).Inc()
		}
	}

	outcome := "success"
	if len(results.items) == 0 {
		outcome = "not_found"
	}
	metrics.SearchRequests.WithLabelValues(string(mode), outcome).Inc()

	common.LogInfo("搜尋完成",
		zap.String("query", query),
		zap.String("mode", string(mode)),
		zap.Int("results", len(results.items)),
		zap.Duration("latency", time.Since(start)),
	)

	return results.items, nil
}

// searchExternal 查詢 TheCocktailDB，失敗時回傳 nil
func (a *Aggregator) searchExternal(ctx context.Context, query string, mode common.SearchMode, progress common.ProgressFunc) []common.CocktailProfile {
	if mode == common.SearchByIngredient {
		return a.searchExternalByIngredient(ctx, query, progress)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	defer cancel()

	drinks, err := a.api.SearchByName(callCtx, query)
	if err != nil {
		metrics.SourceErrors.WithLabelValues(metrics.SourceCocktailDB).Inc()
		common.LogSourceFailure(metrics.SourceCocktailDB, err, zap.String("query", query))
		return nil
	}

	profiles := make([]common.CocktailProfile, 0, len(drinks))
	for _, d := range drinks {
		profiles = append(profiles, Normalize(d))
	}
	return profiles
}

// searchExternalByIngredient 篩選後並行取回前 MaxDetailFetch 筆詳細資料，個別失敗直接略過
func (a *Aggregator) searchExternalByIngredient(ctx context.Context, query string, progress common.ProgressFunc) []common.CocktailProfile {
	filterCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	refs, err := a.api.FilterByIngredient(filterCtx, query)
	cancel()
	if err != nil {
		metrics.SourceErrors.WithLabelValues(metrics.SourceCocktailDB).Inc()
		common.LogSourceFailure(metrics.SourceCocktailDB, err, zap.String("ingredient", query))
		return nil
	}
	if len(refs) == 0 {
		return nil
	}
	if len(refs) > a.opts.MaxDetailFetch {
		refs = refs[:a.opts.MaxDetailFetch]
	}

	progress(fmt.Sprintf(ProgressDetails, len(refs)))

	// 每個 goroutine 只寫自己的位置，全部結束後才合併
	details := make([]cocktaildb.Drink, len(refs))
	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
			defer cancel()

			drink, err := a.api.LookupByID(callCtx, ref.ID)
			if err != nil {
				metrics.SourceErrors.WithLabelValues(metrics.SourceCocktailDB).Inc()
				common.LogDebug("Drink detail lookup failed",
					zap.String("id", ref.ID),
					zap.Error(err),
				)
				return nil
			}
			details[i] = drink
			return nil
		})
	}
	_ = g.Wait()

	profiles := make([]common.CocktailProfile, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		profiles = append(profiles, Normalize(d))
	}
	return profiles
}

// generate 呼叫生成式備援並補上圖片；任何失敗都回傳 nil
func (a *Aggregator) generate(ctx context.Context, query string, mode common.SearchMode) *common.CocktailProfile {
	if a.generator == nil {
		common.LogWarn("生成式備援未啟用，略過", zap.String("query", query))
		return nil
	}

	genCtx, cancel := context.WithTimeout(ctx, a.opts.GenerativeTimeout)
	defer cancel()

	profile, err := a.generator.Generate(genCtx, query, mode)
	if err != nil {
		metrics.SourceErrors.WithLabelValues(metrics.SourceGenerative).Inc()
		common.LogSourceFailure(metrics.SourceGenerative, err, zap.String("query", query))
		return nil
	}
	if profile == nil || !profile.IsComplete() {
		return nil
	}

	if a.images != nil {
		if img := a.images.Resolve(ctx, profile.Name, profile.Glassware, profile.Garnish, profile.Color); img != "" {
			withImage := profile.WithImage(img)
			profile = &withImage
		}
	}
	return profile
}
