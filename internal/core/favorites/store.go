// Package favorites 保存使用者收藏的酒譜快照
package favorites

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNotFound 收藏不存在
var ErrNotFound = common.ErrFavoriteNotFound

// Store 收藏儲存，以 common.NameKey 為鍵
type Store interface {
	Put(ctx context.Context, profile common.CocktailProfile) error
	Delete(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (common.CocktailProfile, error)
	List(ctx context.Context) ([]common.CocktailProfile, error)
	Exists(ctx context.Context, name string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open 依設定開啟收藏儲存；Redis 無法連線且允許時退回記憶體儲存
func Open(ctx context.Context, cfg config.FavoritesConfig) (Store, error) {
	switch cfg.Backend {
	case config.FavoritesMemory, "":
		return NewMemoryStore(), nil
	case config.FavoritesRedis:
		store := NewRedisStore(cfg.Redis)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			if !cfg.FallbackMemory {
				return nil, fmt.Errorf("failed to connect to Redis: %w", err)
			}
			common.LogWarn("Redis 無法連線，收藏改用記憶體儲存",
				zap.String("addr", cfg.Redis.Addr),
				zap.Error(err),
			)
			return NewMemoryStore(), nil
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported favorites backend %q", cfg.Backend)
	}
}

func validName(name string) (string, error) {
	key := common.NameKey(name)
	if key == "" {
		return "", common.NewValidationError("favorite name is required")
	}
	return key, nil
}

func sortByName(profiles []common.CocktailProfile) {
	sort.Slice(profiles, func(i, j int) bool {
		return strings.ToLower(profiles[i].Name) < strings.ToLower(profiles[j].Name)
	})
}
