package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const defaultRedisKey = "mixologist:favorites"

// RedisStore 以 Redis hash 保存收藏，field 為名稱鍵，value 為 JSON 快照
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore 創建 Redis 收藏儲存
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg.Key)
}

// NewRedisStoreWithClient 使用既有的 Redis 客戶端
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

// Put 設置收藏
func (s *RedisStore) Put(ctx context.Context, profile common.CocktailProfile) error {
	field, err := validName(profile.Name)
	if err != nil {
		return err
	}

	// 序列化快照
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal favorite: %w", err)
	}

	if err := s.client.HSet(ctx, s.key, field, data).Err(); err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	return nil
}

// Delete 移除收藏，不存在時不視為錯誤
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	field, err := validName(name)
	if err != nil {
		return err
	}
	if err := s.client.HDel(ctx, s.key, field).Err(); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

// Get 獲取收藏
func (s *RedisStore) Get(ctx context.Context, name string) (common.CocktailProfile, error) {
	data, err := s.client.HGet(ctx, s.key, common.NameKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return common.CocktailProfile{}, ErrNotFound
		}
		return common.CocktailProfile{}, fmt.Errorf("failed to get favorite: %w", err)
	}

	var profile common.CocktailProfile
	if err := common.ParseJSONBytes(data, &profile); err != nil {
		return common.CocktailProfile{}, fmt.Errorf("failed to unmarshal favorite: %w", err)
	}
	return profile, nil
}

// List 依名稱排序列出全部收藏；損壞的紀錄略過
func (s *RedisStore) List(ctx context.Context) ([]common.CocktailProfile, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	out := make([]common.CocktailProfile, 0, len(values))
	for field, raw := range values {
		var profile common.CocktailProfile
		if err := common.ParseJSON(raw, &profile); err != nil {
			common.LogWarn("收藏資料損壞，略過", zap.String("field", field), zap.Error(err))
			continue
		}
		out = append(out, profile)
	}

	sortByName(out)
	return out, nil
}

// Exists 是否已收藏
func (s *RedisStore) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := s.client.HExists(ctx, s.key, common.NameKey(name)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return ok, nil
}

// Ping 測試連接
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
