// Package cocktaildb 為 TheCocktailDB 公開 API 的客戶端
package cocktaildb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Drink TheCocktailDB 的原始飲品紀錄，欄位皆可能為 null
type Drink map[string]any

// String 取出字串欄位，缺少或非字串時回傳空字串
func (d Drink) String(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d[key].(string)
	return s
}

// ID 飲品 ID
func (d Drink) ID() string {
	return d.String("idDrink")
}

// Name 飲品名稱
func (d Drink) Name() string {
	return d.String("strDrink")
}

// Thumb 縮圖 URL
func (d Drink) Thumb() string {
	return d.String("strDrinkThumb")
}

// DrinkRef filter.php 回傳的精簡參照
type DrinkRef struct {
	ID    string `json:"idDrink"`
	Name  string `json:"strDrink"`
	Thumb string `json:"strDrinkThumb"`
}

// drinksEnvelope 所有端點的外層格式；查無資料時 drinks 可能是 null 或 "None Found"
type drinksEnvelope struct {
	Drinks json.RawMessage `json:"drinks"`
}

// Client TheCocktailDB 客戶端
type Client struct {
	client *resty.Client
}

// NewClient 創建 TheCocktailDB 客戶端
func NewClient(cfg config.CocktailDBConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{client: client}
}

// SearchByName 依名稱搜尋，回傳完整飲品紀錄
func (c *Client) SearchByName(ctx context.Context, name string) ([]Drink, error) {
	var drinks []Drink
	if err := c.get(ctx, "/search.php", "s", name, &drinks); err != nil {
		return nil, err
	}
	return drinks, nil
}

// FilterByIngredient 依材料篩選，只回傳精簡參照
func (c *Client) FilterByIngredient(ctx context.Context, ingredient string) ([]DrinkRef, error) {
	var refs []DrinkRef
	if err := c.get(ctx, "/filter.php", "i", ingredient, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// LookupByID 依 ID 取得完整紀錄，查無資料時回傳 nil
func (c *Client) LookupByID(ctx context.Context, id string) (Drink, error) {
	var drinks []Drink
	if err := c.get(ctx, "/lookup.php", "i", id, &drinks); err != nil {
		return nil, err
	}
	if len(drinks) == 0 {
		return nil, nil
	}
	return drinks[0], nil
}

// get 發送請求並解析 drinks 陣列
func (c *Client) get(ctx context.Context, path, param, value string, out any) error {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam(param, value).
		Get(path)
	if err != nil {
		return common.ErrSourceUnavailable.Wrap(fmt.Errorf("failed to send request to TheCocktailDB: %w", err))
	}

	common.LogDebug("TheCocktailDB response",
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode() != http.StatusOK {
		return common.ErrSourceUnavailable.Wrap(fmt.Errorf("TheCocktailDB returned status %d: %s", resp.StatusCode(), common.Truncate(resp.String(), 200)))
	}

	// 免費 API 查無資料時可能回傳空 body
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil
	}

	var env drinksEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to parse TheCocktailDB response: %w", err)
	}

	// drinks 不是陣列（null、"None Found"）視為沒有結果
	raw := bytes.TrimSpace(env.Drinks)
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse drinks: %w", err)
	}
	return nil
}
