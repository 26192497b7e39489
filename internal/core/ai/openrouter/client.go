package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mixologist/internal/core/ai/provider"
	"mixologist/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	providerName   = "openrouter"
)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	cfg    provider.Config
}

// ResponseFormat 回應格式
type ResponseFormat struct {
	Type string `json:"type"`
}

// Request 表示 API 請求
type Request struct {
	Messages       []provider.Message `json:"messages"`
	Model          string             `json:"model,omitempty"`
	MaxTokens      int                `json:"max_tokens,omitempty"`
	Temperature    float64            `json:"temperature,omitempty"`
	TopP           float64            `json:"top_p,omitempty"`
	Stop           []string           `json:"stop,omitempty"`
	ResponseFormat *ResponseFormat    `json:"response_format,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Usage   provider.Usage `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message provider.Message `json:"message"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, provider.ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("HTTP-Referer", "https://github.com/mixologist").
		SetHeader("X-Title", "Mixologist")

	return &Client{client: client, cfg: cfg}, nil
}

// sanitizeResponse 清理響應內容，避免把圖片資料寫進日誌
func sanitizeResponse(body []byte) string {
	s := string(body)
	if strings.Contains(s, "data:image/") || (len(s) > 100 && strings.Contains(s, "base64")) {
		return "[IMAGE_DATA_REMOVED]"
	}
	return common.Truncate(s, 500)
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := &Request{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        0.9,
		Stop:        req.Stop,
	}
	if req.JSONMode {
		body.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", body.Model),
		zap.Int("messages", len(body.Messages)),
		zap.Bool("json_mode", req.JSONMode),
	)

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		common.LogAICall(providerName, time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("OpenRouter API returned status %d: %s", resp.StatusCode(), sanitizeResponse(resp.Body()))
		common.LogAICall(providerName, time.Since(start), err)
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	content := result.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty content in OpenRouter response")
	}

	common.LogAICall(providerName, time.Since(start), nil)

	return &provider.Response{
		Content: content,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.cfg.Model
}

// GetTimeout 獲取超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.cfg.Timeout
}

// Name 後端名稱
func (c *Client) Name() string {
	return providerName
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
