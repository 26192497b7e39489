// Package gemini 以 Google Generative AI 實作生成式後端
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mixologist/internal/core/ai/provider"
	"mixologist/internal/pkg/common"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-1.5-flash"
)

// Client Gemini 客戶端
type Client struct {
	client *genai.Client
	cfg    provider.Config
}

// NewClient 創建 Gemini 客戶端
func NewClient(ctx context.Context, cfg provider.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, provider.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, cfg: cfg}, nil
}

// Generate 生成回應；system 訊息轉為 SystemInstruction
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := c.client.GenerativeModel(c.cfg.Model)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if len(req.Stop) > 0 {
		model.StopSequences = req.Stop
	}
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	var parts []genai.Part
	for _, m := range req.Messages {
		if m.Role == provider.RoleSystem {
			model.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(m.Content)},
			}
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(parts) == 0 {
		return nil, errors.New("gemini request has no user content")
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	common.LogAICall(providerName, time.Since(start), err)
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("gemini API call failed: %w", err))
	}

	return convertResponse(resp)
}

func convertResponse(resp *genai.GenerateContentResponse) (*provider.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("no candidates in Gemini response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return nil, errors.New("empty content in Gemini response")
	}

	result := &provider.Response{Content: sb.String()}
	if resp.UsageMetadata != nil {
		result.Usage = provider.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return result, nil
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

// Close 釋放 Gemini 客戶端
func (c *Client) Close() error {
	return c.client.Close()
}
