// Package openai 以 OpenAI Chat Completions 與 Images API 實作生成式後端
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mixologist/internal/core/ai/provider"
	"mixologist/internal/pkg/common"

	"github.com/sashabaranov/go-openai"
)

const providerName = "openai"

// Client OpenAI 客戶端
type Client struct {
	client     *openai.Client
	cfg        provider.Config
	imageModel string
}

// NewClient 創建 OpenAI 客戶端；imageModel 為空時使用 DALL-E 3
func NewClient(cfg provider.Config, imageModel string) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, provider.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if imageModel == "" {
		imageModel = openai.CreateImageModelDallE3
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		cfg:        cfg,
		imageModel: imageModel,
	}, nil
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Stop:        req.Stop,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	common.LogAICall(providerName, time.Since(start), err)
	if err != nil {
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("calling OpenAI: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("empty content in OpenAI response")
	}

	return &provider.Response{
		Content: content,
		Usage: provider.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// GenerateImage 產生單張 1024x1024 圖片，回傳 base64 data URI
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	common.LogAICall(providerName+"-image", time.Since(start), err)
	if err != nil {
		return "", common.ErrAIServiceError.Wrap(fmt.Errorf("calling OpenAI images: %w", err))
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", errors.New("no image data in OpenAI response")
	}

	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
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

// Close go-openai 沒有需要釋放的資源
func (c *Client) Close() error {
	return nil
}
