// Package llm 提供 OpenAI 兼容的对话生成客户端，
// 可对接 LM Studio 等本地推理服务
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"secure-agent-api/internal/config"
	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/pkg/metrics"
)

// Client OpenAI 兼容的 chat completions 客户端
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient 创建生成客户端
func NewClient(cfg *config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Generate 仅以给定的上下文文档回答问题。
// 调用方保证 contextDocs 已经过授权过滤，这里不做任何权限判断。
func (c *Client) Generate(ctx context.Context, question string, contextDocs []entity.Candidate) (string, error) {
	start := time.Now()
	status := "ok"
	defer func() {
		metrics.LLMCallDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())
		metrics.LLMCallTotal.WithLabelValues(c.model, status).Inc()
	}()

	answer, err := c.chat(ctx, buildPrompt(question, contextDocs))
	if err != nil {
		status = "error"
		return "", err
	}
	return answer, nil
}

// buildPrompt 组装上下文问答提示词
func buildPrompt(question string, contextDocs []entity.Candidate) string {
	var b strings.Builder
	b.WriteString("Context information is below.\n")
	b.WriteString("---------------------\n")
	for _, d := range contextDocs {
		fmt.Fprintf(&b, "[%s] %s\n%s\n\n", d.Category, d.Title, d.Excerpt)
	}
	b.WriteString("---------------------\n")
	b.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	fmt.Fprintf(&b, "Query: %s\nAnswer: ", question)
	return b.String()
}

func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(&chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("chat request failed: status=%d: %s", httpResp.StatusCode, resp.Error.Message)
		}
		return "", fmt.Errorf("chat request failed: status=%d", httpResp.StatusCode)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
