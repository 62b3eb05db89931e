package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dotlovesyou/dot/pkg/config"
)

const (
	defaultOpenRouterModel = "openai/gpt-5.2"
	defaultHTTPTimeout     = 300 * time.Second
)

// OpenRouterProvider talks to an OpenAI-compatible chat completions API.
type OpenRouterProvider struct {
	apiBase    string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ Generator = (*OpenRouterProvider)(nil)

// NewOpenRouter builds the provider from config. The API key is
// required; base and model fall back to OpenRouter defaults.
func NewOpenRouter(cfg *config.Config) (*OpenRouterProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	apiKey := strings.TrimSpace(cfg.Providers.OpenRouter.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required (set providers.openrouter.api_key or DOT_PROVIDERS_OPENROUTER_API_KEY)")
	}

	// GetAPIBase owns the default base URL.
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.GetAPIBase()), "/")
	model := strings.TrimSpace(cfg.Providers.OpenRouter.Model)
	if model == "" {
		model = defaultOpenRouterModel
	}

	return &OpenRouterProvider{
		apiBase:    apiBase,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}, nil
}

type chatCompletionsRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *OpenRouterProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if p == nil {
		return "", fmt.Errorf("provider not initialized")
	}

	jsonData, err := json.Marshal(chatCompletionsRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal openrouter request: %w", err)
	}

	endpoint := p.apiBase + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create openrouter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send openrouter request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openrouter response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("openrouter API request failed: status=%d error=%s", resp.StatusCode, extractAPIError(body))
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse openrouter response: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("openrouter API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openrouter response contained no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func extractAPIError(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}
