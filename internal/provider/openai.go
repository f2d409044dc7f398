package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAI implements Provider against an OpenAI-compatible chat completions
// API. Cerebras, OpenAI, and most local inference servers speak this shape.
type OpenAI struct {
	name    string
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewOpenAI creates an adapter for the given OpenAI-compatible endpoint.
func NewOpenAI(name, baseURL, apiKey string, httpc *http.Client) *OpenAI {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &OpenAI{
		name:    name,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   httpc,
	}
}

// Name returns the provider identifier.
func (p *OpenAI) Name() string { return p.name }

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
	TopP                float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends the conversation to /chat/completions and returns the
// first choice's content.
func (p *OpenAI) Generate(ctx context.Context, model string, conv Conversation, opts Options) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:               model,
		Messages:            conv,
		Temperature:         opts.Temperature,
		MaxCompletionTokens: opts.MaxTokens,
		TopP:                1,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider %s: %w", p.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("provider %s: reading response: %w", p.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider %s: status %d: %s", p.name, resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("provider %s: decoding response: %w", p.name, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("provider %s: %s", p.name, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("provider %s: response contained no choices", p.name)
	}

	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
