package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is a single turn in a chat completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// invalidResponseContent is surfaced as assistant output when the provider
// answers 200 OK but the payload carries no choices.
const invalidResponseContent = "model returned an invalid response structure"

type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
}

type Config struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func NewClient(cfg Config) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete sends a chat completion request and returns the first choice's
// content. A 200 response with no choices yields a fixed placeholder rather
// than an error so a malformed provider reply degrades instead of failing
// the whole pipeline.
func (c *Client) Complete(ctx context.Context, apiKey, systemPrompt string, messages []Message) (string, error) {
	payload := chatRequest{
		Model:       c.model,
		Messages:    append([]Message{{Role: "system", Content: systemPrompt}}, messages...),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("completion API returned %d: %s", resp.StatusCode, detail)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return invalidResponseContent, nil
	}

	return parsed.Choices[0].Message.Content, nil
}
