// Package llm is the thin client for the chat-completion collaborator.
// Conversation handling, prompting and streaming are upstream concerns;
// this client only forwards history and returns text.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/lumichat/auth-service/internal/handler"
)

// Client calls an OpenAI-compatible completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewFromEnv builds a client from LLM_BASE_URL, LLM_API_KEY and LLM_MODEL.
// Returns nil when no base URL is configured; the chat route then reports
// the collaborator as unavailable.
func NewFromEnv() *Client {
	base := os.Getenv("LLM_BASE_URL")
	if base == "" {
		return nil
	}
	return &Client{
		baseURL: base,
		apiKey:  os.Getenv("LLM_API_KEY"),
		model:   os.Getenv("LLM_MODEL"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type completionReq struct {
	Model    string                `json:"model"`
	Messages []handler.ChatMessage `json:"messages"`
}

type completionResp struct {
	Choices []struct {
		Message handler.ChatMessage `json:"message"`
	} `json:"choices"`
}

// Complete forwards the conversation and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, _ uint64, messages []handler.ChatMessage) (string, error) {
	body, err := json.Marshal(completionReq{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned HTTP %d: %s", resp.StatusCode, string(raw))
	}
	var out completionResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("upstream returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
