package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pallasite/prompt-forge/promptgen"
)

// OllamaClient talks to a local Ollama server over its native HTTP API
// (/api/generate and /api/chat, non-streaming).
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOllama returns a client for the given base URL (default
// http://localhost:11434) and model. timeout bounds each request; zero means
// 60 seconds.
func NewOllama(baseURL, model string, timeout time.Duration) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

type requestOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options requestOptions `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  requestOptions  `json:"options"`
}

// Generate calls /api/generate and returns the raw response text. An empty
// response is returned as-is; the caller's retry loop decides what to do.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts promptgen.GenOptions) (string, error) {
	body, err := c.post(ctx, "/api/generate", generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: requestOptions{Temperature: opts.Temperature, NumPredict: opts.MaxTokens},
	})
	if err != nil {
		return "", err
	}
	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("ollama generate: decode response: %w", err)
	}
	return out.Response, nil
}

// Chat calls /api/chat with a system and user message.
func (c *OllamaClient) Chat(ctx context.Context, system, user string, opts promptgen.GenOptions) (string, error) {
	return c.chat(ctx, system, user, nil, opts)
}

// ChatStructured is Chat with a JSON schema passed as Ollama's format field,
// constraining the reply to schema-valid JSON.
func (c *OllamaClient) ChatStructured(ctx context.Context, system, user string, format json.RawMessage, opts promptgen.GenOptions) (string, error) {
	return c.chat(ctx, system, user, format, opts)
}

func (c *OllamaClient) chat(ctx context.Context, system, user string, format json.RawMessage, opts promptgen.GenOptions) (string, error) {
	body, err := c.post(ctx, "/api/chat", chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  false,
		Format:  format,
		Options: requestOptions{Temperature: opts.Temperature, NumPredict: opts.MaxTokens},
	})
	if err != nil {
		return "", err
	}
	return parseChatResponse(body)
}

// parseChatResponse accepts the documented chat reply shapes and fails closed
// on anything else: a single message object, a messages list (last entry
// wins), or a bare response field.
func parseChatResponse(body []byte) (string, error) {
	var out struct {
		Message  *chatMessage  `json:"message"`
		Messages []chatMessage `json:"messages"`
		Response *string       `json:"response"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("ollama chat: decode response: %w", err)
	}
	switch {
	case out.Message != nil:
		return out.Message.Content, nil
	case len(out.Messages) > 0:
		return out.Messages[len(out.Messages)-1].Content, nil
	case out.Response != nil:
		return *out.Response, nil
	}
	return "", &ServiceError{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       "unrecognized chat response shape: " + truncateBody(body),
	}
}

func (c *OllamaClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	url := c.baseURL + path

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UnavailableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}

func truncateBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if runes := []rune(s); len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return s
}
