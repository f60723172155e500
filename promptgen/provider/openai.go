package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pallasite/prompt-forge/promptgen"
)

// OpenAICompatClient serves the same Client contract through any
// OpenAI-compatible chat-completions endpoint: Ollama's /v1, LM Studio,
// vLLM, or the hosted API itself.
type OpenAICompatClient struct {
	client *openai.Client
	model  string
}

// NewOpenAICompat builds a client for the given base URL and model. baseURL
// empty targets the hosted API; apiKey may be empty for local servers that
// ignore authentication.
func NewOpenAICompat(baseURL, apiKey, model string) *OpenAICompatClient {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}
	client := openai.NewClient(opts...)
	return &OpenAICompatClient{client: &client, model: model}
}

// Generate maps the completion-style call onto a single-user-message chat,
// which is all OpenAI-compatible servers expose.
func (c *OpenAICompatClient) Generate(ctx context.Context, prompt string, opts promptgen.GenOptions) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	}, nil, opts)
}

// Chat sends a system and user message pair.
func (c *OpenAICompatClient) Chat(ctx context.Context, system, user string, opts promptgen.GenOptions) (string, error) {
	return c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}, nil, opts)
}

// ChatStructured constrains the reply with a strict json_schema response
// format.
func (c *OpenAICompatClient) ChatStructured(ctx context.Context, system, user string, format json.RawMessage, opts promptgen.GenOptions) (string, error) {
	var schema map[string]any
	if err := json.Unmarshal(format, &schema); err != nil {
		return "", fmt.Errorf("openai-compat: invalid schema: %w", err)
	}
	rf := &openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   "Response",
				Schema: schema,
				Strict: openai.Bool(true),
			},
		},
	}
	return c.complete(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}, rf, opts)
}

func (c *OpenAICompatClient) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, format *openai.ChatCompletionNewParamsResponseFormatUnion, opts promptgen.GenOptions) (string, error) {
	if c.client == nil {
		return "", errors.New("openai-compat: client is nil")
	}
	if c.model == "" {
		return "", errors.New("openai-compat: model is empty")
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if format != nil {
		params.ResponseFormat = *format
	}

	resp, err := callWithRetry(ctx, c.client, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Status: "empty choices", Body: "chat completion returned no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

func callWithRetry(ctx context.Context, client *openai.Client, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Chat.Completions.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(rateLimitWaitTimes[attempt])
					continue
				}
			} else if isServerError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(serverErrorWaitTimes[attempt])
					continue
				}
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("failed after %d attempts due to API issues", maxRetries)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
