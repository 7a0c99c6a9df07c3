package zai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/felipepmaragno/llm-zai/internal/httputil"
	"github.com/felipepmaragno/llm-zai/internal/metrics"
	"github.com/felipepmaragno/llm-zai/internal/secrets"
	"github.com/felipepmaragno/llm-zai/internal/telemetry"
)

const DefaultAPIBase = "https://api.z.ai/api/paas/v4"

const maxBodyBytes = 4 << 20

// ClientConfig carries the knobs the adapter is parameterized by: the API
// base, the model-name transform, and any extra headers, plus the secret
// store used to resolve the credential.
type ClientConfig struct {
	APIBase   string
	Transform Transform
	Headers   map[string]string
	Secrets   secrets.Store
	KeyAlias  string
	Timeout   time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client executes chat completions against one Z.ai endpoint. It holds no
// mutable state; concurrent calls are safe without synchronization.
type Client struct {
	apiBase   string
	transform Transform
	headers   map[string]string
	secrets   secrets.Store
	keyAlias  string
	client    *http.Client
	logger    *slog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	apiBase := strings.TrimRight(cfg.APIBase, "/")
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	transform := cfg.Transform
	if transform == nil {
		transform = TransformUpper
	}
	keyAlias := cfg.KeyAlias
	if keyAlias == "" {
		keyAlias = "zai"
	}
	store := cfg.Secrets
	if store == nil {
		store = secrets.NewAliasStore()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = httputil.ClientWithTimeout(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiBase:   apiBase,
		transform: transform,
		headers:   cfg.Headers,
		secrets:   store,
		keyAlias:  keyAlias,
		client:    client,
		logger:    logger,
	}
}

// Usage is the token accounting reported by the provider, zero-valued when
// absent.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Result is one completed round trip. ReasoningFallback is set when the
// primary content field was empty and Content was taken from the
// provider's reasoning_content field instead; hosts that must not surface
// chain-of-thought text can check it.
type Result struct {
	Content           string
	Usage             Usage
	ReasoningFallback bool
	Model             string
	RequestID         string
	Raw               json.RawMessage
}

// AsyncResult is the single value delivered by CompleteAsync.
type AsyncResult struct {
	Result *Result
	Err    error
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int          `json:"index"`
	FinishReason string       `json:"finish_reason"`
	Message      *chatMessage `json:"message,omitempty"`
}

type chatMessage struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete performs a single blocking chat completion: validate options,
// build messages, resolve the credential, POST once, classify the outcome.
// No retry is attempted.
func (c *Client) Complete(ctx context.Context, modelID string, prompt Prompt, conversation *Conversation, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, requestError("invalid options: %v", err)
	}

	providerModel := c.transform(modelID)
	requestID := uuid.New().String()

	ctx, span := telemetry.StartSpan(ctx, "zai.complete")
	defer span.End()
	telemetry.AddRequestAttributes(span, modelID, providerModel, requestID)

	// Resolve the credential before any network I/O.
	apiKey, err := c.secrets.GetSecret(ctx, c.keyAlias)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrRequestFailed, err)
		telemetry.AddErrorAttribute(span, err)
		return nil, err
	}

	body := chatRequest{
		Model:       providerModel,
		Messages:    BuildMessages(prompt, conversation),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, requestError("marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, requestError("create request: %v", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		metrics.RecordRequest(modelID, "network_error", time.Since(start).Seconds())
		err = networkError(err)
		telemetry.AddErrorAttribute(span, err)
		return nil, err
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody := readLimited(resp.Body)
		metrics.RecordRequest(modelID, fmt.Sprintf("http_%d", resp.StatusCode), duration.Seconds())
		err = classifyStatus(resp.StatusCode, errBody)
		telemetry.AddErrorAttribute(span, err)
		return nil, err
	}

	raw := readLimited(resp.Body)

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		metrics.RecordRequest(modelID, "decode_error", duration.Seconds())
		err = requestError("decode response: %v", err)
		telemetry.AddErrorAttribute(span, err)
		return nil, err
	}

	result := &Result{
		Model:     parsed.Model,
		RequestID: requestID,
		Raw:       raw,
	}
	if result.Model == "" {
		result.Model = providerModel
	}

	if len(parsed.Choices) > 0 && parsed.Choices[0].Message != nil {
		msg := parsed.Choices[0].Message
		result.Content = msg.Content
		if result.Content == "" && msg.ReasoningContent != "" {
			result.Content = msg.ReasoningContent
			result.ReasoningFallback = true
		}
	}

	if parsed.Usage != nil {
		result.Usage = Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		}
	}

	metrics.RecordRequest(modelID, "ok", duration.Seconds())
	metrics.RecordTokens(modelID, result.Usage.InputTokens, result.Usage.OutputTokens)
	telemetry.AddTokenAttributes(span, result.Usage.InputTokens, result.Usage.OutputTokens)

	c.logger.Debug("completion finished",
		"model", modelID,
		"provider_model", providerModel,
		"request_id", requestID,
		"duration_ms", duration.Milliseconds(),
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
		"reasoning_fallback", result.ReasoningFallback,
	)

	return result, nil
}

// readLimited drains a response body with a cap so a misbehaving upstream
// cannot exhaust memory.
func readLimited(r io.Reader) []byte {
	data, _ := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	return data
}

// CompleteAsync runs Complete on a separate goroutine and delivers exactly
// one result on the returned channel. The channel is buffered, so the
// result is never lost if the caller is slow to receive. History replay is
// identical to the blocking path.
func (c *Client) CompleteAsync(ctx context.Context, modelID string, prompt Prompt, conversation *Conversation, opts Options) <-chan AsyncResult {
	out := make(chan AsyncResult, 1)
	go func() {
		defer close(out)
		result, err := c.Complete(ctx, modelID, prompt, conversation, opts)
		out <- AsyncResult{Result: result, Err: err}
	}()
	return out
}
