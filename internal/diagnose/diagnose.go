// Package diagnose probes combinations of API bases, header styles, and
// model names against the provider and reports which succeed. It exists to
// answer "is it my key, the endpoint, or the model name" in one run.
package diagnose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felipepmaragno/llm-zai/internal/metrics"
)

const (
	OutcomeOK          = "ok"
	OutcomeAuth        = "auth"
	OutcomeBalance     = "balance"
	OutcomeRateLimited = "rate_limited"
	OutcomeNotFound    = "not_found"
	OutcomeError       = "error"
	OutcomeNetwork     = "network"
)

// Plan is the probe matrix: every base x header style x model name
// combination is tried once.
type Plan struct {
	Bases        []string `yaml:"bases"`
	HeaderStyles []string `yaml:"header_styles"`
	Models       []string `yaml:"models"`
	Prompt       string   `yaml:"prompt"`
	MaxTokens    int      `yaml:"max_tokens"`
}

// DefaultPlan covers the endpoint and naming variants the provider has
// been observed to accept.
func DefaultPlan() Plan {
	return Plan{
		Bases: []string{
			"https://api.z.ai/api/paas/v4",
			"https://api.z.ai/api/coding/paas/v4",
			"https://open.bigmodel.cn/api/paas/v4",
		},
		HeaderStyles: []string{"bearer", "bearer-accept", "curl"},
		Models: []string{
			"glm-4.6", "GLM-4.6",
			"glm-4.5", "GLM-4.5",
			"glm-4.5-air", "GLM-4.5-Air",
		},
		Prompt:    "Say hello",
		MaxTokens: 16,
	}
}

func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}

	plan := DefaultPlan()
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	return plan, nil
}

// Result is the classified outcome of one probe.
type Result struct {
	Base        string
	HeaderStyle string
	Model       string
	Outcome     string
	Status      int
	Detail      string
}

type Runner struct {
	client *http.Client
	apiKey string
	logger *slog.Logger
}

func NewRunner(client *http.Client, apiKey string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{client: client, apiKey: apiKey, logger: logger}
}

func (r *Runner) Run(ctx context.Context, plan Plan) []Result {
	var results []Result
	for _, base := range plan.Bases {
		for _, style := range plan.HeaderStyles {
			for _, model := range plan.Models {
				res := r.probe(ctx, plan, base, style, model)
				metrics.RecordProbe(res.Outcome)
				r.logger.Info("probe finished",
					"base", res.Base,
					"header_style", res.HeaderStyle,
					"model", res.Model,
					"outcome", res.Outcome,
					"status", res.Status,
				)
				results = append(results, res)
			}
		}
	}
	return results
}

func (r *Runner) probe(ctx context.Context, plan Plan, base, style, model string) Result {
	result := Result{Base: base, HeaderStyle: style, Model: model}

	maxTokens := plan.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 16
	}
	payload, _ := json.Marshal(map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": plan.Prompt},
		},
		"max_tokens": maxTokens,
	})

	url := strings.TrimRight(base, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		result.Outcome = OutcomeError
		result.Detail = err.Error()
		return result
	}
	r.setHeaders(req, style)

	resp, err := r.client.Do(req)
	if err != nil {
		result.Outcome = OutcomeNetwork
		result.Detail = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	result.Outcome = classify(resp.StatusCode, body)
	if result.Outcome != OutcomeOK {
		result.Detail = strings.TrimSpace(string(body))
	}
	return result
}

func (r *Runner) setHeaders(req *http.Request, style string) {
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	switch style {
	case "bearer-accept":
		req.Header.Set("Accept", "application/json")
	case "curl":
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "curl/8.1.2")
	}
}

func classify(status int, body []byte) string {
	switch {
	case status >= 200 && status < 300:
		return OutcomeOK
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return OutcomeAuth
	case status == http.StatusTooManyRequests:
		lower := strings.ToLower(string(body))
		if strings.Contains(lower, "balance") || strings.Contains(lower, "recharge") {
			return OutcomeBalance
		}
		return OutcomeRateLimited
	case status == http.StatusNotFound:
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
