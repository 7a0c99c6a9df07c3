package diagnose

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestRun_ClassifiesOutcomes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model string `json:"model"`
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)

		switch body.Model {
		case "good-model":
			io.WriteString(w, `{"choices":[{"message":{"content":"hi"}}]}`)
		case "bad-key-model":
			w.WriteHeader(http.StatusUnauthorized)
		case "broke-model":
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error":"Insufficient balance, please recharge"}`)
		case "throttled-model":
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error":"too many requests"}`)
		case "missing-model":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	plan := Plan{
		Bases:        []string{server.URL},
		HeaderStyles: []string{"bearer"},
		Models: []string{
			"good-model", "bad-key-model", "broke-model",
			"throttled-model", "missing-model", "broken-model",
		},
		Prompt: "Say hello",
	}

	runner := NewRunner(server.Client(), "sk-test", nil)
	results := runner.Run(context.Background(), plan)

	if len(results) != 6 {
		t.Fatalf("Run() returned %d results, want 6", len(results))
	}

	want := map[string]string{
		"good-model":      OutcomeOK,
		"bad-key-model":   OutcomeAuth,
		"broke-model":     OutcomeBalance,
		"throttled-model": OutcomeRateLimited,
		"missing-model":   OutcomeNotFound,
		"broken-model":    OutcomeError,
	}
	for _, res := range results {
		if res.Outcome != want[res.Model] {
			t.Errorf("model %s outcome = %s, want %s", res.Model, res.Outcome, want[res.Model])
		}
	}
}

func TestRun_NetworkOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	plan := Plan{
		Bases:        []string{server.URL},
		HeaderStyles: []string{"bearer"},
		Models:       []string{"glm-4.6"},
		Prompt:       "hello",
	}

	runner := NewRunner(&http.Client{}, "sk-test", nil)
	results := runner.Run(context.Background(), plan)

	if len(results) != 1 {
		t.Fatalf("Run() returned %d results, want 1", len(results))
	}
	if results[0].Outcome != OutcomeNetwork {
		t.Errorf("outcome = %s, want %s", results[0].Outcome, OutcomeNetwork)
	}
}

func TestRun_HeaderStyles(t *testing.T) {
	type captured struct {
		auth      string
		userAgent string
	}
	var got []captured

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, captured{
			auth:      r.Header.Get("Authorization"),
			userAgent: r.Header.Get("User-Agent"),
		})
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer server.Close()

	plan := Plan{
		Bases:        []string{server.URL},
		HeaderStyles: []string{"bearer", "curl"},
		Models:       []string{"glm-4.6"},
		Prompt:       "hello",
	}

	runner := NewRunner(server.Client(), "sk-test", nil)
	runner.Run(context.Background(), plan)

	if len(got) != 2 {
		t.Fatalf("server saw %d requests, want 2", len(got))
	}
	for _, c := range got {
		if c.auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want Bearer sk-test", c.auth)
		}
	}
	if got[1].userAgent != "curl/8.1.2" {
		t.Errorf("curl style User-Agent = %q", got[1].userAgent)
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	content := []byte("bases:\n  - https://example.com/v4\nmodels:\n  - glm-4.6\nprompt: ping\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	plan, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan() error = %v", err)
	}
	if len(plan.Bases) != 1 || plan.Bases[0] != "https://example.com/v4" {
		t.Errorf("Bases = %v", plan.Bases)
	}
	if plan.Prompt != "ping" {
		t.Errorf("Prompt = %q, want ping", plan.Prompt)
	}
	// Unspecified fields keep the defaults.
	if len(plan.HeaderStyles) == 0 {
		t.Error("HeaderStyles should fall back to defaults")
	}
}

func TestLoadPlan_MissingFile(t *testing.T) {
	if _, err := LoadPlan(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadPlan() should fail for a missing file")
	}
}
