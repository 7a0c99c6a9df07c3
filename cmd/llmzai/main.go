package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/felipepmaragno/llm-zai/internal/config"
	"github.com/felipepmaragno/llm-zai/internal/diagnose"
	"github.com/felipepmaragno/llm-zai/internal/httputil"
	"github.com/felipepmaragno/llm-zai/internal/secrets"
	"github.com/felipepmaragno/llm-zai/internal/telemetry"
	"github.com/felipepmaragno/llm-zai/zai"
)

const usage = `Usage: llmzai <command> [flags]

Commands:
  prompt    run a chat completion
  models    list the registered model catalog
  diagnose  probe endpoint/header/model combinations
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := telemetry.Init(ctx, "llm-zai", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	switch os.Args[1] {
	case "prompt":
		err = runPrompt(ctx, cfg, os.Args[2:])
	case "models":
		err = runModels()
	case "diagnose":
		err = runDiagnose(ctx, cfg, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runPrompt(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("prompt", flag.ExitOnError)
	model := fs.String("m", "zai-glm-4.6", "model ID or alias")
	system := fs.String("s", "", "system prompt")
	temperature := fs.Float64("t", -1, "temperature (0.0 to 2.0)")
	maxTokens := fs.Int("x", 0, "maximum tokens to generate")
	topP := fs.Float64("p", -1, "nucleus sampling parameter (0.0 to 1.0)")
	key := fs.String("k", "", "explicit API key, overriding the environment")
	useAsync := fs.Bool("async", false, "use the asynchronous call path")
	showUsage := fs.Bool("u", false, "print token usage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	if text == "" {
		return fmt.Errorf("prompt text required")
	}

	descriptor, ok := zai.LookupModel(*model)
	if !ok {
		return fmt.Errorf("unknown model %q, see 'llmzai models'", *model)
	}

	store, err := buildStore(ctx, cfg, *key)
	if err != nil {
		return err
	}

	var setters []zai.OptionSetter
	if *temperature >= 0 {
		setters = append(setters, zai.WithTemperature(*temperature))
	}
	if *maxTokens > 0 {
		setters = append(setters, zai.WithMaxTokens(*maxTokens))
	}
	if *topP >= 0 {
		setters = append(setters, zai.WithTopP(*topP))
	}
	opts, err := zai.NewOptions(setters...)
	if err != nil {
		return err
	}

	client := zai.NewClient(zai.ClientConfig{
		APIBase:  cfg.APIBase,
		Secrets:  store,
		KeyAlias: cfg.KeyAlias,
		Timeout:  cfg.Timeout,
	})

	prompt := zai.Prompt{System: *system, Text: text}

	var result *zai.Result
	if *useAsync {
		res := <-client.CompleteAsync(ctx, descriptor.ID, prompt, nil, opts)
		result, err = res.Result, res.Err
	} else {
		result, err = client.Complete(ctx, descriptor.ID, prompt, nil, opts)
	}
	if err != nil {
		return err
	}

	fmt.Println(result.Content)
	if result.ReasoningFallback {
		fmt.Fprintln(os.Stderr, "note: answer taken from reasoning_content")
	}
	if *showUsage {
		fmt.Fprintf(os.Stderr, "tokens: input=%d output=%d total=%d\n",
			result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens)
	}
	return nil
}

func runModels() error {
	for _, d := range zai.Register() {
		flags := make([]string, 0, 3)
		if d.SupportsVision {
			flags = append(flags, "vision")
		}
		if d.SupportsStreaming {
			flags = append(flags, "streaming")
		}
		if d.SupportsTools {
			flags = append(flags, "tools")
		}
		capabilities := strings.Join(flags, ",")
		if capabilities == "" {
			capabilities = "-"
		}
		fmt.Printf("%-18s provider=%-12s aliases=%-28s caps=%-10s max_tokens=%d\n",
			d.ID, zai.TransformUpper(d.ID), strings.Join(d.Aliases, ","), capabilities, d.DefaultMaxTokens)
	}
	return nil
}

func runDiagnose(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("diagnose", flag.ExitOnError)
	planPath := fs.String("plan", "", "YAML probe plan (defaults to the built-in matrix)")
	key := fs.String("k", "", "explicit API key, overriding the environment")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := buildStore(ctx, cfg, *key)
	if err != nil {
		return err
	}
	apiKey, err := store.GetSecret(ctx, cfg.KeyAlias)
	if err != nil {
		return err
	}

	plan := diagnose.DefaultPlan()
	if *planPath != "" {
		plan, err = diagnose.LoadPlan(*planPath)
		if err != nil {
			return err
		}
	}

	runner := diagnose.NewRunner(httputil.ClientWithTimeout(cfg.Timeout), apiKey, slog.Default())
	results := runner.Run(ctx, plan)

	working := 0
	for _, res := range results {
		if res.Outcome == diagnose.OutcomeOK {
			working++
			fmt.Printf("OK   %s model=%s headers=%s\n", res.Base, res.Model, res.HeaderStyle)
		}
	}
	fmt.Printf("%d/%d probes succeeded\n", working, len(results))
	return nil
}

// buildStore selects the credential backend: the alias/env convention by
// default, AWS Secrets Manager when configured.
func buildStore(ctx context.Context, cfg *config.Config, explicitKey string) (secrets.Store, error) {
	if cfg.SecretBackend == "aws" {
		if cfg.SecretName == "" {
			return nil, fmt.Errorf("SECRET_NAME required with SECRET_BACKEND=aws")
		}
		aws, err := secrets.NewAWSStore(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return namedStore{inner: aws, name: cfg.SecretName}, nil
	}

	store := secrets.NewAliasStore()
	if explicitKey != "" {
		store.SetKey(cfg.KeyAlias, explicitKey)
	}
	return store, nil
}

// namedStore resolves every alias to one fixed secret name, so the AWS
// backend can serve the adapter's alias-based lookups.
type namedStore struct {
	inner secrets.Store
	name  string
}

func (s namedStore) GetSecret(ctx context.Context, _ string) (string, error) {
	return s.inner.GetSecret(ctx, s.name)
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
