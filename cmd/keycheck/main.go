package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/probelab/keycheck/internal/check"
	"github.com/probelab/keycheck/internal/config"
	"github.com/probelab/keycheck/internal/providerspec"
	"github.com/probelab/keycheck/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serve(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  keycheck serve [--addr <listen>] [--config <keycheck.yaml>]")
	fmt.Fprintln(os.Stderr, "  keycheck check [--provider <auto|openai|anthropic|openrouter>] [--strict] [--model <id>] [--config <keycheck.yaml>] <api-key|->")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "pass - as the key to read it from stdin")
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func serve(args []string) {
	var addr, configPath string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--addr":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--addr requires a value")
				os.Exit(1)
			}
			addr = args[i]
		case "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a value")
				os.Exit(1)
			}
			configPath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
			usage()
			os.Exit(1)
		}
	}

	cfg := loadConfig(configPath)
	if addr != "" {
		cfg.Server.Addr = addr
	}

	if err := server.New(cfg).ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
}

// checkOutput mirrors the HTTP response envelope for one-shot CLI runs.
type checkOutput struct {
	Result      check.ProviderRunResult `json:"result"`
	HealthScore int                     `json:"health_score"`
	NextActions []string                `json:"next_actions"`
	Meta        struct {
		RequestID  string `json:"request_id"`
		Timestamp  string `json:"timestamp"`
		ElapsedMS  int64  `json:"elapsed_ms"`
		StrictMode bool   `json:"strict_mode"`
	} `json:"meta"`
}

func runCheck(args []string) {
	provider := check.ProviderAuto
	var strict bool
	var model, configPath, keyArg string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--provider":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--provider requires a value")
				os.Exit(1)
			}
			provider = args[i]
		case "--strict":
			strict = true
		case "--model":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--model requires a value")
				os.Exit(1)
			}
			model = args[i]
		case "--config":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--config requires a value")
				os.Exit(1)
			}
			configPath = args[i]
		default:
			if strings.HasPrefix(args[i], "--") {
				fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[i])
				usage()
				os.Exit(1)
			}
			keyArg = args[i]
		}
	}

	key, err := resolveKey(keyArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if !strings.EqualFold(provider, check.ProviderAuto) {
		if _, ok := providerspec.CanonicalKey(provider); !ok {
			fmt.Fprintf(os.Stderr, "unknown provider: %s\n", provider)
			os.Exit(1)
		}
	}

	cfg := loadConfig(configPath)
	if strict && model != "" && !cfg.ModelAllowed(model) {
		fmt.Fprintf(os.Stderr, "model %q is not permitted by allowed_model_globs\n", model)
		os.Exit(1)
	}

	opts := []check.Option{check.WithTimeout(cfg.ProbeTimeout())}
	for name, ov := range cfg.Providers {
		if id, ok := providerspec.CanonicalKey(name); ok {
			opts = append(opts, check.WithBaseURL(id, ov.BaseURL))
		}
	}
	checker := check.New(opts...)

	fmt.Fprintf(os.Stderr, "checking key %s\n", check.KeyFingerprint(key))

	started := time.Now()
	result := checker.Run(context.Background(), provider, key, strict, model)

	var out checkOutput
	out.Result = result
	out.HealthScore = check.HealthScore(result)
	out.NextActions = check.NextActions(result)
	out.Meta.RequestID = ulid.Make().String()
	out.Meta.Timestamp = started.UTC().Format(time.RFC3339)
	out.Meta.ElapsedMS = time.Since(started).Milliseconds()
	out.Meta.StrictMode = strict

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(b))

	if result.Availability != check.Available {
		os.Exit(2)
	}
}

// resolveKey reads the key from the argument, or from stdin when "-".
func resolveKey(arg string) (string, error) {
	switch arg {
	case "":
		return "", fmt.Errorf("an api key argument is required (or - for stdin)")
	case "-":
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("read key from stdin: %w", err)
			}
			return "", fmt.Errorf("no key on stdin")
		}
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			return "", fmt.Errorf("no key on stdin")
		}
		return key, nil
	default:
		return strings.TrimSpace(arg), nil
	}
}
