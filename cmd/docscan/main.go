package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/docscan/internal/extraction"
	"github.com/zombor/docscan/internal/record"
	"github.com/zombor/docscan/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env is fine, flags and the environment still apply
	_ = godotenv.Load()

	fs := ff.NewFlagSet("docscan")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		policyName    = fs.StringLong("policy", string(record.PolicyCoercive), "Activity policy: 'coercive' or 'strict'")
		targetName    = fs.StringLong("target", string(scanning.TargetClaim), "Record to extract from file arguments: 'claim' or 'menu'")
		ocrType       = fs.StringLong("ocr", "textract", "OCR reader: 'textract', 'tesseract', 'gemini' or 'ollama'")
		llmType       = fs.StringLong("llm", "gemini", "Language model: 'gemini' or 'ollama'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llama3.2-vision, qwen2-vl)")
		awsRegion     = fs.StringLong("aws-region", "us-east-1", "AWS region for Textract")
		awsEndpoint   = fs.StringLong("aws-endpoint", "", "Textract endpoint override (or set AWS_ENDPOINT_URL env var)")
		textractForms = fs.BoolLong("textract-forms", "Detect key/value pairs with Textract AnalyzeDocument")
		tesseractLang = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		cacheType     = fs.StringLong("cache", "bolt", "OCR cache: 'bolt', 'dir' or 'none'")
		cachePath     = fs.StringLong("cache-path", "docscan.db", "Cache database file or directory")
		cacheTTL      = fs.DurationLong("cache-ttl", 0, "Expire cached OCR results after this long (0 keeps them)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		logFormat     = fs.StringLong("log-format", "text", "Log format: 'text' or 'json'")
		logLevel      = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		_             = fs.StringLong("config", "", "Config file (optional)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("DOCSCAN"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithConfigAllowMissingFile(),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	if err := setupLogging(os.Stderr, *logFormat, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	policy, err := record.ParsePolicy(*policyName)
	if err != nil {
		slog.Error("Invalid policy", "error", err)
		os.Exit(1)
	}
	target, err := scanning.ParseTarget(*targetName)
	if err != nil {
		slog.Error("Invalid target", "error", err)
		os.Exit(1)
	}

	// Initialize the language model
	var extractor scanning.Extractor
	var gemini *scanning.Gemini
	var ollama *scanning.Ollama
	switch *llmType {
	case "gemini":
		gemini, err = newGemini(*geminiKey, *geminiModel)
		extractor = gemini
	case "ollama":
		slog.Info("Initializing Ollama...", "url", *ollamaURL, "model", *ollamaModel)
		ollama, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		extractor = ollama
	default:
		slog.Error("Invalid llm type", "type", *llmType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize language model", "error", err)
		os.Exit(1)
	}

	// Initialize the OCR reader, sharing the model client when it can read images too
	var reader scanning.TextReader
	switch *ocrType {
	case "textract":
		endpoint := *awsEndpoint
		if endpoint == "" {
			endpoint = os.Getenv("AWS_ENDPOINT_URL")
		}
		slog.Info("Initializing Textract...", "region", *awsRegion, "endpoint", endpoint, "forms", *textractForms)
		reader, err = scanning.NewTextract(context.Background(), scanning.TextractConfig{
			Region:   *awsRegion,
			Endpoint: endpoint,
			Forms:    *textractForms,
		})
	case "tesseract":
		slog.Info("Initializing Tesseract...", "lang", *tesseractLang)
		reader, err = scanning.NewTesseract("", *tesseractLang)
	case "gemini":
		if gemini == nil {
			gemini, err = newGemini(*geminiKey, *geminiModel)
			if err == nil {
				defer gemini.Close()
			}
		}
		reader = gemini
	case "ollama":
		if ollama == nil {
			ollama, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		}
		reader = ollama
	default:
		slog.Error("Invalid ocr type", "type", *ocrType, "valid", "textract, tesseract, gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		slog.Error("Failed to initialize OCR reader", "error", err)
		os.Exit(1)
	}

	// Initialize cache
	cache, err := openCache(*cacheType, *cachePath, *cacheTTL)
	if err != nil {
		slog.Error("Failed to initialize cache", "error", err)
		os.Exit(1)
	}

	// Initialize service
	service := extraction.NewService(reader, extractor, cache, extraction.Config{
		Policy:   policy,
		CacheTTL: *cacheTTL,
	})
	defer service.Close()

	// File arguments are scanned once and printed instead of serving HTTP
	if files := fs.GetArgs(); len(files) > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		failed, err := scanFiles(ctx, service, target, files, os.Stdout)
		if err != nil {
			slog.Error("Scan failed", "error", err)
			service.Close()
			os.Exit(1)
		}
		if failed {
			service.Close()
			os.Exit(2)
		}
		return
	}

	// Initialize server
	basicAuth := extraction.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := extraction.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version, "policy", policy)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

func newGemini(apiKey, model string) (*scanning.Gemini, error) {
	// Get Gemini API key from flag or environment
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
	}
	slog.Info("Initializing Gemini...", "model", model)
	return scanning.NewGemini(apiKey, model)
}

// openCache builds the OCR cache named by kind. Expired bolt entries are
// pruned on startup.
func openCache(kind, path string, ttl time.Duration) (extraction.Cache, error) {
	switch kind {
	case "bolt":
		slog.Info("Initializing cache database...", "path", path)
		cache, err := extraction.NewBoltCache(path)
		if err != nil {
			return nil, err
		}
		if ttl > 0 {
			removed, err := cache.Prune(time.Now().Add(-ttl))
			if err != nil {
				cache.Close()
				return nil, fmt.Errorf("pruning cache: %w", err)
			}
			slog.Info("Pruned cache", "removed", removed)
		}
		return cache, nil
	case "dir":
		slog.Info("Initializing cache directory...", "path", path)
		return extraction.NewDirCache(path)
	case "none":
		return extraction.NopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q: want bolt, dir or none", kind)
	}
}

// setupLogging installs the default slog logger
func setupLogging(w io.Writer, format, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format %q: want text or json", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
