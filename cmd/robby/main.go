package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/LuckyCoder5/Robby-chatbot/internal/cache"
	"github.com/LuckyCoder5/Robby-chatbot/internal/cachestore"
	cachefile "github.com/LuckyCoder5/Robby-chatbot/internal/cachestore/file"
	cachesqlite "github.com/LuckyCoder5/Robby-chatbot/internal/cachestore/sqlite"
	"github.com/LuckyCoder5/Robby-chatbot/internal/chunker"
	"github.com/LuckyCoder5/Robby-chatbot/internal/config"
	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
	embmock "github.com/LuckyCoder5/Robby-chatbot/internal/embedding/mock"
	embopenai "github.com/LuckyCoder5/Robby-chatbot/internal/embedding/openai"
	"github.com/LuckyCoder5/Robby-chatbot/internal/index"
	llmopenai "github.com/LuckyCoder5/Robby-chatbot/internal/llm/openai"
	"github.com/LuckyCoder5/Robby-chatbot/internal/loader"
	"github.com/LuckyCoder5/Robby-chatbot/internal/logger"
	"github.com/LuckyCoder5/Robby-chatbot/internal/session"
	"github.com/LuckyCoder5/Robby-chatbot/internal/summarizer"
	"github.com/LuckyCoder5/Robby-chatbot/internal/tui"
)

const buildWorkers = 4

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "robby:", friendly(err))
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default: ./robby.yaml, then ~/.config/robby/config.yaml)")
	offline := flag.Bool("offline", false, "use the deterministic local embedder instead of the OpenAI API")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <document.pdf>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)

	// Missing .env is fine; keys may come from the environment directly.
	_ = godotenv.Load()

	var cfg *config.AppConfig
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	defer log.Sync() //nolint:errcheck

	content, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	documentName := filepath.Base(pdfPath)

	embedder, err := buildEmbedder(cfg, *offline)
	if err != nil {
		return err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close() //nolint:errcheck

	ctx := context.Background()

	pdfLoader := loader.NewPDFLoader()
	pages, err := pdfLoader.Load(ctx, content, documentName)
	if err != nil {
		return err
	}

	split := chunker.NewPageChunker(cfg.Chunker.MaxChars, *cfg.Chunker.OverlapSentences)
	key := cache.DocumentKey(content)
	builder := index.NewBuilder(embedder, embedderBatchSize(cfg), buildWorkers, log)

	idxCache := cache.New(store, log)
	idx, err := idxCache.GetOrBuild(ctx, key, func(ctx context.Context) (*index.Index, error) {
		segments := split.Split(key, pages)
		return builder.Build(ctx, key, segments)
	})
	if err != nil {
		return err
	}
	if idx.EmbedderName() != embedder.Name() {
		// A cached index built by a different embedder cannot answer queries
		// from this one. Rebuild under the current embedder.
		log.Warn("cached index embedder mismatch, rebuilding",
			zap.String("cached", idx.EmbedderName()),
			zap.String("configured", embedder.Name()))
		if err := idxCache.Invalidate(key); err != nil {
			return fmt.Errorf("drop stale index: %w", err)
		}
		idx, err = idxCache.GetOrBuild(ctx, key, func(ctx context.Context) (*index.Index, error) {
			segments := split.Split(key, pages)
			return builder.Build(ctx, key, segments)
		})
		if err != nil {
			return err
		}
	}

	completer, err := llmopenai.NewClient(llmopenai.Config{
		BaseURL:     cfg.Chat.BaseURL,
		APIKeyEnv:   cfg.Chat.APIKeyEnv,
		Model:       cfg.Chat.Model,
		Temperature: *cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
		Timeout:     time.Duration(cfg.Chat.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return err
	}

	summary := summarize(pages)
	sess := session.New(idx, embedder, completer, documentName, summary, cfg.Retrieval.TopK, log)

	log.Info("session ready",
		zap.String("document", documentName),
		zap.String("key", key),
		zap.Int("segments", idx.Len()),
		zap.String("embedder", embedder.Name()))

	p := tea.NewProgram(tui.New(sess), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func buildEmbedder(cfg *config.AppConfig, offline bool) (domain.Embedder, error) {
	if offline || cfg.Embedder.Type == "mock" {
		return embmock.NewEmbedder(0), nil
	}
	oc := cfg.Embedder.OpenAI
	return embopenai.NewClient(embopenai.Config{
		BaseURL:   oc.BaseURL,
		APIKeyEnv: oc.APIKeyEnv,
		Model:     oc.Model,
		Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
		BatchSize: oc.BatchSize,
	})
}

func buildStore(cfg *config.AppConfig) (cachestore.Store, error) {
	switch cfg.Cache.Type {
	case "sqlite":
		return cachesqlite.NewStore(cfg.Cache.Path)
	default:
		return cachefile.NewStore(cfg.Cache.Dir)
	}
}

func embedderBatchSize(cfg *config.AppConfig) int {
	if cfg.Embedder.OpenAI != nil && cfg.Embedder.OpenAI.BatchSize > 0 {
		return cfg.Embedder.OpenAI.BatchSize
	}
	return 32
}

func summarize(pages []domain.Page) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.Text)
		b.WriteString(" ")
	}
	summary, err := summarizer.NewFrequency().Summarize(b.String(), 3)
	if err != nil {
		return ""
	}
	return summary
}

// friendly maps well-known failures to actionable messages.
func friendly(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthenticationMissing):
		return "no API key found; set it in .env or the environment"
	case errors.Is(err, domain.ErrUnreadableDocument):
		return "the document could not be parsed as a PDF: " + err.Error()
	case errors.Is(err, domain.ErrEmptyDocument):
		return "the document contains no extractable text"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "the embedding service is unavailable: " + err.Error()
	default:
		return err.Error()
	}
}
