// Command docforge prepares documents for vector search: extraction,
// cleaning, chunking, metadata and indexing, driven from the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docforge/docforge/internal/adapters/driven/concepts/lexical"
	"github.com/docforge/docforge/internal/adapters/driven/config/file"
	"github.com/docforge/docforge/internal/adapters/driven/embedding/ollama"
	"github.com/docforge/docforge/internal/adapters/driven/embedding/openai"
	"github.com/docforge/docforge/internal/adapters/driven/extraction"
	"github.com/docforge/docforge/internal/adapters/driven/extraction/docx"
	"github.com/docforge/docforge/internal/adapters/driven/extraction/pdf"
	"github.com/docforge/docforge/internal/adapters/driven/extraction/plaintext"
	"github.com/docforge/docforge/internal/adapters/driven/storage/memory"
	"github.com/docforge/docforge/internal/adapters/driven/storage/sqlite"
	"github.com/docforge/docforge/internal/adapters/driven/vectorstore/chromem"
	"github.com/docforge/docforge/internal/adapters/driving/cli"
	"github.com/docforge/docforge/internal/core/ports/driven"
	"github.com/docforge/docforge/internal/core/services"
	"github.com/docforge/docforge/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Environment overrides from a local .env file; absence is fine.
	_ = godotenv.Load()

	log := logging.New(logging.DefaultLogger()).WithName("docforge")

	configStore, err := file.NewConfigStore(os.Getenv("DOCFORGE_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("config store: %w", err)
	}
	defaults, err := configStore.Defaults()
	if err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}

	store, closeStore, err := newDocumentStore()
	if err != nil {
		return fmt.Errorf("document store: %w", err)
	}
	defer closeStore()

	embedder, err := newEmbedder()
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}
	defer embedder.Close()

	vectors, err := chromem.NewStore(chromem.Config{
		Path:       os.Getenv("DOCFORGE_VECTOR_PATH"),
		Collection: os.Getenv("DOCFORGE_COLLECTION"),
	})
	if err != nil {
		return fmt.Errorf("vector store: %w", err)
	}
	defer vectors.Close()

	registry := extraction.NewRegistry(plaintext.New(), pdf.New(), docx.New())

	pipeline := services.NewLifecycle(
		store,
		registry,
		lexical.New(),
		embedder,
		vectors,
		services.Options{
			Workers:  envInt("DOCFORGE_WORKERS"),
			Defaults: defaults,
		},
		log,
	)
	defer pipeline.Close()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Pipeline:    pipeline,
		ConfigStore: configStore,
		Registry:    registry,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cli.Execute(ctx)
}

// newDocumentStore picks the persistence backend. Set DOCFORGE_DB to a
// SQLite path (or "sqlite" for the default location); anything else runs
// in memory.
func newDocumentStore() (driven.DocumentStore, func(), error) {
	dbPath := os.Getenv("DOCFORGE_DB")
	if dbPath == "" || dbPath == "memory" {
		return memory.NewDocumentStore(), func() {}, nil
	}
	if dbPath == "sqlite" {
		dbPath = ""
	}
	store, err := sqlite.NewDocumentStore(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

// newEmbedder picks the embedding provider. OpenAI when an API key is
// present, local Ollama otherwise.
func newEmbedder() (driven.EmbeddingService, error) {
	provider := os.Getenv("DOCFORGE_EMBEDDING_PROVIDER")
	if provider == "" {
		if os.Getenv("OPENAI_API_KEY") != "" {
			provider = "openai"
		} else {
			provider = "ollama"
		}
	}

	switch provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   os.Getenv("DOCFORGE_EMBEDDING_MODEL"),
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: os.Getenv("OLLAMA_BASE_URL"),
			Model:   os.Getenv("DOCFORGE_EMBEDDING_MODEL"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
