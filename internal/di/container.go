package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	catalogadapter "trail-orchestrator/internal/adapter/catalog"
	"trail-orchestrator/internal/adapter/chat_http"
	"trail-orchestrator/internal/adapter/llm"
	"trail-orchestrator/internal/adapter/repository"
	"trail-orchestrator/internal/domain"
	"trail-orchestrator/internal/infra/config"
	"trail-orchestrator/internal/infra/httpclient"
	"trail-orchestrator/internal/usecase"
	"trail-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	Catalog  *domain.Catalog
	Sessions domain.SessionStore
	LLM      domain.CompletionClient

	ChatUsecase usecase.ChatUsecase

	// Archiver is nil when turn archiving is disabled.
	Archiver *worker.Archiver
	Handler  *chat_http.Handler
}

// NewApplicationComponents wires all dependencies from config and the
// optional database pool. pool is nil when turn archiving is disabled.
func NewApplicationComponents(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	catalog, err := catalogadapter.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load trail catalog: %w", err)
	}
	log.Info("catalog loaded",
		slog.String("path", cfg.CatalogPath),
		slog.Int("trails", catalog.Len()),
		slog.Int("mountains", len(catalog.MountainNames())))

	completionClient, err := newCompletionClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("llm client ready", slog.String("provider", completionClient.Provider()))

	sessions, err := repository.NewSessionStore(cfg.SessionCapacity, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	classifier := newClassifier(cfg, completionClient, log)
	translator := usecase.NewTranslatePreferencesUsecase(completionClient, usecase.NewPlanValidator(), log)
	composer := usecase.NewComposeResponseUsecase(completionClient, catalog, log)

	var (
		archiver *worker.Archiver
		sink     domain.TurnSink
	)
	if cfg.ArchiveEnabled && pool != nil {
		archiveRepo := repository.NewTurnArchiveRepository(pool)
		if err := archiveRepo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		archiver = worker.NewArchiver(archiveRepo, 0, log)
		sink = archiver
	}

	chatUsecase := usecase.NewChatUsecase(catalog, classifier, translator, composer, sink, cfg.TopK, log)

	handler := chat_http.NewHandler(chatUsecase, sessions, catalog, func() bool {
		if pool == nil {
			return true
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})

	return &ApplicationComponents{
		Catalog:     catalog,
		Sessions:    sessions,
		LLM:         completionClient,
		ChatUsecase: chatUsecase,
		Archiver:    archiver,
		Handler:     handler,
	}, nil
}

func newCompletionClient(ctx context.Context, cfg *config.Config) (domain.CompletionClient, error) {
	switch cfg.LLMProvider {
	case "ollama":
		httpClient := httpclient.NewPooledClient(120 * time.Second)
		return llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, httpClient, cfg.LLMRatePerSecond), nil
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMRatePerSecond)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

func newClassifier(cfg *config.Config, completionClient domain.CompletionClient, log *slog.Logger) usecase.Classifier {
	if cfg.ClassifierStrategy == "model" {
		return usecase.NewModelClassifier(completionClient, log)
	}
	return usecase.NewRuleClassifier()
}
