package cli

import (
	"context"
	"fmt"
	"log/slog"

	"faqrag/internal/config"
	"faqrag/internal/loader"
	"faqrag/internal/openai"
	"faqrag/internal/rag"
)

// buildService assembles the pipeline from config and builds the index.
// It blocks until the whole corpus is embedded.
func buildService(ctx context.Context, cfg *config.AppConfig, showProgress bool) (*rag.Service, error) {
	apiKey, err := config.ResolveAPIKey()
	if err != nil {
		return nil, err
	}

	client := openai.New(apiKey, cfg.OpenAI.EmbedModel, cfg.OpenAI.LLMModel)

	progress := newIndexProgress(showProgress)
	defer progress.finish()

	svc := rag.New(
		loader.New(cfg.Corpus.Dir, cfg.Corpus.Include),
		client,
		client,
		rag.Options{
			ChunkSize:   cfg.Corpus.ChunkSize,
			TopKDefault: cfg.Retrieval.TopKDefault,
			OnProgress:  progress.report,
		},
	)

	slog.Info("computing embeddings", "model", cfg.OpenAI.EmbedModel)
	if _, err := svc.Build(ctx); err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}
	return svc, nil
}
