// Package rag wires loading, chunking, embedding, retrieval and generation
// into a single question-answering pipeline.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"faqrag/internal/domain"
	"faqrag/internal/index"
	"faqrag/internal/loader"
)

// Validation bounds for Answer.
const (
	MaxQuestionRunes = 1000
	MinTopK          = 1
	MaxTopK          = 10

	// DefaultTopK is used when Options leave TopKDefault unset.
	DefaultTopK = 4
)

// Use errors.Is to check for these.
var (
	// ErrNotReady means Answer ran before a successful Build. That is a
	// caller contract violation, not a transient condition.
	ErrNotReady = errors.New("index not built")
	// ErrInvalidInput wraps rejected question or top-k values.
	ErrInvalidInput = errors.New("invalid input")
)

// NoAnswer is returned when retrieval produces nothing to ground an
// answer on.
const NoAnswer = "No information available to answer this question."

// Options configure a Service.
type Options struct {
	// ChunkSize is the target chunk size in runes.
	ChunkSize int
	// TopKDefault is substituted when Answer gets topK == 0.
	TopKDefault int
	// Concurrency bounds embedding calls in flight during Build.
	Concurrency int
	// OnProgress, when set, reports indexing progress during Build.
	OnProgress func(done, total int)
}

// BuildStats summarizes one index build.
type BuildStats struct {
	Documents int
	Chunks    int
	ZeroNorm  int
}

// Service owns the index lifecycle and answers questions against it. It
// starts unready; the first successful Build makes it ready. A Service is
// safe for concurrent use.
type Service struct {
	loader    *loader.Loader
	embedder  domain.Embedder
	generator domain.Generator
	opts      Options
	idx       atomic.Pointer[index.Index]
}

// New assembles a Service from its collaborators.
func New(l *loader.Loader, e domain.Embedder, g domain.Generator, opts Options) *Service {
	if opts.TopKDefault < MinTopK || opts.TopKDefault > MaxTopK {
		opts.TopKDefault = DefaultTopK
	}
	return &Service{loader: l, embedder: e, generator: g, opts: opts}
}

// Build loads the corpus, chunks and embeds it, and publishes the
// resulting index. It blocks until every chunk is embedded. Calling Build
// again replaces the index atomically; queries running against the old
// snapshot are unaffected.
func (s *Service) Build(ctx context.Context) (BuildStats, error) {
	slog.Info("loading faqs", "dir", s.loader.Dir())
	docs, err := s.loader.Load()
	if err != nil {
		return BuildStats{}, err
	}
	idx, err := index.Build(ctx, s.embedder, docs, index.Options{
		ChunkSize:   s.opts.ChunkSize,
		Concurrency: s.opts.Concurrency,
		OnProgress:  s.opts.OnProgress,
	})
	if err != nil {
		return BuildStats{}, err
	}
	s.idx.Store(idx)
	stats := BuildStats{Documents: len(docs), Chunks: idx.Len(), ZeroNorm: idx.ZeroNormCount()}
	slog.Info("corpus indexed", "documents", stats.Documents, "chunks", stats.Chunks)
	return stats, nil
}

// Ready reports whether a build has completed.
func (s *Service) Ready() bool {
	return s.idx.Load() != nil
}

// Answer embeds the question, retrieves the topK most similar chunks, and
// asks the generator for a grounded reply. topK == 0 selects the
// configured default; any other value must lie in [MinTopK, MaxTopK].
// Sources always come from the retrieved chunks, never from the generated
// text.
func (s *Service) Answer(ctx context.Context, question string, topK int) (domain.AnswerResult, error) {
	idx := s.idx.Load()
	if idx == nil {
		return domain.AnswerResult{}, ErrNotReady
	}
	q := strings.TrimSpace(question)
	if q == "" {
		return domain.AnswerResult{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(q) > MaxQuestionRunes {
		return domain.AnswerResult{}, fmt.Errorf("%w: question exceeds %d characters", ErrInvalidInput, MaxQuestionRunes)
	}
	if topK == 0 {
		topK = s.opts.TopKDefault
	}
	if topK < MinTopK || topK > MaxTopK {
		return domain.AnswerResult{}, fmt.Errorf("%w: top_k must be between %d and %d", ErrInvalidInput, MinTopK, MaxTopK)
	}

	vecs, err := s.embedder.Embed(ctx, []string{q})
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if len(vecs) != 1 {
		return domain.AnswerResult{}, fmt.Errorf("%w: got %d vectors for one query", domain.ErrEmbedding, len(vecs))
	}
	qvec := vecs[0]
	if !index.Normalize(qvec) {
		slog.Warn("zero-norm query embedding left unnormalized")
	}

	results := idx.Search(qvec, topK)
	if len(results) == 0 {
		return domain.AnswerResult{Answer: NoAnswer, Sources: []string{}}, nil
	}

	answer, err := s.generator.Generate(ctx, systemPrompt, userPrompt(q, results))
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return domain.AnswerResult{Answer: answer, Sources: distinctSources(results)}, nil
}
