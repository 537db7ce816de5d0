// Package index builds and queries the in-memory corpus index: every chunk
// of every document next to its unit-normalized embedding vector. An Index
// is immutable once built and safe to share across concurrent queries;
// picking up corpus changes means building a new one.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"faqrag/internal/chunker"
	"faqrag/internal/domain"
)

// ErrEmptyCorpus means chunking produced nothing to index. Use errors.Is
// to check for it.
var ErrEmptyCorpus = errors.New("no chunks in corpus")

const (
	embedBatchSize     = 64
	defaultConcurrency = 4
)

// Options configure index construction.
type Options struct {
	// ChunkSize is the target chunk size in runes.
	ChunkSize int
	// Concurrency bounds the number of in-flight embedding calls.
	Concurrency int
	// OnProgress, when set, is invoked after each embedded batch with the
	// number of chunks done so far. It may be called from multiple
	// goroutines.
	OnProgress func(done, total int)
}

// Index holds parallel chunk and vector slices; the i-th vector embeds the
// i-th chunk.
type Index struct {
	chunks   []domain.Chunk
	vectors  [][]float64
	zeroNorm int
}

// Build chunks the documents, embeds every chunk, and returns the complete
// index. It blocks until all embeddings finish; no partial index is ever
// returned. Chunk positions follow document order, then chunk order within
// each document.
func Build(ctx context.Context, embedder domain.Embedder, docs []domain.Document, opts Options) (*Index, error) {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for i, text := range chunker.Split(doc.Content, opts.ChunkSize) {
			chunks = append(chunks, domain.Chunk{Source: doc.Name, Index: i, Text: text})
		}
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	vectors := make([][]float64, len(chunks))
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		g.Go(func() error {
			texts := make([]string, end-start)
			for i := range texts {
				texts[i] = chunks[start+i].Text
			}
			vecs, err := embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(vecs), len(texts))
			}
			copy(vectors[start:end], vecs)
			if opts.OnProgress != nil {
				opts.OnProgress(int(done.Add(int64(len(texts)))), len(chunks))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := &Index{chunks: chunks, vectors: vectors}
	for i, vec := range vectors {
		if !Normalize(vec) {
			idx.zeroNorm++
			slog.Warn("zero-norm embedding left unnormalized",
				"source", chunks[i].Source, "chunk", chunks[i].Index)
		}
	}
	return idx, nil
}

// Search returns the min(topK, Len()) most similar chunks, best first.
// Vectors are unit-normalized, so the dot product is cosine similarity.
// Equal scores resolve to the lower index position, keeping results
// deterministic. topK must be positive; callers validate range.
func (idx *Index) Search(query []float64, topK int) []domain.RetrievalResult {
	scores := make([]float64, len(idx.vectors))
	for i := range idx.vectors {
		scores[i] = dot(idx.vectors[i], query)
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if scores[order[a]] == scores[order[b]] {
			return order[a] < order[b]
		}
		return scores[order[a]] > scores[order[b]]
	})
	if topK > len(order) {
		topK = len(order)
	}
	results := make([]domain.RetrievalResult, 0, topK)
	for _, i := range order[:topK] {
		results = append(results, domain.RetrievalResult{Chunk: idx.chunks[i], Score: scores[i]})
	}
	return results
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// ZeroNormCount reports how many vectors came back degenerate from the
// embedder and were left unnormalized.
func (idx *Index) ZeroNormCount() int {
	return idx.zeroNorm
}

// Normalize divides vec in place by its Euclidean norm so dot products
// against other normalized vectors equal cosine similarity. A zero-norm
// vector is left unmodified and reported with a false return.
func Normalize(vec []float64) bool {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return false
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return true
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
