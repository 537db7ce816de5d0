package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"faqrag/internal/domain"
	"faqrag/internal/index"
	"faqrag/internal/loader"
)

// stubEmbedder maps exact chunk or question text to canned vectors.
// Unknown texts get a unit default. Fresh copies are returned because the
// pipeline normalizes in place.
type stubEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (f *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float64{1, 0}
		}
		out[i] = append([]float64(nil), vec...)
	}
	return out, nil
}

type stubGenerator struct {
	answer string
	err    error
	system string
	user   string
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, system, user string) (string, error) {
	g.calls++
	g.system, g.user = system, user
	if g.err != nil {
		return "", g.err
	}
	if g.answer == "" {
		return "stub answer", nil
	}
	return g.answer, nil
}

func writeFaq(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestService(dir string, emb *stubEmbedder, gen *stubGenerator, opts Options) *Service {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 200
	}
	return New(loader.New(dir, []string{"*.md"}), emb, gen, opts)
}

func TestAnswerBeforeBuild(t *testing.T) {
	emb, gen := &stubEmbedder{}, &stubGenerator{}
	svc := newTestService(t.TempDir(), emb, gen, Options{})

	if svc.Ready() {
		t.Error("service should not be ready before Build")
	}
	_, err := svc.Answer(context.Background(), "anything?", 0)
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
	if emb.calls != 0 || gen.calls != 0 {
		t.Error("no capability calls expected before Build")
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	svc := newTestService(t.TempDir(), &stubEmbedder{}, &stubGenerator{}, Options{})
	_, err := svc.Build(context.Background())
	if !errors.Is(err, index.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
	if svc.Ready() {
		t.Error("service must not become ready after a failed build")
	}
}

func TestAnswerValidation(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "faq.md", "Something useful here.")
	emb, gen := &stubEmbedder{}, &stubGenerator{}
	svc := newTestService(dir, emb, gen, Options{})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	baseline := emb.calls

	cases := []struct {
		name     string
		question string
		topK     int
	}{
		{"empty question", "", 0},
		{"whitespace question", "   \t", 0},
		{"question too long", strings.Repeat("q", 1001), 0},
		{"top_k too high", "fine question?", 11},
		{"top_k negative", "fine question?", -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Answer(context.Background(), tc.question, tc.topK)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if emb.calls != baseline {
				t.Error("rejected input must not reach the embedder")
			}
			if gen.calls != 0 {
				t.Error("rejected input must not reach the generator")
			}
		})
	}
}

func TestAnswerQuestionAtMaxLength(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "faq.md", "Something useful here.")
	svc := newTestService(dir, &stubEmbedder{}, &stubGenerator{}, Options{})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := svc.Answer(context.Background(), strings.Repeat("q", 1000), 0); err != nil {
		t.Errorf("1000-rune question should be accepted, got %v", err)
	}
}

func TestAnswerRanksAndCitesSources(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "faq_auth.md", "Q: How do I reset my password? A: Use the reset link.")
	writeFaq(t, dir, "faq_sso.md", "Q: How do I enable SSO? A: Go to settings.")
	emb := &stubEmbedder{vectors: map[string][]float64{
		"Q: How do I reset my password? A: Use the reset link.": {1, 0},
		"Q: How do I enable SSO? A: Go to settings.":             {0.6, 0.8},
		"How do I reset my password?":                            {1, 0},
	}}
	gen := &stubGenerator{answer: "Use the reset link (faq_auth.md)."}
	svc := newTestService(dir, emb, gen, Options{})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	result, err := svc.Answer(context.Background(), "How do I reset my password?", 2)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.Answer != "Use the reset link (faq_auth.md)." {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %v", result.Sources)
	}
	if result.Sources[0] != "faq_auth.md" || result.Sources[1] != "faq_sso.md" {
		t.Errorf("sources = %v, want best match first", result.Sources)
	}
}

func TestAnswerSourcesFollowRetrievalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "alpha.md", "Alpha information lives here.")
	writeFaq(t, dir, "zulu.md", "Zulu information lives here.")
	emb := &stubEmbedder{vectors: map[string][]float64{
		"Alpha information lives here.": {0.6, 0.8},
		"Zulu information lives here.":  {1, 0},
		"where is zulu?":                {1, 0},
	}}
	svc := newTestService(dir, emb, &stubGenerator{}, Options{})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	result, err := svc.Answer(context.Background(), "where is zulu?", 2)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	// First-seen retrieval order, not alphabetical.
	if result.Sources[0] != "zulu.md" || result.Sources[1] != "alpha.md" {
		t.Errorf("sources = %v, want [zulu.md alpha.md]", result.Sources)
	}
}

func TestAnswerDeduplicatesSources(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "long.md", "First distinct sentence right here. Second distinct sentence right here.")
	svc := newTestService(dir, &stubEmbedder{}, &stubGenerator{}, Options{ChunkSize: 40})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	result, err := svc.Answer(context.Background(), "anything?", 2)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "long.md" {
		t.Errorf("sources = %v, want the file listed once", result.Sources)
	}
}

func TestAnswerDefaultTopK(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "x.md", "Same vector one.")
	writeFaq(t, dir, "y.md", "Same vector two.")
	writeFaq(t, dir, "z.md", "Same vector three.")
	svc := newTestService(dir, &stubEmbedder{}, &stubGenerator{}, Options{TopKDefault: 2})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}

	result, err := svc.Answer(context.Background(), "anything?", 0)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	// All chunks tie, so the configured default of 2 picks the first two
	// index positions.
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources with TopKDefault=2, got %v", result.Sources)
	}
	if result.Sources[0] != "x.md" || result.Sources[1] != "y.md" {
		t.Errorf("sources = %v", result.Sources)
	}
}

func TestAnswerPrompts(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "beta.md", "Beta facts are here.")
	writeFaq(t, dir, "gamma.md", "Gamma facts are here.")
	emb := &stubEmbedder{vectors: map[string][]float64{
		"Beta facts are here.":  {0.6, 0.8},
		"Gamma facts are here.": {1, 0},
		"tell me about gamma":   {1, 0},
	}}
	gen := &stubGenerator{}
	svc := newTestService(dir, emb, gen, Options{})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := svc.Answer(context.Background(), "  tell me about gamma  ", 2); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	if !strings.Contains(gen.system, "ONLY on the provided context") {
		t.Error("system prompt missing the grounding rule")
	}
	if !strings.Contains(gen.system, "cite the source files") {
		t.Error("system prompt missing the citation rule")
	}
	gammaAt := strings.Index(gen.user, "[From gamma.md]")
	betaAt := strings.Index(gen.user, "[From beta.md]")
	if gammaAt == -1 || betaAt == -1 {
		t.Fatalf("context blocks missing from user prompt:\n%s", gen.user)
	}
	if gammaAt > betaAt {
		t.Error("context blocks not in rank order")
	}
	if !strings.Contains(gen.user, "\n\n---\n\n") {
		t.Error("context blocks not separated")
	}
	if !strings.Contains(gen.user, "Question: tell me about gamma\n") {
		t.Error("question not trimmed into the user prompt")
	}
	if !strings.Contains(gen.user, "Available source files: gamma.md, beta.md") {
		t.Error("source list missing or out of order")
	}
}

func TestAnswerGeneratorFailure(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "faq.md", "Some content here.")
	gen := &stubGenerator{err: fmt.Errorf("%w: quota exceeded", domain.ErrGeneration)}
	svc := newTestService(dir, &stubEmbedder{}, gen, Options{})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	_, err := svc.Answer(context.Background(), "ok question?", 0)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestAnswerQueryEmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "faq.md", "Some content here.")
	emb := &stubEmbedder{}
	gen := &stubGenerator{}
	svc := newTestService(dir, emb, gen, Options{})
	if _, err := svc.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	emb.err = fmt.Errorf("%w: provider down", domain.ErrEmbedding)

	_, err := svc.Answer(context.Background(), "ok question?", 0)
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Errorf("expected ErrEmbedding, got %v", err)
	}
	if gen.calls != 0 {
		t.Error("generator must not run when query embedding fails")
	}
}

func TestRebuildReplacesIndex(t *testing.T) {
	dir := t.TempDir()
	writeFaq(t, dir, "old.md", "Old content sits here.")
	emb := &stubEmbedder{vectors: map[string][]float64{
		"Old content sits here.": {0, 1},
		"New content sits here.": {1, 0},
		"query":                  {1, 0},
	}}
	svc := newTestService(dir, emb, &stubGenerator{}, Options{})

	stats, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Documents != 1 || stats.Chunks != 1 {
		t.Errorf("stats = %+v", stats)
	}

	writeFaq(t, dir, "new.md", "New content sits here.")
	stats, err = svc.Build(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if stats.Documents != 2 {
		t.Errorf("rebuild saw %d documents, want 2", stats.Documents)
	}

	result, err := svc.Answer(context.Background(), "query", 1)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.Sources[0] != "new.md" {
		t.Errorf("rebuilt index should retrieve the new document, got %v", result.Sources)
	}
}
