package rag

import (
	"fmt"
	"strings"

	"faqrag/internal/domain"
)

const systemPrompt = `You are a helpful assistant that answers questions based ONLY on the provided context.

Rules:
1. Answer the question using ONLY information from the context below.
2. If the context doesn't contain enough information, say so.
3. Always cite the source files in your answer (mention them by filename).
4. Be concise and direct.
5. If multiple sources are relevant, mention all of them.`

// userPrompt lays out the retrieved context, the question, and the source
// list. Chunks appear in rank order; models weight earlier context more
// heavily.
func userPrompt(question string, results []domain.RetrievalResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[From %s]\n%s", r.Chunk.Source, r.Chunk.Text)
	}
	return fmt.Sprintf(`Context:
%s

Question: %s

Available source files: %s

Please answer the question and cite the relevant source file(s).`,
		strings.Join(parts, "\n\n---\n\n"),
		question,
		strings.Join(distinctSources(results), ", "))
}

// distinctSources returns each source document once, in first-seen order
// across the ranked results. The slice is never nil.
func distinctSources(results []domain.RetrievalResult) []string {
	sources := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if _, ok := seen[r.Chunk.Source]; ok {
			continue
		}
		seen[r.Chunk.Source] = struct{}{}
		sources = append(sources, r.Chunk.Source)
	}
	return sources
}
