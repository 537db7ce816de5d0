// Package domain holds the core types shared by every layer: documents,
// chunks, retrieval results, and the capability interfaces the answer
// pipeline depends on.
package domain

// Document is a single FAQ file loaded from the corpus directory. Name is
// the base filename and identifies the document in answers.
type Document struct {
	Name    string
	Content string
}

// Chunk is a contiguous piece of one document, sized for embedding.
// Index is the 0-based position of the chunk within its source document.
type Chunk struct {
	Source string
	Index  int
	Text   string
}

// RetrievalResult pairs a chunk with its similarity score for one query.
type RetrievalResult struct {
	Chunk Chunk
	Score float64
}

// AnswerResult is the outcome of answering one question. Sources lists the
// distinct source documents of the retrieved chunks in first-seen order;
// it is empty, never nil, when nothing was retrieved.
type AnswerResult struct {
	Answer  string
	Sources []string
}
