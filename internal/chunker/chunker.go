// Package chunker splits document content into retrieval-sized segments.
// Chunks follow sentence boundaries where possible and never exceed the
// target size.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSize is the target chunk size in runes, used when size is not
// positive.
const DefaultSize = 200

// Split divides content into chunks of at most size runes. Consecutive
// sentences are packed greedily into one chunk; a sentence that alone
// exceeds size is hard-split at size-rune boundaries. Every chunk is
// trimmed and non-empty. Identical input always yields identical output.
func Split(content string, size int) []string {
	if size <= 0 {
		size = DefaultSize
	}
	var chunks []string
	var buf strings.Builder
	bufLen := 0
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, s)
		}
		buf.Reset()
		bufLen = 0
	}
	for _, sent := range sentences(content) {
		n := utf8.RuneCountInString(sent)
		if n > size {
			flush()
			chunks = append(chunks, hardSplit(sent, size)...)
			continue
		}
		if bufLen > 0 && bufLen+1+n > size {
			flush()
		}
		if bufLen > 0 {
			buf.WriteByte(' ')
			bufLen++
		}
		buf.WriteString(sent)
		bufLen += n
	}
	flush()
	return chunks
}

// sentences splits text at '.', '?' or '!' followed by whitespace or end of
// text. Text without a terminator is a single sentence. Each sentence is
// trimmed; empty ones are dropped.
func sentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	emit := func(end int) {
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range runes {
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		emit(i + 1)
	}
	if start < len(runes) {
		emit(len(runes))
	}
	return out
}

// hardSplit cuts s into pieces of exactly size runes; the last piece holds
// the remainder. Pieces that trim to nothing are dropped.
func hardSplit(s string, size int) []string {
	runes := []rune(s)
	var parts []string
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		if p := strings.TrimSpace(string(runes[i:end])); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
