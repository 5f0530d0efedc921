package utils

import (
	"strings"
	"unicode/utf8"
)

// Chunker splits text into pieces of at most Limit runes, preferring to
// break on paragraph, line, sentence and word boundaries in that order.
type Chunker struct {
	Limit      int
	Separators []string
}

// NewChunker creates a Chunker with the given rune limit.
func NewChunker(limit int) *Chunker {
	if limit <= 0 {
		limit = 1500
	}
	return &Chunker{
		Limit:      limit,
		Separators: []string{"\n\n", "\n", ". ", "? ", "! ", "; ", ", ", " "},
	}
}

// Split returns the chunks of text. Whitespace at chunk edges is trimmed and
// empty chunks are dropped, so joining the result loses only whitespace.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= c.Limit {
		return []string{text}
	}
	return c.split(text, c.Separators)
}

func (c *Chunker) split(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= c.Limit {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}

	sepIdx := -1
	for i, sep := range separators {
		if strings.Contains(text, sep) {
			sepIdx = i
			break
		}
	}
	if sepIdx < 0 {
		return c.splitByRunes(text)
	}
	sep := separators[sepIdx]
	rest := separators[sepIdx+1:]

	var chunks []string
	var current strings.Builder
	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			chunks = append(chunks, t)
		}
		current.Reset()
	}

	parts := strings.Split(text, sep)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		// Keep sentence punctuation with the part it ended.
		piece := part
		if i < len(parts)-1 && sep != " " && sep != "\n" && sep != "\n\n" {
			piece = part + strings.TrimRight(sep, " ")
		}

		candidate := piece
		if current.Len() > 0 {
			candidate = current.String() + joiner(sep) + piece
		}
		if utf8.RuneCountInString(candidate) <= c.Limit {
			current.Reset()
			current.WriteString(candidate)
			continue
		}

		flush()
		if utf8.RuneCountInString(piece) > c.Limit {
			chunks = append(chunks, c.split(piece, rest)...)
			continue
		}
		current.WriteString(piece)
	}
	flush()

	return chunks
}

func (c *Chunker) splitByRunes(text string) []string {
	runes := []rune(text)
	var chunks []string
	for i := 0; i < len(runes); i += c.Limit {
		end := i + c.Limit
		if end > len(runes) {
			end = len(runes)
		}
		if t := strings.TrimSpace(string(runes[i:end])); t != "" {
			chunks = append(chunks, t)
		}
	}
	return chunks
}

func joiner(sep string) string {
	switch sep {
	case "\n\n", "\n":
		return sep
	default:
		return " "
	}
}
