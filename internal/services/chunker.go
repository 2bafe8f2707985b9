package services

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultChunkRunes   = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits guidance documents into overlapping pieces for embedding.
// Sizes are counted in runes.
type Chunker struct {
	MaxRunes int
	Overlap  int
}

func NewChunker(maxRunes, overlap int) *Chunker {
	if maxRunes <= 0 {
		maxRunes = DefaultChunkRunes
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxRunes {
		overlap = maxRunes / 4
	}
	return &Chunker{MaxRunes: maxRunes, Overlap: overlap}
}

// Chunk packs paragraphs (blank-line separated) into chunks. A paragraph that
// is too long on its own is packed sentence by sentence. Each new chunk
// starts with the tail of the previous one, cut at a word boundary, when it
// fits. A single sentence longer than MaxRunes becomes its own chunk.
func (c *Chunker) Chunk(text string) []string {
	var units []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		para = strings.Join(strings.Fields(para), " ")
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) > c.MaxRunes {
			units = append(units, splitSentences(para)...)
		} else {
			units = append(units, para)
		}
	}

	var (
		chunks  []string
		current string
	)
	for _, unit := range units {
		if current != "" && utf8.RuneCountInString(current)+1+utf8.RuneCountInString(unit) > c.MaxRunes {
			chunks = append(chunks, current)
			current = overlapTail(current, c.Overlap)
			if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(unit) > c.MaxRunes {
				current = ""
			}
		}
		if current == "" {
			current = unit
		} else {
			current += " " + unit
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentences keeps the terminating punctuation with each sentence.
func splitSentences(text string) []string {
	var (
		out   []string
		start int
	)
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) && text[next] != ' ' {
			continue
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			out = append(out, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func overlapTail(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	tail := string(runes[len(runes)-n:])
	if i := strings.IndexByte(tail, ' '); i >= 0 {
		tail = tail[i+1:]
	}
	return tail
}
