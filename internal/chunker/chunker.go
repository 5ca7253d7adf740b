// Package chunker provides boundary-aware text chunking sized for
// embedding and retrieval.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/docvault-labs/docvault/internal/core/ports/driven"
)

// DefaultTargetSize is the default chunk length ceiling in characters.
const DefaultTargetSize = 800

// DefaultOverlap is the default number of overlapping characters.
// Non-overlapping chunking is lossless under concatenation.
const DefaultOverlap = 0

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits text on natural boundaries (paragraph, then sentence),
// falling back to a hard character cut only when a single sentence
// exceeds the target size.
type Chunker struct {
	targetSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetSize sets the chunk length ceiling in characters.
func WithTargetSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.targetSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetSize: DefaultTargetSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for new content in each chunk
	if c.overlap >= c.targetSize {
		c.overlap = c.targetSize / 4
	}

	return c
}

// TargetSize returns the configured chunk length ceiling.
func (c *Chunker) TargetSize() int {
	return c.targetSize
}

// Split returns the chunks of text in original order. Text that trims
// to empty yields zero chunks. Text shorter than the target size yields
// exactly one chunk.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= c.targetSize {
		return []string{text}
	}

	units := c.boundaryUnits(text)
	return c.pack(units)
}

// boundaryUnits breaks text into ordered segments that each fit within
// the target size, preferring paragraph boundaries, then sentence
// boundaries, then a hard rune cut.
func (c *Chunker) boundaryUnits(text string) []string {
	var units []string

	for _, para := range splitParagraphs(text) {
		if utf8.RuneCountInString(para) <= c.targetSize {
			units = append(units, para)
			continue
		}

		for _, sentence := range splitSentences(para) {
			if utf8.RuneCountInString(sentence) <= c.targetSize {
				units = append(units, sentence)
				continue
			}
			units = append(units, hardCut(sentence, c.targetSize)...)
		}
	}

	return units
}

// pack greedily joins units into chunks up to the target size.
func (c *Chunker) pack(units []string) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen == 0 {
			return
		}
		chunks = append(chunks, cur.String())
		cur.Reset()
		curLen = 0
	}

	for _, unit := range units {
		unitLen := utf8.RuneCountInString(unit)
		sep := 0
		if curLen > 0 {
			sep = 1
		}

		if curLen+sep+unitLen > c.targetSize {
			prev := cur.String()
			flush()
			if c.overlap > 0 && prev != "" {
				// The tail plus separator plus unit must still fit
				// within the target size.
				n := c.overlap
				if room := c.targetSize - unitLen - 1; n > room {
					n = room
				}
				if n > 0 {
					tail := runeTail(prev, n)
					cur.WriteString(tail)
					curLen = utf8.RuneCountInString(tail)
				}
			}
		}

		if curLen > 0 {
			cur.WriteString(" ")
			curLen++
		}
		cur.WriteString(unit)
		curLen += unitLen
	}

	flush()
	return chunks
}

// splitParagraphs splits text on blank lines, trimming each paragraph.
func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

// splitSentences splits a paragraph after common sentence terminators.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// hardCut slices text into rune-safe pieces of at most size runes.
func hardCut(text string, size int) []string {
	runes := []rune(text)
	pieces := make([]string, 0, (len(runes)/size)+1)

	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}

	return pieces
}

// runeTail returns the last n runes of text.
func runeTail(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
