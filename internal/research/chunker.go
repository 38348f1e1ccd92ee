package research

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`([.!?])\s+`)
)

// SplitText splits text into chunks of approximately chunkSize characters
// while preserving sentence boundaries. Sentences are accumulated greedily;
// a sentence that alone exceeds chunkSize is packed word by word instead.
// chunkSize is a soft cap: only an unsplittable single word can overflow it.
func SplitText(text string, chunkSize int) []string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentLen = 0
		}
	}

	for _, sentence := range sentences {
		// Lengths are counted in runes so multi-byte text fills chunks
		// at the same rate as ASCII.
		sentenceLen := utf8.RuneCountInString(sentence)
		switch {
		case sentenceLen > chunkSize:
			// Oversized sentence: close the running chunk and pack words.
			flush()
			chunks = append(chunks, packWords(sentence, chunkSize)...)

		case currentLen+sentenceLen > chunkSize:
			flush()
			current = []string{sentence}
			currentLen = sentenceLen

		default:
			current = append(current, sentence)
			currentLen += sentenceLen
		}
	}
	flush()

	return chunks
}

// splitSentences breaks text at sentence-ending punctuation followed by
// whitespace, keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := parts[:0]
	for _, p := range parts {
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// packWords greedily packs the words of one oversized sentence into chunks
// of at most chunkSize characters. A single word longer than chunkSize is
// emitted as-is.
func packWords(sentence string, chunkSize int) []string {
	words := strings.Fields(sentence)

	var chunks []string
	var current []string
	currentLen := 0

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word) + 1 // +1 for the joining space
		if currentLen+wordLen > chunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = nil
			currentLen = 0
		}
		current = append(current, word)
		currentLen += wordLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// ContentProcessor chunks extracted source documents into tagged Chunks.
type ContentProcessor struct {
	ChunkSize      int
	MinChunkLength int
}

// NewContentProcessor creates a processor with the given bounds.
func NewContentProcessor(chunkSize, minChunkLength int) *ContentProcessor {
	return &ContentProcessor{
		ChunkSize:      chunkSize,
		MinChunkLength: minChunkLength,
	}
}

// Process splits every document's content and attaches the document's
// title and URL to each resulting chunk. Chunks shorter than
// MinChunkLength after trimming are dropped, never padded or merged.
func (p *ContentProcessor) Process(docs []SourceDocument) []Chunk {
	var chunks []Chunk
	for _, doc := range docs {
		if doc.Content == "" {
			continue
		}
		for _, piece := range SplitText(doc.Content, p.ChunkSize) {
			if utf8.RuneCountInString(strings.TrimSpace(piece)) < p.MinChunkLength {
				continue
			}
			chunks = append(chunks, Chunk{
				Title:   doc.Title,
				Content: piece,
				URL:     doc.URL,
			})
		}
	}
	return chunks
}
