package tokens

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used for prompt budgeting regardless of the backing model.
const DefaultEncoding = "cl100k_base"

// Encoder counts and truncates prompt text in model tokens
type Encoder interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}

// TiktokenEncoder implements Encoder using tiktoken-go
type TiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEncoder creates a new tiktoken encoder
func NewTiktokenEncoder(encodingName string) (*TiktokenEncoder, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding %s: %w", encodingName, err)
	}
	return &TiktokenEncoder{encoding: encoding}, nil
}

// Count returns the number of tokens in text
func (e *TiktokenEncoder) Count(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}

// Truncate keeps the first maxTokens tokens of text
func (e *TiktokenEncoder) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	toks := e.encoding.Encode(text, nil, nil)
	if len(toks) <= maxTokens {
		return text
	}
	return e.encoding.Decode(toks[:maxTokens])
}

// EstimateEncoder approximates tokens as four bytes each
type EstimateEncoder struct{}

// NewEstimateEncoder creates a character-based encoder
func NewEstimateEncoder() *EstimateEncoder {
	return &EstimateEncoder{}
}

// Count returns the estimated number of tokens in text
func (e *EstimateEncoder) Count(text string) int {
	count := len(text) / 4
	if count < 1 && len(text) > 0 {
		count = 1
	}
	return count
}

// Truncate cuts text to roughly maxTokens tokens on a rune boundary
func (e *EstimateEncoder) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	limit := maxTokens * 4
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}

// New returns a tiktoken encoder for encodingName, or the estimate encoder
// when the encoding cannot be loaded (tiktoken fetches BPE ranks on first use).
func New(encodingName string) Encoder {
	enc, err := NewTiktokenEncoder(encodingName)
	if err != nil {
		slog.Warn("tiktoken unavailable, using estimate encoder", "encoding", encodingName, "error", err)
		return NewEstimateEncoder()
	}
	return enc
}

// Budget splits a model context window between prompt and completion.
type Budget struct {
	ContextWindow int
	Completion    int
	Template      int
}

// DefaultBudget matches the Ollama options used for scoring prompts.
func DefaultBudget() Budget {
	return Budget{ContextWindow: 2048, Completion: 256, Template: 256}
}

// Available returns the number of tokens left for user supplied text.
func (b Budget) Available() int {
	n := b.ContextWindow - b.Completion - b.Template
	if n < 0 {
		return 0
	}
	return n
}
