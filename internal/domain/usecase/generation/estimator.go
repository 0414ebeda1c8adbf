package generation

import (
	"strings"

	genport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
)

// DefaultTokensPerWord is the price of one word of input text
const DefaultTokensPerWord = 2

// WordCountEstimator prices text by its whitespace-separated word count
type WordCountEstimator struct {
	tokensPerWord int64
}

// NewWordCountEstimator creates an estimator. A non-positive rate uses DefaultTokensPerWord.
func NewWordCountEstimator(tokensPerWord int64) genport.TokenEstimator {
	if tokensPerWord <= 0 {
		tokensPerWord = DefaultTokensPerWord
	}
	return &WordCountEstimator{tokensPerWord: tokensPerWord}
}

// Estimate returns at least one word's price so a request is never free
func (e *WordCountEstimator) Estimate(text string) int64 {
	words := int64(len(strings.Fields(text)))
	if words == 0 {
		words = 1
	}
	return words * e.tokensPerWord
}
