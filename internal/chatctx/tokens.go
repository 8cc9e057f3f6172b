package chatctx

import (
	"math"

	"github.com/pkoukk/tiktoken-go"

	"github.com/briankw/theo/pkg/api"
)

// Chat messages are framed as <|start|>{role}\n{content}<|end|>; the
// tokenizer charges roughly this much per message plus a fixed trailer
// priming the assistant reply.
const (
	tokensPerMessage = 3
	tokensTrailer    = 3

	defaultCharsPerToken = 3.5
)

// TokenEstimator estimates token counts for text and chat messages. With a
// tiktoken encoding it counts exactly; otherwise it falls back to a
// chars-per-token heuristic.
type TokenEstimator struct {
	enc           *tiktoken.Tiktoken
	charsPerToken float64
}

// NewTokenEstimator returns a heuristic estimator (~3.5 chars per token).
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{charsPerToken: defaultCharsPerToken}
}

// NewTikTokenEstimator returns an estimator with exact counts for the given
// model. Loading the encoding can require a network fetch; on failure the
// heuristic estimator is returned instead.
func NewTikTokenEstimator(model string) *TokenEstimator {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return NewTokenEstimator()
	}
	return &TokenEstimator{enc: enc, charsPerToken: defaultCharsPerToken}
}

// Estimate returns the token count for a piece of text.
func (e *TokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	if e.enc != nil {
		return len(e.enc.Encode(text, nil, nil))
	}
	return int(math.Ceil(float64(len(text)) / e.charsPerToken))
}

// EstimateMessages returns the token count for a message list, including the
// per-message framing overhead.
func (e *TokenEstimator) EstimateMessages(msgs []api.Message) int {
	total := 0
	for _, m := range msgs {
		total += tokensPerMessage
		total += e.Estimate(m.Role)
		total += e.Estimate(m.Content)
		for _, tc := range m.ToolCalls {
			total += e.Estimate(tc.Function.Name)
			total += e.Estimate(tc.Function.Arguments)
		}
	}
	if total > 0 {
		total += tokensTrailer
	}
	return total
}
