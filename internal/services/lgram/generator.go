// Package lgram wraps the external text-generation engine. The engine is an
// opaque upstream: it takes input words and parameters and returns generated
// text. It is never on the audit path's critical section and is always called
// with a bounded timeout.
package lgram

import (
	"context"
	"fmt"
)

// Generator is the contract of the text-generation engine.
type Generator interface {
	// GenerateText produces text seeded by inputWords: numSentences sentences
	// of roughly length words each.
	GenerateText(ctx context.Context, inputWords []string, numSentences, length int) (string, error)
	// CorrectGrammar returns a grammar-corrected version of text.
	CorrectGrammar(ctx context.Context, text string) (string, error)
}

// GenerationError is the single error surfaced for engine failures. Message
// is safe to show to the user.
type GenerationError struct {
	Op      string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UserMessage returns the human-readable message for inline display.
func (e *GenerationError) UserMessage() string {
	return e.Message
}
