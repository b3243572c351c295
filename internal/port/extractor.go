package port

import (
	"context"
)

// ExtractInput carries one prompt for a semantic extraction call.
type ExtractInput struct {
	Prompt string
	// Temperature nudges later retry attempts out of a degenerate answer.
	Temperature float64
}

// ExtractOutput is the raw result of a semantic extraction call.
type ExtractOutput struct {
	RawText    string
	ModelUsed  string
	PromptUsed string
}

// SemanticExtractor abstracts the model provider behind the extraction engine.
type SemanticExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
