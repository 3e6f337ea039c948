package ports

import (
	"context"

	"datalens/domain/analysis"
)

// LLMClient is a minimal chat-completion provider.
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error)
}

// Narrator turns structured findings into prose. Name identifies the
// implementation in report output.
type Narrator interface {
	Name() string
	Summarize(ctx context.Context, findings analysis.Findings) (string, error)
}
