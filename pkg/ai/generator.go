package ai

import "context"

// Generator produces a text reply for a user prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
