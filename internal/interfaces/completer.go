package interfaces

import "context"

// Completer is a text-generation service: prompt in, reply text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
