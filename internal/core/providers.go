package core

import "context"

// Completer is an opaque text-completion backend.
type Completer interface {
	Complete(ctx context.Context, history []ChatMessage, system string) (string, error)
}

// StreamCompleter additionally supports incremental delivery. onChunk
// receives text fragments as they arrive; the full accumulated text is
// returned only after a clean end-of-stream. A mid-stream failure
// returns an error and no text.
type StreamCompleter interface {
	Completer
	CompleteStream(ctx context.Context, history []ChatMessage, system string, onChunk func(string)) (string, error)
}
