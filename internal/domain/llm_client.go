package domain

import "context"

// CompletionClient is the single call contract against the hosted LLM:
// send a system and user prompt, get back text. Implementations are thin,
// reentrant transport wrappers and safe to share across sessions. Every
// call site gets exactly one attempt; a failure routes to a deterministic
// fallback at the caller instead of a retry loop.
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
	Provider() string
}
