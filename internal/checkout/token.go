package checkout

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator produces one idempotency token per submission attempt.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Tokens generates time-sortable UUIDv7 tokens, so journal entries
// sort by creation time even when compared as strings.
// Stateless and safe for concurrent use.
type UUIDv7Tokens struct{}

// Generate returns a new hyphenated UUIDv7.
func (UUIDv7Tokens) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedTokens returns predetermined tokens in order, for tests and golden
// traces. Safe for concurrent use.
type FixedTokens struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokens returns a generator yielding tokens in order.
func NewFixedTokens(tokens ...string) *FixedTokens {
	return &FixedTokens{tokens: tokens}
}

// Generate returns the next token. It panics once all tokens are used, so a
// test that submits more often than it planned fails loudly.
func (g *FixedTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic(fmt.Sprintf("FixedTokens: all %d tokens used", len(g.tokens)))
	}
	t := g.tokens[g.idx]
	g.idx++
	return t
}
