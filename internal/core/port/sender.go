package port

import (
	"context"
	"pbpbot/internal/core/domain"
)

// Responder is the raw response surface of a single interaction. It does not track state; the
// interaction state machine decides which of these calls are legal.
type Responder interface {
	// Defer acknowledges the interaction with a placeholder.
	Defer(ctx context.Context, ephemeral bool) error
	// Reply sends a complete response to an interaction that was not acknowledged yet.
	Reply(ctx context.Context, reply domain.Reply) error
	// Edit replaces the content of the acknowledged response.
	Edit(ctx context.Context, reply domain.Reply) error
}
