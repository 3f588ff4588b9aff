package service

import (
	"context"
	"errors"
	"fmt"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type State int

const (
	Fresh State = iota
	Deferred
	Replied
	Finalized
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Deferred:
		return "deferred"
	case Replied:
		return "replied"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further application level response is possible.
func (s State) Terminal() bool {
	return s == Replied || s == Finalized
}

// Interaction tracks the response lifecycle of one invocation. An interaction receives at most one
// terminal response: the state moves to Replied or Finalized before the transport call is made, so a
// failed terminal send is never retried by the fallback path.
type Interaction struct {
	inv       *domain.Invocation
	responder port.Responder

	mu       sync.Mutex
	state    State
	terminal int

	l zerolog.Logger
}

func NewInteraction(inv *domain.Invocation, responder port.Responder) *Interaction {
	return &Interaction{
		inv:       inv,
		responder: responder,
		l: log.With().
			Str("interactionId", inv.ID).
			Str("traceId", inv.TraceID).
			Str("command", inv.CommandName).
			Logger(),
	}
}

func (i *Interaction) Invocation() *domain.Invocation {
	return i.inv
}

func (i *Interaction) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// TerminalSends is the number of terminal responses attempted so far.
func (i *Interaction) TerminalSends() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.terminal
}

func (i *Interaction) String(name string) (string, bool) {
	opt, ok := i.inv.Options[name]
	if !ok || opt.Type != domain.OptionString {
		return "", false
	}
	return opt.String, true
}

func (i *Interaction) Int(name string) (int64, bool) {
	opt, ok := i.inv.Options[name]
	if !ok || opt.Type != domain.OptionInteger {
		return 0, false
	}
	return opt.Int, true
}

func (i *Interaction) User(name string) (*domain.User, bool) {
	opt, ok := i.inv.Options[name]
	if !ok || opt.Type != domain.OptionUser || opt.User == nil {
		return nil, false
	}
	return opt.User, true
}

func (i *Interaction) Defer(ctx context.Context, ephemeral bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != Fresh {
		return fmt.Errorf("defer from %s: %w", i.state, domain.ErrInvalidTransition)
	}

	if err := i.responder.Defer(ctx, ephemeral); err != nil {
		return fmt.Errorf("failed to defer interaction: %w", err)
	}

	i.state = Deferred
	return nil
}

func (i *Interaction) Reply(ctx context.Context, reply domain.Reply) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != Fresh {
		return fmt.Errorf("reply from %s: %w", i.state, domain.ErrInvalidTransition)
	}

	return i.reply(ctx, reply)
}

func (i *Interaction) EditFinal(ctx context.Context, reply domain.Reply) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != Deferred {
		return fmt.Errorf("edit from %s: %w", i.state, domain.ErrInvalidTransition)
	}

	return i.editFinal(ctx, reply)
}

func (i *Interaction) Progress(ctx context.Context, reply domain.Reply) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != Deferred {
		i.l.Debug().Str("state", i.state.String()).Msg("skipping progress update")
		return
	}

	if err := i.responder.Edit(ctx, reply); err != nil {
		i.l.Warn().Err(err).Msg("failed to send progress update")
	}
}

func (i *Interaction) Finish(ctx context.Context, reply domain.Reply) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch i.state {
	case Fresh:
		return i.reply(ctx, reply)
	case Deferred:
		return i.editFinal(ctx, reply)
	default:
		return fmt.Errorf("finish from %s: %w", i.state, domain.ErrInvalidTransition)
	}
}

// Fallback is the best-effort notification of the error path. It sends exactly one terminal response
// when none was sent yet and never returns the transport failure of that send.
func (i *Interaction) Fallback(ctx context.Context, reply domain.Reply) {
	err := i.Finish(ctx, reply)
	switch {
	case err == nil:
		i.l.Debug().Msg("fallback reply sent")
	case errors.Is(err, domain.ErrInvalidTransition):
		i.l.Debug().Msg("fallback suppressed, interaction already answered")
	default:
		i.l.Warn().Err(err).Msg("failed to send fallback reply")
	}
}

func (i *Interaction) reply(ctx context.Context, reply domain.Reply) error {
	i.state = Replied
	i.terminal++

	if err := i.responder.Reply(ctx, reply); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}
	return nil
}

func (i *Interaction) editFinal(ctx context.Context, reply domain.Reply) error {
	i.state = Finalized
	i.terminal++

	if err := i.responder.Edit(ctx, reply); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
	}
	return nil
}
