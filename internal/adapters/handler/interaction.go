package handler

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"pbpbot/internal/core/service"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

const (
	defaultErrorMessage = "Something went wrong"
	fallbackTimeout     = 5 * time.Second
)

// Interaction routes invocations to their command and guarantees a reply on every failure path.
type Interaction struct {
	commandRegistry port.CommandRegistry
	auth            service.Authorizer
	timeout         time.Duration
	running         conc.WaitGroup
}

func NewInteraction(commandRegistry port.CommandRegistry, auth service.Authorizer, timeout time.Duration) *Interaction {
	return &Interaction{commandRegistry: commandRegistry, auth: auth, timeout: timeout}
}

// Handle looks up the command and runs it in the background. It returns an error only when no
// handler is registered for the invocation.
func (h *Interaction) Handle(ctx context.Context, inv *domain.Invocation, responder port.Responder) error {
	cmd, err := h.commandRegistry.Get(inv.CommandName)
	if err != nil {
		log.Debug().Str("command", inv.CommandName).Msg("no handler for command")
		return fmt.Errorf("no handler for command: %w", err)
	}

	h.running.Go(func() {
		h.Dispatch(ctx, cmd, inv, responder)
	})

	return nil
}

// Dispatch runs cmd to completion under the handler timeout.
func (h *Interaction) Dispatch(ctx context.Context, cmd port.Command, inv *domain.Invocation, responder port.Responder) {
	if inv.TraceID == "" {
		inv.TraceID = newTraceID()
	}

	i := service.NewInteraction(inv, responder)
	l := log.With().
		Str("interactionId", inv.ID).
		Str("traceId", inv.TraceID).
		Str("guildId", inv.GuildID).
		Str("userId", inv.Invoker.ID).
		Str("command", cmd.GetCommand()).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	fallback := defaultErrorMessage
	if m, ok := cmd.(port.ErrorMessenger); ok {
		fallback = m.ErrorMessage()
	}

	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Msg("command panicked")
			h.notify(ctx, i, fallback)
		}
	}()

	if h.auth != nil && !h.auth.IsAuthorized(ctx, i) {
		l.Debug().Msg("not authorized")
		return
	}

	l.Info().Msg("handling request")
	start := time.Now()

	err := cmd.Respond(ctx, i)
	if err != nil {
		l.Err(err).Str("kind", domain.KindOf(err).String()).Msg("failed to respond to command")
		h.notify(ctx, i, domain.UserMessage(err, fallback))
		return
	}

	l.Debug().Dur("took", time.Since(start)).Str("state", i.State().String()).Msg("request handled")
}

// Wait blocks until every running command has returned.
func (h *Interaction) Wait() {
	h.running.Wait()
}

// notify sends the fallback even when the handler context already ended.
func (h *Interaction) notify(ctx context.Context, i *service.Interaction, message string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fallbackTimeout)
	defer cancel()

	i.Fallback(ctx, domain.TextReply(message))
}

func newTraceID() string {
	id, err := uuid.NewV4()
	if err != nil {
		log.Warn().Err(err).Msg("failed to generate trace id")
		return ""
	}
	return id.String()
}
