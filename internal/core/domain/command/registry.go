package command

import (
	"fmt"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry maps command names to handlers. It is filled once at startup and only read afterwards, so
// it holds no lock.
type Registry struct {
	commands map[string]port.Command
	order    []port.Command
}

func (r *Registry) Register(handler port.Command) error {
	if r.commands == nil {
		r.commands = make(map[string]port.Command)
	}

	name := handler.GetCommand()
	if _, ok := r.commands[name]; ok {
		return fmt.Errorf("%s: %w", name, domain.ErrDuplicateCommand)
	}

	log.Info().Str("handler", name).Msg("adding command handler to registry")
	r.commands[name] = handler
	r.order = append(r.order, handler)

	return nil
}

func (r *Registry) Get(command string) (port.Command, error) {
	log.Debug().Str("command", command).Msg("fetching command handler from registry")

	handler, ok := r.commands[command]
	if !ok {
		return nil, fmt.Errorf("%s: %w", command, domain.ErrCommandNotFound)
	}

	return handler, nil
}

func (r *Registry) All() []port.Command {
	out := make([]port.Command, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, len(r.order))
	for i, cmd := range r.order {
		keys[i] = cmd.GetCommand()
	}

	return keys
}

// Schemas returns the registration payload of every command in registration order.
func (r *Registry) Schemas() []domain.CommandSchema {
	schemas := make([]domain.CommandSchema, len(r.order))
	for i, cmd := range r.order {
		schemas[i] = cmd.Schema()
	}

	return schemas
}
