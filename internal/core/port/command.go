package port

import (
	"context"
	"pbpbot/internal/core/domain"
)

type Command interface {
	// Respond executes the command for a single interaction. Returned errors are turned into the
	// interaction's fallback reply by the dispatcher.
	Respond(ctx context.Context, interaction Interaction) error
	// GetCommand retrieves the command identifier used as the dispatch key.
	GetCommand() string
	// Schema returns the declarative definition sent to the platform at registration.
	Schema() domain.CommandSchema
}

// ErrorMessenger is implemented by commands with their own generic failure message.
type ErrorMessenger interface {
	ErrorMessage() string
}

type CommandRegistry interface {
	// Register adds a new command to the registry, failing if the name is already taken.
	Register(cmd Command) error
	// Get retrieves a registered Command based on its string identifier or returns an error if not found.
	Get(command string) (Command, error)
	// All returns every registered command in registration order.
	All() []Command
	// ListCommands returns the identifiers of all registered commands in registration order.
	ListCommands() []string
}

// Interaction is the per-event context handed to a command.
type Interaction interface {
	Invocation() *domain.Invocation
	String(name string) (string, bool)
	Int(name string) (int64, bool)
	User(name string) (*domain.User, bool)

	// Defer acknowledges the interaction and shows a placeholder.
	Defer(ctx context.Context, ephemeral bool) error
	// Reply sends the complete response to a fresh interaction.
	Reply(ctx context.Context, reply domain.Reply) error
	// EditFinal replaces the placeholder of a deferred interaction with its final content.
	EditFinal(ctx context.Context, reply domain.Reply) error
	// Progress updates the placeholder of a deferred interaction without finalizing it.
	Progress(ctx context.Context, reply domain.Reply)
	// Finish sends the terminal response using Reply or EditFinal depending on the current state.
	Finish(ctx context.Context, reply domain.Reply) error
}
