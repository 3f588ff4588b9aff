package command

import (
	"context"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockCommand struct {
	command string
}

func (m *MockCommand) Respond(_ context.Context, _ port.Interaction) error {
	return nil
}

func (m *MockCommand) GetCommand() string {
	return m.command
}

func (m *MockCommand) Schema() domain.CommandSchema {
	return domain.CommandSchema{Name: m.command, Description: m.command + " command"}
}

func TestRegister(t *testing.T) {
	cr := &Registry{}
	mr := &MockCommand{command: "test"}

	require.NoError(t, cr.Register(mr))
	assert.Len(t, cr.commands, 1)
}

func TestRegisterDuplicate(t *testing.T) {
	cr := &Registry{}

	require.NoError(t, cr.Register(&MockCommand{command: "test"}))
	err := cr.Register(&MockCommand{command: "test"})

	require.ErrorIs(t, err, domain.ErrDuplicateCommand)
	assert.Len(t, cr.All(), 1)
}

func TestGetNotRegistered(t *testing.T) {
	cr := &Registry{}

	_, err := cr.Get("test")
	require.ErrorIs(t, err, domain.ErrCommandNotFound)
}

func TestGetCommandNotFound(t *testing.T) {
	cr := &Registry{}
	require.NoError(t, cr.Register(&MockCommand{command: "test"}))

	_, err := cr.Get("foo")
	require.ErrorIs(t, err, domain.ErrCommandNotFound)
}

func TestGetCommandFound(t *testing.T) {
	cr := &Registry{}
	require.NoError(t, cr.Register(&MockCommand{command: "test"}))

	cmd, err := cr.Get("test")
	require.NoError(t, err)
	assert.NotNil(t, cmd)

	assert.Equal(t, "test", cmd.GetCommand())
}

func TestListCommandsKeepsOrder(t *testing.T) {
	cr := &Registry{}
	for _, name := range []string{"ping", "shorturl", "uclear", "unban"} {
		require.NoError(t, cr.Register(&MockCommand{command: name}))
	}

	assert.Equal(t, []string{"ping", "shorturl", "uclear", "unban"}, cr.ListCommands())

	schemas := cr.Schemas()
	require.Len(t, schemas, 4)
	assert.Equal(t, "uclear", schemas[2].Name)
}
