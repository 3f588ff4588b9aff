package command

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

type Ping struct {
	gateway port.Gateway
}

func NewPing(gateway port.Gateway) *Ping {
	return &Ping{gateway: gateway}
}

func (p *Ping) GetCommand() string {
	return "ping"
}

func (p *Ping) Schema() domain.CommandSchema {
	return domain.CommandSchema{
		Name:        p.GetCommand(),
		Description: "Bot ping",
	}
}

func (p *Ping) Respond(ctx context.Context, interaction port.Interaction) error {
	if err := interaction.Defer(ctx, true); err != nil {
		return err
	}

	latency := p.gateway.Latency().Milliseconds()
	log.Debug().Int64("latencyMs", latency).Msg("measured gateway latency")

	return interaction.EditFinal(ctx, domain.TextReply(fmt.Sprintf("%dms", latency)))
}
