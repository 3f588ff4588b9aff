package discord

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"
	"time"

	"github.com/bwmarrin/discordgo"
)

type interactionClient interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse,
		options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit,
		options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Responder sends the raw responses of one interaction.
type Responder struct {
	client      interactionClient
	interaction *discordgo.Interaction
}

func NewResponder(client interactionClient, interaction *discordgo.Interaction) *Responder {
	return &Responder{client: client, interaction: interaction}
}

func (r *Responder) Defer(ctx context.Context, ephemeral bool) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{},
	}
	if ephemeral {
		resp.Data.Flags = discordgo.MessageFlagsEphemeral
	}

	if err := r.client.InteractionRespond(r.interaction, resp, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to defer interaction %s: %w", r.interaction.ID, err)
	}
	return nil
}

func (r *Responder) Reply(ctx context.Context, reply domain.Reply) error {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: toResponseData(reply),
	}

	if err := r.client.InteractionRespond(r.interaction, resp, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to reply to interaction %s: %w", r.interaction.ID, err)
	}
	return nil
}

func (r *Responder) Edit(ctx context.Context, reply domain.Reply) error {
	if _, err := r.client.InteractionResponseEdit(r.interaction, toWebhookEdit(reply), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit interaction %s: %w", r.interaction.ID, err)
	}
	return nil
}

func toResponseData(reply domain.Reply) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content: reply.Content,
		Embeds:  toEmbeds(reply.Embeds),
	}
	if reply.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

// toWebhookEdit always sets both content and embeds so a final edit replaces a progress message fully.
func toWebhookEdit(reply domain.Reply) *discordgo.WebhookEdit {
	content := reply.Content
	embeds := toEmbeds(reply.Embeds)
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	return &discordgo.WebhookEdit{Content: &content, Embeds: &embeds}
}

func toEmbeds(embeds []domain.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}

	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		me := &discordgo.MessageEmbed{
			Title: e.Title,
			Color: e.Color,
		}
		if e.Author != "" {
			me.Author = &discordgo.MessageEmbedAuthor{Name: e.Author}
		}
		if e.ThumbnailURL != "" {
			me.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
		}
		if e.Footer != "" {
			me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		if e.Timestamp != nil {
			me.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
		}
		for _, f := range e.Fields {
			me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		out = append(out, me)
	}
	return out
}
