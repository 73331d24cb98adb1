package discord

import (
	"context"
	"errors"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/lojasmm/cartaz/internal/ui"
)

// errAnswered is returned for a modal after the interaction was already
// acknowledged; Discord allows a modal only as the first response.
var errAnswered = errors.New("discord: interaction already answered")

// responder answers one interaction. The first call responds, later calls
// edit the response or post followups.
type responder struct {
	host        *Host
	interaction *discordgo.Interaction
	responded   bool
}

func (r *responder) respond(ctx context.Context, resp *discordgo.InteractionResponse) error {
	if err := r.host.api.InteractionRespond(r.interaction, resp, discordgo.WithContext(ctx)); err != nil {
		return err
	}
	r.responded = true
	return nil
}

func (r *responder) EditMessage(ctx context.Context, m *ui.Message) error {
	data, err := m.ResponseData()
	if err != nil {
		return err
	}
	files, closeAll, err := r.host.files(m.Files)
	if err != nil {
		return err
	}
	defer closeAll()
	data.Files = files

	if !r.responded {
		return r.respond(ctx, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseUpdateMessage, Data: data})
	}
	edit := &discordgo.WebhookEdit{
		Content:         &data.Content,
		Embeds:          &data.Embeds,
		Components:      &data.Components,
		AllowedMentions: data.AllowedMentions,
		Files:           files,
	}
	_, err = r.host.api.InteractionResponseEdit(r.interaction, edit, discordgo.WithContext(ctx))
	return err
}

func (r *responder) SendMessage(ctx context.Context, m *ui.Message) error {
	if err := r.reply(ctx, m); err != nil {
		return err
	}
	return r.host.attach(viewOrNil(m.View))
}

// reply posts m as the response, or as a followup once responded.
func (r *responder) reply(ctx context.Context, m *ui.Message) error {
	data, err := m.ResponseData()
	if err != nil {
		return err
	}
	files, closeAll, err := r.host.files(m.Files)
	if err != nil {
		return err
	}
	defer closeAll()
	data.Files = files

	first := !r.responded
	if first {
		err = r.respond(ctx, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseChannelMessageWithSource, Data: data})
	} else {
		_, err = r.host.api.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
			Content:         data.Content,
			Embeds:          data.Embeds,
			Components:      data.Components,
			AllowedMentions: data.AllowedMentions,
			Files:           files,
			TTS:             data.TTS,
			Flags:           data.Flags,
		}, discordgo.WithContext(ctx))
	}
	if err != nil {
		return err
	}

	if m.DeleteAfter != nil && first {
		i := r.interaction
		r.host.after(*m.DeleteAfter, func() {
			if err := r.host.api.InteractionResponseDelete(i); err != nil {
				log.Printf("discord: delete_after for interaction %s failed: %v", i.ID, err)
			}
		})
	}
	return nil
}

func (r *responder) SendModal(ctx context.Context, m *ui.Modal) error {
	if r.responded {
		return errAnswered
	}
	data, err := m.ResponseData()
	if err != nil {
		return err
	}
	if err := r.respond(ctx, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseModal, Data: data}); err != nil {
		return err
	}
	return r.host.attach(m)
}

func (r *responder) Defer(ctx context.Context) error {
	if r.responded {
		return nil
	}
	return r.respond(ctx, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
}
