package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"wedding-relay/internal/models"
	"wedding-relay/internal/whatsapp"
)

// PhoneSender delivers text to a phone number
type PhoneSender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// WeddingDetails are the facts printed on the invitation
type WeddingDetails struct {
	WeddingDate     string
	WeddingLocation string
	BrideName       string
	GroomName       string
}

// InviteOutcome is the result of inviting one party member
type InviteOutcome struct {
	Guest   models.GuestRecord
	Skipped bool
	Err     error
}

type Inviter struct {
	sender  PhoneSender
	details WeddingDetails
	log     zerolog.Logger
}

// NewInviter creates an inviter sending through sender
func NewInviter(sender PhoneSender, details WeddingDetails, log zerolog.Logger) *Inviter {
	return &Inviter{
		sender:  sender,
		details: details,
		log:     log.With().Str("component", "Invitations").Logger(),
	}
}

// InvitationText renders the invitation for one guest
func (i *Inviter) InvitationText(g models.GuestRecord) string {
	name := g.Nickname
	if name == "" {
		name = g.FirstName
	}
	return fmt.Sprintf(
		"🎉 *Wedding Invitation*\n\n"+
			"Dear %s,\n\n"+
			"You are cordially invited to celebrate the wedding of\n\n"+
			"*%s* & *%s*\n\n"+
			"📅 Date: %s\n"+
			"📍 Location: %s\n\n"+
			"Please confirm your attendance for your whole party on our RSVP page.",
		name, i.details.BrideName, i.details.GroomName, i.details.WeddingDate, i.details.WeddingLocation,
	)
}

// InviteParty messages every party member that has a phone number, dialing
// local numbers with the member's country code. Members are invited one
// after another; a failure does not stop the rest.
func (i *Inviter) InviteParty(ctx context.Context, party models.Party) []InviteOutcome {
	outcomes := make([]InviteOutcome, 0, len(party))
	for _, g := range party {
		if strings.TrimSpace(g.Phone) == "" {
			outcomes = append(outcomes, InviteOutcome{Guest: g, Skipped: true})
			continue
		}

		phone := whatsapp.NormalizePhoneNumber(g.Phone, g.Country)
		err := i.sender.SendMessage(ctx, phone, i.InvitationText(g))
		if err != nil {
			i.log.Error().Err(err).Str("guest", g.DisplayName()).Msg("Failed to send invitation")
		} else {
			i.log.Info().Str("guest", g.DisplayName()).Msg("Invitation sent")
		}
		outcomes = append(outcomes, InviteOutcome{Guest: g, Err: err})
	}
	return outcomes
}
