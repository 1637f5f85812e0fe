package bot

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"

	"checkinbot/internal/db"
	"checkinbot/internal/notify"
	"checkinbot/internal/roster"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// interactionSink shows notifications as ephemeral interaction messages.
// The first message fills the deferred response; later ones are sent as
// follow-ups.
type interactionSink struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu       sync.Mutex
	answered bool
}

func newInteractionSink(s *discordgo.Session, i *discordgo.Interaction) *interactionSink {
	return &interactionSink{session: s, interaction: i}
}

func (n *interactionSink) Info(msg string)    { n.post("ℹ️ " + msg) }
func (n *interactionSink) Success(msg string) { n.post("✅ " + msg) }
func (n *interactionSink) Error(msg string)   { n.post("❌ " + msg) }

func (n *interactionSink) Loading(msg string) notify.Pending {
	return &interactionPending{sink: n, messageID: n.post("⏳ " + msg)}
}

// post returns the follow-up message ID, or "" when the original response
// was used.
func (n *interactionSink) post(content string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.answered {
		n.answered = true
		if _, err := n.session.InteractionResponseEdit(n.interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
			log.Printf("Error editing interaction response: %v", err)
		}
		return ""
	}

	msg, err := n.session.FollowupMessageCreate(n.interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("Error sending follow-up message: %v", err)
		return ""
	}
	return msg.ID
}

type interactionPending struct {
	sink      *interactionSink
	messageID string
}

func (p *interactionPending) Success(msg string) { p.replace("✅ " + msg) }
func (p *interactionPending) Error(msg string)   { p.replace("❌ " + msg) }

func (p *interactionPending) replace(content string) {
	edit := &discordgo.WebhookEdit{Content: &content}
	var err error
	if p.messageID == "" {
		_, err = p.sink.session.InteractionResponseEdit(p.sink.interaction, edit)
	} else {
		_, err = p.sink.session.FollowupMessageEdit(p.sink.interaction, p.messageID, edit)
	}
	if err != nil {
		log.Printf("Error replacing pending message: %v", err)
	}
}

// attachmentDelivery uploads an artifact as an ephemeral follow-up. The
// handle is the attachment's CDN URL.
type attachmentDelivery struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

func (d *attachmentDelivery) Deliver(ctx context.Context, a roster.Artifact) (roster.Handle, error) {
	if err := ctx.Err(); err != nil {
		return roster.Handle{}, err
	}

	msg, err := d.session.FollowupMessageCreate(d.interaction, true, &discordgo.WebhookParams{
		Content: "Here is your tag.",
		Files: []*discordgo.File{{
			Name:        a.Name,
			ContentType: a.ContentType,
			Reader:      bytes.NewReader(a.Data),
		}},
		Flags: discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return roster.Handle{}, fmt.Errorf("error uploading tag: %w", err)
	}
	if len(msg.Attachments) == 0 {
		return roster.Handle{}, fmt.Errorf("error uploading tag: no attachment in reply")
	}
	return roster.Handle{URL: msg.Attachments[0].URL}, nil
}

// rowRefresher re-reads one attendee and re-renders their row message.
type rowRefresher struct {
	session   *discordgo.Session
	db        *db.DB
	guildID   string
	channelID string
	messageID string
	eventID   uuid.UUID
	userID    string
}

func (r *rowRefresher) RequestRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	record, err := r.db.GetCheckInRecord(ctx, r.eventID, r.userID)
	if err != nil {
		logError(r.guildID, "refresh row", err.Error())
		return
	}
	if record == nil {
		logError(r.guildID, "refresh row", "attendee "+r.userID+" is gone")
		return
	}

	content := rowContent(record)
	edit := discordgo.NewMessageEdit(r.channelID, r.messageID)
	edit.Content = &content
	edit.Components = rowComponents(record)
	if _, err := r.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		logError(r.guildID, "refresh row", err.Error())
	}
}
