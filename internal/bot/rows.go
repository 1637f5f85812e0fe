package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"checkinbot/internal/db/models"
	"checkinbot/internal/roster"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	actionCheckIn = "checkin"
	actionTag     = "tag"
	customIDSep   = ":"
)

var errBadCustomID = errors.New("malformed row button")

func rowCustomID(action string, r *models.CheckInRecord) string {
	return strings.Join([]string{action, r.EventID.String(), r.UserID}, customIDSep)
}

func parseCustomID(id string) (string, uuid.UUID, string, error) {
	parts := strings.SplitN(id, customIDSep, 3)
	if len(parts) != 3 || parts[2] == "" {
		return "", uuid.Nil, "", errBadCustomID
	}
	if parts[0] != actionCheckIn && parts[0] != actionTag {
		return "", uuid.Nil, "", errBadCustomID
	}
	eventID, err := uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, "", fmt.Errorf("%w: %v", errBadCustomID, err)
	}
	return parts[0], eventID, parts[2], nil
}

func rowContent(r *models.CheckInRecord) string {
	name := truncateString(strings.TrimSpace(r.Name), 80)
	if name == "" {
		name = "(no name)"
	}
	if r.State() == models.StateCheckedIn {
		return fmt.Sprintf("**%s** <@%s> · checked in <t:%d:R>", name, r.UserID, r.CheckedInAt.Unix())
	}
	return fmt.Sprintf("**%s** <@%s> · not checked in", name, r.UserID)
}

// rowComponents renders the one button a row offers for its record.
func rowComponents(r *models.CheckInRecord) []discordgo.MessageComponent {
	var button discordgo.Button
	switch roster.Affordance(r) {
	case roster.ActionDownloadTag:
		button = discordgo.Button{
			Label:    "Download tag",
			Style:    discordgo.SecondaryButton,
			CustomID: rowCustomID(actionTag, r),
		}
	default:
		button = discordgo.Button{
			Label:    "Check in",
			Style:    discordgo.SuccessButton,
			CustomID: rowCustomID(actionCheckIn, r),
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{button}},
	}
}

func rowMessage(r *models.CheckInRecord) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    rowContent(r),
		Components: rowComponents(r),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.track() {
		return
	}
	defer b.wg.Done()
	defer recoverHandler(s, i, "button")

	action, eventID, userID, err := parseCustomID(i.MessageComponentData().CustomID)
	if err != nil {
		respondWithError(s, i, "Unknown button")
		return
	}
	if i.GuildID == "" || i.Message == nil {
		respondWithError(s, i, "Check-in rows only work inside a server")
		return
	}

	callerID, _ := interactionUser(i)
	switch action {
	case actionCheckIn:
		if !isAdmin(i) {
			respondWithError(s, i, "Only event staff can check attendees in")
			return
		}
	case actionTag:
		if !isAdmin(i) && callerID != userID {
			respondWithError(s, i, "You can only download your own tag")
			return
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Println(formatLogMessage(i.GuildID, "Error acknowledging button: "+err.Error(), "", ""))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	record, err := b.db.GetCheckInRecord(ctx, eventID, userID)
	if err != nil {
		logError(i.GuildID, "GetCheckInRecord", err.Error())
		editWithError(s, i, "Could not load the attendee")
		return
	}
	if record == nil {
		editWithError(s, i, "This attendee is no longer registered")
		return
	}

	refresher := &rowRefresher{
		session:   s,
		db:        b.db,
		guildID:   i.GuildID,
		channelID: i.Message.ChannelID,
		messageID: i.Message.ID,
		eventID:   eventID,
		userID:    userID,
	}
	sink := newInteractionSink(s, i.Interaction)
	ctrl := roster.New(record, roster.Deps{
		CheckIns:  b.db,
		Generator: b.generator,
		Template:  b.template,
		Delivery:  &attachmentDelivery{session: s, interaction: i.Interaction},
		Notifier:  sink,
		Refresher: refresher,
	})

	log.Println(formatLogMessage(i.GuildID,
		fmt.Sprintf("pressed %s for %s on event %s", action, userID, eventID), interactionUsername(i), ""))

	wanted := roster.ActionCheckIn
	if action == actionTag {
		wanted = roster.ActionDownloadTag
	}
	if ctrl.Affordance() != wanted {
		// The row was rendered from an older record
		sink.Info("This row was out of date and has been refreshed.")
		refresher.RequestRefresh()
		return
	}

	switch action {
	case actionCheckIn:
		err = ctrl.MarkCheckedIn(ctx)
	case actionTag:
		_, err = ctrl.GenerateTag(ctx)
	}
	if err != nil {
		logError(i.GuildID, action, err.Error())
	}
}
