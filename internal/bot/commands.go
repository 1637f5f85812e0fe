package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"checkinbot/internal/db/models"
	"checkinbot/internal/tag"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

var (
	commands = []*discordgo.ApplicationCommand{
		{
			Name:                     "event",
			Description:              "Manage events (admin only)",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a new event",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Event name",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "List recent events",
				},
			},
		},
		{
			Name:        "register",
			Description: "Register for an event",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "event",
					Description:  "Select an event",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Name printed on your tag (defaults to your server nickname)",
					Required:    false,
				},
			},
		},
		{
			Name:                     "checkins",
			Description:              "Post the check-in list of an event (admin only)",
			DefaultMemberPermissions: &adminPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "event",
					Description:  "Select an event",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Page of the attendee list",
					Required:    false,
					MinValue:    &minPage,
				},
			},
		},
		{
			Name:        "help",
			Description: "Show how check-in works",
		},
	}

	// Permission for admin commands (Manage Server permission)
	adminPermission = int64(discordgo.PermissionManageServer)
	minPage         = float64(1)
)

const (
	eventListLimit = 25 // Discord limit on autocomplete choices
	maxNameLength  = 32
)

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.track() {
		return
	}
	defer b.wg.Done()

	switch i.ApplicationCommandData().Name {
	case "register", "checkins":
		b.handleEventAutocomplete(s, i)
	}
}

func (b *Bot) handleEventAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		return
	}

	var focusedOption *discordgo.ApplicationCommandInteractionDataOption
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "event" && opt.Focused {
			focusedOption = opt
			break
		}
	}
	if focusedOption == nil {
		return
	}
	input := strings.ToLower(focusedOption.StringValue())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	events, err := b.db.ListServerEvents(ctx, i.GuildID, eventListLimit)
	if err != nil {
		logError(i.GuildID, "ListServerEvents", err.Error())
		return
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Name), input) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  truncateString(event.Name, 100),
				Value: event.ID.String(),
			})
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		log.Printf("Error responding to autocomplete: %v", err)
	}
}

func (b *Bot) handleEvent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "event")

	if !isAdmin(i) {
		editWithError(s, i, "Only administrators can manage events")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		editWithError(s, i, "Invalid subcommand")
		return
	}

	switch sub := options[0]; sub.Name {
	case "create":
		if len(sub.Options) == 0 {
			editWithError(s, i, "Missing event name")
			return
		}
		name := strings.TrimSpace(sub.Options[0].StringValue())
		if name == "" {
			editWithError(s, i, "Event name cannot be empty")
			return
		}

		creatorID, _ := interactionUser(i)
		event := &models.Event{
			ID:        uuid.New(),
			ServerID:  i.GuildID,
			Name:      name,
			CreatedBy: creatorID,
			CreatedAt: time.Now(),
		}
		if err := b.db.CreateEvent(ctx, event); err != nil {
			logError(i.GuildID, "CreateEvent", err.Error())
			editWithError(s, i, "Error creating event: "+err.Error())
			return
		}
		editWithSuccess(s, i, fmt.Sprintf("Created event **%s**. Attendees can now `/register`.", event.Name))

	case "list":
		events, err := b.db.ListServerEvents(ctx, i.GuildID, eventListLimit)
		if err != nil {
			logError(i.GuildID, "ListServerEvents", err.Error())
			editWithError(s, i, "Error listing events: "+err.Error())
			return
		}
		if len(events) == 0 {
			editWithSuccess(s, i, "No events yet. Create one with `/event create`.")
			return
		}

		rows := make([][]string, 0, len(events))
		for _, event := range events {
			rows = append(rows, []string{truncateString(event.Name, 30), event.CreatedAt.Format("2006-01-02")})
		}
		editWithSuccess(s, i, formatTable([]string{"EVENT", "CREATED"}, rows))

	default:
		editWithError(s, i, "Invalid subcommand")
	}
}

func (b *Bot) handleRegister(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "register")

	var eventArg, name string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "event":
			eventArg = opt.StringValue()
		case "name":
			name = opt.StringValue()
		}
	}

	event, ok := b.lookupEvent(ctx, s, i, eventArg)
	if !ok {
		return
	}

	userID, username := interactionUser(i)
	if userID == "" {
		editWithError(s, i, "Could not determine user information")
		return
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = memberDisplayName(i.Member, username)
	}
	if name == "" {
		editWithError(s, i, "Please provide the name to print on your tag")
		return
	}
	if len([]rune(name)) > maxNameLength {
		editWithError(s, i, fmt.Sprintf("Names are limited to %d characters", maxNameLength))
		return
	}
	if err := b.checkPrintable(name); err != nil {
		editWithError(s, i, "This name cannot be printed on a tag: "+err.Error())
		return
	}

	record, err := b.db.RegisterAttendee(ctx, event.ID, userID, name)
	if err != nil {
		logError(i.GuildID, "RegisterAttendee", err.Error())
		editWithError(s, i, "Error registering: "+err.Error())
		return
	}

	status := "See you there!"
	if record.State() == models.StateCheckedIn {
		status = "You are already checked in."
	}
	editWithSuccess(s, i, fmt.Sprintf("Registered for **%s** as **%s**. %s", event.Name, record.Name, status))
}

func (b *Bot) handleCheckins(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	logCommand(i, "checkins")

	if !isAdmin(i) {
		editWithError(s, i, "Only administrators can post check-in lists")
		return
	}

	var eventArg string
	page := 1
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "event":
			eventArg = opt.StringValue()
		case "page":
			page = int(opt.IntValue())
		}
	}
	if page < 1 {
		page = 1
	}

	event, ok := b.lookupEvent(ctx, s, i, eventArg)
	if !ok {
		return
	}

	pageSize := b.config.Roster.PageSize
	records, err := b.db.ListCheckInRecords(ctx, event.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		logError(i.GuildID, "ListCheckInRecords", err.Error())
		editWithError(s, i, "Error loading attendees: "+err.Error())
		return
	}
	if len(records) == 0 {
		editWithSuccess(s, i, fmt.Sprintf("No attendees on page %d of **%s**.", page, event.Name))
		return
	}

	posted := 0
	for _, record := range records {
		if _, err := s.ChannelMessageSendComplex(i.ChannelID, rowMessage(record), discordgo.WithContext(ctx)); err != nil {
			logError(i.GuildID, "post row", err.Error())
			continue
		}
		posted++
	}

	editWithSuccess(s, i, fmt.Sprintf("Posted %d of %d attendees for **%s** (page %d).", posted, len(records), event.Name, page))
}

func (b *Bot) handleHelp(s *discordgo.Session, i *discordgo.InteractionCreate) {
	editWithSuccess(s, i, strings.Join([]string{
		"**Event check-in**",
		"`/register` signs you up for an event.",
		"`/checkins` (staff) posts one row per attendee.",
		"Staff press **Check in** when an attendee arrives; the row then offers **Download tag**, which sends a printable PDF name tag.",
	}, "\n"))
}

// lookupEvent resolves an autocompleted event ID within the current guild,
// answering the interaction itself on failure.
func (b *Bot) lookupEvent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, arg string) (*models.Event, bool) {
	eventID, err := uuid.Parse(arg)
	if err != nil {
		editWithError(s, i, "Invalid event, please pick one from the list")
		return nil, false
	}

	event, err := b.db.GetEvent(ctx, i.GuildID, eventID)
	if err != nil {
		logError(i.GuildID, "GetEvent", err.Error())
		editWithError(s, i, "Error getting event: "+err.Error())
		return nil, false
	}
	if event == nil {
		editWithError(s, i, "Event not found")
		return nil, false
	}
	return event, true
}

func memberDisplayName(m *discordgo.Member, fallback string) string {
	if m != nil {
		if m.Nick != "" {
			return m.Nick
		}
	}
	return fallback
}

// formatTable creates a Discord-friendly table with fixed-width columns
func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var result strings.Builder
	result.WriteString("```\n")
	for i, header := range headers {
		result.WriteString(fmt.Sprintf("%-*s", widths[i]+2, header))
	}
	result.WriteString("\n")
	for _, width := range widths {
		result.WriteString(strings.Repeat("-", width+2))
	}
	result.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			result.WriteString(fmt.Sprintf("%-*s", widths[i]+2, cell))
		}
		result.WriteString("\n")
	}
	result.WriteString("```")

	return result.String()
}

// checkPrintable rejects names the tag template cannot render.
func (b *Bot) checkPrintable(name string) error {
	field, err := tag.NewNameField(name)
	if err != nil {
		return err
	}
	return tag.CheckFits(b.template, field)
}
