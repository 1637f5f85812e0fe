package bot

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// formatLogMessage prefixes a log line with its guild and actor.
func formatLogMessage(guildID, message, username, serverName string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	var where string
	switch {
	case guildID == "":
		where = "DM"
	case serverName != "":
		where = fmt.Sprintf("%s (%s)", serverName, guildID)
	default:
		where = guildID
	}

	if username == "" {
		return fmt.Sprintf("[%s] [%s] %s", timestamp, where, message)
	}
	return fmt.Sprintf("[%s] [%s] %s: %s", timestamp, where, username, message)
}

// getServerName looks the guild name up in the state cache, then the API.
func getServerName(s *discordgo.Session, guildID string) string {
	if guildID == "" {
		return ""
	}
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g.Name
		}
	}
	if g, err := s.Guild(guildID); err == nil {
		return g.Name
	}
	return ""
}

// interactionUser returns the Discord ID and username of whoever triggered
// the interaction, in guilds and DMs alike.
func interactionUser(i *discordgo.InteractionCreate) (string, string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, i.Member.User.Username
	}
	if i.User != nil {
		return i.User.ID, i.User.Username
	}
	return "", ""
}

func interactionUsername(i *discordgo.InteractionCreate) string {
	if _, name := interactionUser(i); name != "" {
		return name
	}
	return "unknown"
}

// isAdmin reports whether the member who triggered the interaction may
// manage events in the guild.
func isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionAdministrator != 0 ||
		i.Member.Permissions&discordgo.PermissionManageServer != 0
}

// respondWithError answers an interaction that has not been acknowledged yet.
func respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errMsg string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Error: " + errMsg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// editWithError replaces the deferred response with an error message.
func editWithError(s *discordgo.Session, i *discordgo.InteractionCreate, errMsg string) {
	editResponse(s, i, "Error: "+errMsg)
}

func editWithSuccess(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	editResponse(s, i, msg)
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

// logCommand logs command execution to the console
func logCommand(i *discordgo.InteractionCreate, commandName string, details ...string) {
	var params []string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionSubCommand:
			params = append(params, opt.Name)
			for _, subOpt := range opt.Options {
				params = append(params, fmt.Sprintf("%s:%v", subOpt.Name, subOpt.Value))
			}
		default:
			params = append(params, fmt.Sprintf("%s:%v", opt.Name, opt.Value))
		}
	}

	msg := fmt.Sprintf("executed /%s", commandName)
	if len(params) > 0 {
		msg += fmt.Sprintf(" [%s]", strings.Join(params, ", "))
	}
	if len(details) > 0 {
		msg += fmt.Sprintf(" (%s)", strings.Join(details, " "))
	}
	log.Println(formatLogMessage(i.GuildID, msg, interactionUsername(i), ""))
}

// logError logs errors with their context
func logError(guildID, errContext, errMsg string) {
	log.Println(formatLogMessage(guildID, fmt.Sprintf("ERROR - %s: %s", errContext, errMsg), "", ""))
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
