package bot

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"checkinbot/internal/config"
	"checkinbot/internal/db"
	"checkinbot/internal/tag"

	"github.com/bwmarrin/discordgo"
)

const interactionTimeout = 30 * time.Second

var (
	dmAllowedCommands = map[string]bool{
		"help": true, // Keep only essential commands in DMs
	}
)

type Bot struct {
	config     *config.Config
	db         *db.DB
	session    *discordgo.Session
	generator  tag.Generator
	template   *tag.Template
	shutdownCh chan struct{}
	isShutdown bool
	mu         sync.Mutex
	wg         sync.WaitGroup
}

func New(config *config.Config, database *db.DB, template *tag.Template) (*Bot, error) {
	session, err := discordgo.New("Bot " + config.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	// Required permissions for posting and editing check-in rows
	config.Discord.Permissions = int64(
		discordgo.PermissionViewChannel |
			discordgo.PermissionSendMessages |
			discordgo.PermissionReadMessageHistory |
			discordgo.PermissionAttachFiles |
			discordgo.PermissionUseSlashCommands)

	log.Printf("Bot intents: %d", session.Identify.Intents)
	log.Printf("Bot permissions: %d", config.Discord.Permissions)

	return &Bot{
		config:     config,
		db:         database,
		session:    session,
		generator:  tag.NewPDFGenerator(),
		template:   template,
		shutdownCh: make(chan struct{}),
	}, nil
}

// Helper function to register commands for a guild
func (b *Bot) registerGuildCommands(guildID string) error {
	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := b.registerGuildCommandsOnce(guildID)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("Attempt %d to register commands failed: %v", i+1, err)
		time.Sleep(time.Second * time.Duration(i+1))
	}
	return fmt.Errorf("failed to register commands after %d attempts: %w", maxRetries, lastErr)
}

func (b *Bot) registerGuildCommandsOnce(guildID string) error {
	serverName := getServerName(b.session, guildID)
	log.Println(formatLogMessage(guildID, "Registering commands", "BOT", serverName))

	// Bulk overwrite replaces whatever was registered before
	registered, err := b.session.ApplicationCommandBulkOverwrite(b.config.Discord.ClientID, guildID, commands)
	if err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	for _, v := range registered {
		log.Println(formatLogMessage(guildID, fmt.Sprintf("%s: Registered command", v.Name), "BOT", serverName))
	}
	return nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.Println("Starting CheckinBot...")

	// Keep trying to connect until successful
	for {
		log.Println("Testing Discord API connection...")
		if _, err := b.session.User("@me"); err != nil {
			log.Printf("Failed to connect to Discord API: %v. Retrying in 5 seconds...", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-b.shutdownCh:
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}
		log.Println("Successfully connected to Discord API")
		break
	}

	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleGuildCreate)
	b.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			b.handleCommand(s, i)
		case discordgo.InteractionApplicationCommandAutocomplete:
			b.handleAutocomplete(s, i)
		case discordgo.InteractionMessageComponent:
			b.handleComponent(s, i)
		}
	})

	// Keep trying to open session until successful
	for {
		if err := b.session.Open(); err != nil {
			log.Printf("Error opening Discord session: %v. Retrying in 5 seconds...", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-b.shutdownCh:
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}
		log.Printf("Session opened successfully (Session ID: %s)", b.session.State.SessionID)
		break
	}

	log.Println("Bot is now running. Press CTRL-C to exit.")

	select {
	case <-ctx.Done():
	case <-b.shutdownCh:
	}
	return nil
}

// Shutdown performs a graceful shutdown of the bot
func (b *Bot) Shutdown() error {
	log.Println("Initiating graceful shutdown...")

	// Ensure we only close the channel once
	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		return nil
	}
	b.isShutdown = true
	close(b.shutdownCh)
	b.mu.Unlock()

	log.Println("Waiting for active handlers to complete...")
	b.wg.Wait()

	log.Println("Closing Discord session...")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("error closing Discord session: %w", err)
	}

	log.Println("Closing database connection...")
	b.db.Close()

	log.Println("Shutdown completed successfully")
	return nil
}

// track registers a running handler; it returns false once shutdown began.
func (b *Bot) track() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isShutdown {
		return false
	}
	b.wg.Add(1)
	return true
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("Bot is ready! Connected to %d guilds", len(r.Guilds))
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Println(formatLogMessage(g.ID, "Guild available", "BOT", g.Name))

	if err := b.registerGuildCommands(g.ID); err != nil {
		log.Println(formatLogMessage(g.ID, fmt.Sprintf("Error registering commands: %v", err), "BOT", g.Name))
	} else {
		log.Println(formatLogMessage(g.ID, "Successfully registered all commands", "BOT", g.Name))
	}
}

// recoverHandler logs a panic raised while handling an interaction.
func recoverHandler(s *discordgo.Session, i *discordgo.InteractionCreate, kind string) {
	r := recover()
	if r == nil {
		return
	}

	var where string
	if i.GuildID != "" {
		where = fmt.Sprintf("guild %s (%s)", getServerName(s, i.GuildID), i.GuildID)
	} else {
		where = "DM"
	}

	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	log.Printf("Panic in %s handler for user %s in %s:\nError: %v\nStack Trace:\n%s",
		kind, interactionUsername(i), where, r, string(buf[:n]))
}

func (b *Bot) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.track() {
		return
	}
	defer b.wg.Done()
	defer recoverHandler(s, i, "command")

	commandName := i.ApplicationCommandData().Name

	// Strict DM check
	if i.GuildID == "" && !dmAllowedCommands[commandName] {
		respondWithError(s, i, fmt.Sprintf("The `/%s` command can only be used in a server", commandName))
		return
	}

	// Add initial acknowledgment for long-running commands
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Println(formatLogMessage(i.GuildID, "Error acknowledging interaction: "+err.Error(), "", ""))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch commandName {
	case "event":
		b.handleEvent(ctx, s, i)
	case "register":
		b.handleRegister(ctx, s, i)
	case "checkins":
		b.handleCheckins(ctx, s, i)
	case "help":
		b.handleHelp(s, i)
	default:
		log.Println(formatLogMessage(i.GuildID, "Unknown command: "+commandName, "", ""))
		editWithError(s, i, "Unknown command")
	}
}
