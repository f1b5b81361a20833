package discord

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/r-Techsupport/turingbot/internal/config"
	"github.com/r-Techsupport/turingbot/internal/engine"
)

// Bot binds the command engine to a Discord gateway session.
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	dispatcher *engine.Dispatcher
}

// NewBot creates a bot around an assembled dispatcher.
func NewBot(cfg *config.Config, dispatcher *engine.Dispatcher) *Bot {
	return &Bot{cfg: cfg, dispatcher: dispatcher}
}

// Run opens the gateway session and blocks until ctx is done. Startup
// initialization (dependency resolution + root initializers) runs once the
// session is ready, before slash commands are synced.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] Shutdown signal received. Closing Discord session...")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] Logged in as %s", r.User.Username)

	initCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	b.dispatcher.InitializeAll(initCtx)

	for _, g := range r.Guilds {
		if err := b.syncCommands(g.ID); err != nil {
			log.Printf("[ERR] [%s] Failed to sync commands: %v", g.ID, err)
		}
	}
}

// onInteractionCreate turns a slash interaction into tokens and dispatches.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	tokens := interactionTokens(i)
	rc, err := b.requestContext(i.Member, i.ChannelID)
	if err != nil {
		log.Printf("[ERR] Failed to build request context: %v", err)
		return
	}
	if rc.UserID == "" {
		// DM interactions carry the invoker in User instead of Member.
		rc.UserID = interactionUserID(i)
	}

	resp := b.dispatcher.Handle(context.Background(), tokens, rc, b.payload(i.GuildID))
	if resp == nil {
		// Discord requires an acknowledgement for every interaction.
		resp = &engine.Response{Content: "Nothing to do.", Ephemeral: true}
	}
	if err := respond(s, i, resp); err != nil {
		log.Printf("[ERR] Failed to respond to interaction: %v", err)
	}
}

// onMessageCreate handles prefixed text commands, e.g. "!mod kick @user".
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.CommandPrefix) {
		return
	}
	tokens := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.CommandPrefix))
	rc, err := b.requestContext(m.Member, m.ChannelID)
	if err != nil {
		log.Printf("[ERR] Failed to build request context: %v", err)
		return
	}
	if rc.UserID == "" {
		rc.UserID = m.Author.ID
	}

	resp := b.dispatcher.Handle(context.Background(), tokens, rc, b.payload(m.GuildID))
	if resp == nil {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, resp.Content); err != nil {
		log.Printf("[ERR] Failed to send message: %v", err)
	}
}

// interactionUserID returns the invoking user's ID regardless of whether the
// interaction arrived from a guild (Member set) or a DM (User set).
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// interactionTokens flattens a slash interaction into resolver tokens plus
// positional argument values.
func interactionTokens(i *discordgo.InteractionCreate) []string {
	data := i.ApplicationCommandData()
	tokens := []string{data.Name}
	opts := data.Options
	for len(opts) == 1 && (opts[0].Type == discordgo.ApplicationCommandOptionSubCommand ||
		opts[0].Type == discordgo.ApplicationCommandOptionSubCommandGroup) {
		tokens = append(tokens, opts[0].Name)
		opts = opts[0].Options
	}
	for _, o := range opts {
		tokens = append(tokens, optionValue(o))
	}
	return tokens
}

func optionValue(o *discordgo.ApplicationCommandInteractionDataOption) string {
	switch o.Type {
	case discordgo.ApplicationCommandOptionInteger:
		return fmt.Sprintf("%d", o.IntValue())
	case discordgo.ApplicationCommandOptionBoolean:
		return fmt.Sprintf("%t", o.BoolValue())
	case discordgo.ApplicationCommandOptionUser, discordgo.ApplicationCommandOptionChannel:
		return fmt.Sprintf("%v", o.Value)
	default:
		return o.StringValue()
	}
}
