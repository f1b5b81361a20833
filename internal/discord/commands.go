package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// syncCommands reconciles a guild's slash commands with the command tree:
// obsolete remote commands are deleted, commands whose definition hash
// changed are re-registered.
func (b *Bot) syncCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, _ := b.dg.ApplicationCommands(appID, guildID)
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	local := b.commandDefinitions()
	b.deleteObsolete(appID, guildID, remoteByName, local)
	b.upsertChanged(appID, guildID, local)
	return nil
}

// commandDefinitions builds ApplicationCommand definitions for every enabled
// root; children become subcommand options.
func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, root := range b.dispatcher.Tree().Roots() {
		if !root.Enabled() {
			continue
		}
		defs = append(defs, nodeDefinition(root))
	}
	return defs
}

func nodeDefinition(root *engine.Node) *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Name:        root.Name(),
		Description: root.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
	if children := root.Children(); len(children) > 0 {
		for _, c := range children {
			def.Options = append(def.Options, &discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        c.Name(),
				Description: c.Description(),
				Options:     optionDefinitions(c.Options()),
			})
		}
		return def
	}
	def.Options = optionDefinitions(root.Options())
	return def
}

func optionDefinitions(opts []engine.Option) []*discordgo.ApplicationCommandOption {
	var out []*discordgo.ApplicationCommandOption
	for _, o := range opts {
		def := &discordgo.ApplicationCommandOption{
			Name:        o.Name,
			Description: o.Description,
			Type:        optionType(o.Type),
			Required:    o.Required,
		}
		for _, choice := range o.Choices {
			def.Choices = append(def.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  choice,
				Value: choice,
			})
		}
		out = append(out, def)
	}
	return out
}

func optionType(t engine.OptionType) discordgo.ApplicationCommandOptionType {
	switch t {
	case engine.OptionInteger:
		return discordgo.ApplicationCommandOptionInteger
	case engine.OptionBoolean:
		return discordgo.ApplicationCommandOptionBoolean
	case engine.OptionUser:
		return discordgo.ApplicationCommandOptionUser
	case engine.OptionChannel:
		return discordgo.ApplicationCommandOptionChannel
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// deleteObsolete removes remote commands no longer present locally.
func (b *Bot) deleteObsolete(appID, guildID string, remote map[string]*discordgo.ApplicationCommand, local []*discordgo.ApplicationCommand) {
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	hashes := loadCommandHashes(guildID)
	for name, rc := range remote {
		if _, exists := localNames[name]; exists {
			continue
		}
		log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, name)
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, name, err)
		} else {
			delete(hashes, name)
		}
	}
	saveCommandHashes(guildID, hashes)
}

// upsertChanged creates or updates commands whose hash differs from the
// cached value.
func (b *Bot) upsertChanged(appID, guildID string, defs []*discordgo.ApplicationCommand) {
	cached := loadCommandHashes(guildID)

	var changed []*discordgo.ApplicationCommand
	newHashes := make(map[string]string, len(defs))
	for _, d := range defs {
		h := hashCommand(d)
		newHashes[d.Name] = h
		if cached[d.Name] != h {
			changed = append(changed, d)
		}
	}
	if len(changed) == 0 {
		return
	}

	log.Printf("[INFO] [%s] Registering %d changed command(s)...", guildID, len(changed))
	for _, d := range changed {
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d); err != nil {
			log.Printf("[ERR] [%s] Failed to register %s: %v", guildID, d.Name, err)
			delete(newHashes, d.Name)
		} else {
			log.Printf("[DONE] [%s] Registered: %s", guildID, d.Name)
		}
		time.Sleep(25 * time.Millisecond) // stay well under Discord's rate limit
	}

	for k, v := range newHashes {
		cached[k] = v
	}
	saveCommandHashes(guildID, cached)
}

// appID returns the bot's application ID, fetching from Discord if not cached
// in State.
func (b *Bot) appID() (string, error) {
	if id := b.dg.State.User.ID; id != "" {
		return id, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

// --- Command hash cache ---

func commandHashPath(guildID string) string {
	return filepath.Join("data", "commands", guildID+".json")
}

func loadCommandHashes(guildID string) map[string]string {
	out := make(map[string]string)
	if data, err := os.ReadFile(commandHashPath(guildID)); err == nil {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

func saveCommandHashes(guildID string, hashes map[string]string) {
	path := commandHashPath(guildID)
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	if data, err := json.MarshalIndent(hashes, "", "  "); err == nil {
		_ = os.WriteFile(path, data, 0644)
	}
}

// hashCommand returns a deterministic SHA-1 of a command's stable fields, so
// unchanged commands skip re-registration.
func hashCommand(c *discordgo.ApplicationCommand) string {
	stable := map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]interface{} {
	out := make([]map[string]interface{}, len(opts))
	for i, o := range opts {
		entry := map[string]interface{}{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]interface{}, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]interface{}{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
