package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// capabilityBits maps the coarse capability tags used in module policies to
// Discord permission bits.
var capabilityBits = map[string]int64{
	"kick":            discordgo.PermissionKickMembers,
	"ban":             discordgo.PermissionBanMembers,
	"mute":            discordgo.PermissionModerateMembers,
	"manage-messages": discordgo.PermissionManageMessages,
	"manage-channels": discordgo.PermissionManageChannels,
	"manage-roles":    discordgo.PermissionManageRoles,
	"admin":           discordgo.PermissionAdministrator,
}

// requestContext builds the engine's request context from a guild member and
// channel: identity, roles, channel, parent category, and the capability set
// derived from the member's effective channel permissions.
func (b *Bot) requestContext(m *discordgo.Member, channelID string) (*engine.RequestContext, error) {
	rc := &engine.RequestContext{
		ChannelID:    channelID,
		Capabilities: map[string]bool{},
	}
	if m != nil {
		rc.Roles = m.Roles
		if m.User != nil {
			rc.UserID = m.User.ID
		}
	}

	if ch, err := b.channel(channelID); err == nil {
		rc.CategoryID = ch.ParentID
	}

	if rc.UserID != "" {
		perms, err := b.dg.UserChannelPermissions(rc.UserID, channelID)
		if err != nil {
			return nil, fmt.Errorf("failed to get member permissions: %w", err)
		}
		admin := perms&discordgo.PermissionAdministrator != 0
		for tag, bit := range capabilityBits {
			rc.Capabilities[tag] = admin || perms&bit != 0
		}
	}
	return rc, nil
}

func (b *Bot) channel(channelID string) (*discordgo.Channel, error) {
	if ch, err := b.dg.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return b.dg.Channel(channelID)
}

// payload is the adapter data handed to executors: it exposes the platform
// surfaces feature modules assert for (moderation, latency).
func (b *Bot) payload(guildID string) *Payload {
	return &Payload{bot: b, guildID: guildID}
}

// Payload is the Discord-side Invocation.Data value.
type Payload struct {
	bot     *Bot
	guildID string
}

// Latency reports the gateway heartbeat round-trip.
func (p *Payload) Latency() time.Duration {
	return p.bot.dg.HeartbeatLatency()
}
