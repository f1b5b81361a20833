package discord

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Kick removes a member from the guild.
func (p *Payload) Kick(ctx context.Context, userID, reason string) error {
	if err := p.bot.dg.GuildMemberDeleteWithReason(p.guildID, mentionID(userID), reason); err != nil {
		return fmt.Errorf("failed to kick member: %w", err)
	}
	return nil
}

// Mute times a member out for the given duration.
func (p *Payload) Mute(ctx context.Context, userID string, duration time.Duration) error {
	until := time.Now().Add(duration)
	if err := p.bot.dg.GuildMemberTimeout(p.guildID, mentionID(userID), &until); err != nil {
		return fmt.Errorf("failed to time out member: %w", err)
	}
	return nil
}

// Purge bulk-deletes up to count recent messages in the channel and returns
// how many went away.
func (p *Payload) Purge(ctx context.Context, channelID string, count int) (int, error) {
	msgs, err := p.bot.dg.ChannelMessages(channelID, count, "", "", "")
	if err != nil {
		return 0, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	if err := p.bot.dg.ChannelMessagesBulkDelete(channelID, ids); err != nil {
		return 0, fmt.Errorf("failed to bulk delete: %w", err)
	}
	return len(ids), nil
}

// mentionID strips mention markup (<@123>, <@!123>) so text commands can
// pass mentions where slash commands pass raw IDs.
func mentionID(s string) string {
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimPrefix(s, "!")
	return strings.TrimSuffix(s, ">")
}
