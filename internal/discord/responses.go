package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// respond delivers a dispatcher response over the interaction transport.
func respond(s *discordgo.Session, i *discordgo.InteractionCreate, resp *engine.Response) error {
	data := &discordgo.InteractionResponseData{Content: resp.Content}
	if resp.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// RespondEmbed sends a public embed response to an interaction.
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
}
