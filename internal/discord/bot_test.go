package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestInteractionTokensFlattensSubcommand(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "mod",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Name: "kick",
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "123"},
						{Name: "reason", Type: discordgo.ApplicationCommandOptionString, Value: "spam"},
					},
				},
			},
		},
	}}
	assert.Equal(t, []string{"mod", "kick", "123", "spam"}, interactionTokens(i))
}

func TestInteractionTokensPlainCommand(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "roll",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "dice", Type: discordgo.ApplicationCommandOptionString, Value: "2d6"},
			},
		},
	}}
	assert.Equal(t, []string{"roll", "2d6"}, interactionTokens(i))
}

func TestInteractionTokensInteger(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "mod",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Name: "purge",
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(25)},
					},
				},
			},
		},
	}}
	assert.Equal(t, []string{"mod", "purge", "25"}, interactionTokens(i))
}

func TestInteractionUserID(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "42"}},
	}}
	assert.Equal(t, "42", interactionUserID(guild))

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "43"},
	}}
	assert.Equal(t, "43", interactionUserID(dm))

	assert.Equal(t, "", interactionUserID(&discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{},
	}))
}

func TestMentionID(t *testing.T) {
	assert.Equal(t, "123", mentionID("<@123>"))
	assert.Equal(t, "123", mentionID("<@!123>"))
	assert.Equal(t, "123", mentionID("123"))
}
