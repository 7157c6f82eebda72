package discord

import (
	"writer_digest_bot/internal/domain/chat"

	"github.com/bwmarrin/discordgo"
)

// toEmbed converts a card. Discord renders [label](url) links natively.
func toEmbed(c *chat.Card) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       c.Title,
		Description: c.Description,
		Color:       c.Color,
	}
	for _, f := range c.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if c.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: c.Footer}
	}
	return e
}
