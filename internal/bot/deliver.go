package bot

import (
	"context"
	"strings"

	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/stanbotdev/stanbot/internal/feed"
)

// DeliverRendering sends one rendered feed event to a destination chat. It
// satisfies feed.DeliverFunc and shares the outbound rate limiter with the
// command handlers.
func (b *Bot) DeliverRendering(ctx context.Context, channelID int64, r feed.Rendering) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	switch r.Kind {
	case feed.KindPlain:
		_, err := b.api.SendMessage(tu.Message(tu.ID(channelID), r.Text))
		return err

	case feed.KindEmbedWithLinks:
		text := formatEmbed(r.Embed) + "\n\n" + strings.Join(r.Links, "\n")
		_, err := b.api.SendMessage(tu.Message(tu.ID(channelID), text))
		return err

	default:
		if r.Embed.ImageURL != "" {
			photo := tu.Photo(tu.ID(channelID), tu.FileFromURL(r.Embed.ImageURL))
			photo.Caption = formatEmbed(r.Embed)
			_, err := b.api.SendPhoto(photo)
			return err
		}
		_, err := b.api.SendMessage(tu.Message(tu.ID(channelID), formatEmbed(r.Embed)))
		return err
	}
}

// formatEmbed flattens an embed into plain message text.
func formatEmbed(e feed.Embed) string {
	var sb strings.Builder
	sb.WriteString(e.Title)
	if e.Body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Body)
	}
	if e.FooterText != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.FooterText)
	}
	return sb.String()
}
