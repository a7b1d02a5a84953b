package bot

import (
	"errors"

	"github.com/mymmrac/telego"

	"github.com/stanbotdev/stanbot/internal/services"
	"github.com/stanbotdev/stanbot/internal/sysutil"
)

// followHandler subscribes the current chat to a stream source:
// /follow <source_id> [handle]
func (b *Bot) followHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /follow <source_id> [handle]")
		finish("follow", nil)
		return
	}

	sourceID := args[0]
	handle := sourceID
	if len(args) >= 2 {
		handle = args[1]
	}

	if _, err := b.subs.EnsureAccount(ctx, sourceID, handle); err != nil {
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("follow", err)
		return
	}

	err := b.subs.Subscribe(ctx, sourceID, chatID)
	switch {
	case errors.Is(err, services.ErrAlreadySubscribed):
		b.sendf(ctx, chatID, "This chat already follows %s.", handle)
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.sendf(ctx, chatID, "Now following %s here.", handle)
	}
	finish("follow", err)
}

func (b *Bot) unfollowHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /unfollow <source_id>")
		finish("unfollow", nil)
		return
	}

	err := b.subs.Unsubscribe(ctx, args[0], chatID)
	switch {
	case errors.Is(err, services.ErrNotSubscribed):
		b.send(ctx, chatID, "This chat does not follow that source.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.send(ctx, chatID, "Unfollowed.")
	}
	finish("unfollow", err)
}

// followsHandler lists the sources this chat is subscribed to.
func (b *Bot) followsHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID

	subs, err := b.subs.All(ctx)
	if err != nil {
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("follows", err)
		return
	}
	var sources []string
	for _, s := range subs {
		if s.ChannelID == chatID {
			sources = append(sources, s.SourceID)
		}
	}
	b.sendf(ctx, chatID, "Followed sources: %s", joinOrNone(sources))
	finish("follows", nil)
}

// auditingHandler toggles moderation audit delivery for this chat:
// /auditing on|off
func (b *Bot) auditingHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /auditing on|off")
		finish("auditing", nil)
		return
	}

	enabled := sysutil.IsTruthy(args[0])
	if err := b.subs.SetAuditing(ctx, chatID, enabled); err != nil {
		b.send(ctx, chatID, "Database error. Try again later.")
		finish("auditing", err)
		return
	}
	if enabled {
		b.send(ctx, chatID, "Auditing messages enabled for this chat.")
	} else {
		b.send(ctx, chatID, "Auditing messages disabled for this chat.")
	}
	finish("auditing", nil)
}
