package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"

	"github.com/stanbotdev/stanbot/internal/observability"
)

// commandArgs returns the whitespace-separated arguments after the command
// word itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// send delivers a plain text message through the shared rate limiter.
func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.api.SendMessage(tu.Message(tu.ID(chatID), text)); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("cannot send message")
	}
}

// sendf is send with fmt-style formatting.
func (b *Bot) sendf(ctx context.Context, chatID int64, format string, args ...any) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.api.SendMessage(tu.Messagef(tu.ID(chatID), format, args...)); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("cannot send message")
	}
}

// modOnly wraps a handler so that only moderators reach it. Failed checks
// are counted against the command name.
func (b *Bot) modOnly(name string, h th.Handler) th.Handler {
	return func(bot *telego.Bot, update telego.Update) {
		if update.Message == nil || update.Message.From == nil {
			return
		}
		ctx := update.Context()
		chatID := update.Message.Chat.ID

		ok, err := b.community.IsModerator(ctx, update.Message.From.ID)
		if err != nil {
			log.Error().Err(err).Msg("moderator check failed")
			b.send(ctx, chatID, "Database error. Try again later.")
			observability.ObserveCommand(name, false)
			return
		}
		if !ok {
			b.send(ctx, chatID, "This command is restricted to moderators.")
			observability.ObserveCommand(name, false)
			return
		}
		h(bot, update)
	}
}

// finish records the command outcome metric and logs failures.
func finish(name string, err error) {
	if err != nil {
		log.Warn().Err(err).Str("command", name).Msg("command failed")
	}
	observability.ObserveCommand(name, err == nil)
}

// pluralized builds "Added 2 aliases." style phrases.
func pluralized(verb string, n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%s 1 %s.", verb, noun)
	}
	plural := noun + "s"
	if strings.HasSuffix(noun, "s") {
		plural = noun + "es"
	}
	return fmt.Sprintf("%s %d %s.", verb, n, plural)
}

// notifyAudit broadcasts a moderation audit line to every channel with
// auditing enabled. Lookup or send failures are logged and absorbed; audit
// delivery never blocks the command that triggered it.
func (b *Bot) notifyAudit(ctx context.Context, format string, args ...any) {
	chans, err := b.subs.AuditingChannels(ctx)
	if err != nil {
		log.Error().Err(err).Msg("auditing channel lookup failed")
		return
	}
	for _, ch := range chans {
		b.sendf(ctx, ch, format, args...)
	}
}

// joinOrNone renders a list for replies, with a placeholder when empty.
func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
