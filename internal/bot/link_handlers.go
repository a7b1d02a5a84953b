package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/stanbotdev/stanbot/internal/services"
)

func (b *Bot) addLinkHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 3 {
		b.send(ctx, chatID, "Usage: /addlink <url> <group> <member> [member ...]")
		finish("addlink", nil)
		return
	}

	userID := update.Message.From.ID
	_, err := b.links.Add(ctx, args[0], args[1], args[2:], userID)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[1])
	case errors.Is(err, services.ErrMemberNotFound):
		b.send(ctx, chatID, "One of the member references does not match anyone in that group.")
	case errors.Is(err, services.ErrLinkExists):
		b.send(ctx, chatID, "That link is already curated.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.tracker.AddContribution(userID, 1)
		b.send(ctx, chatID, "Link added. Thanks for contributing!")
	}
	finish("addlink", err)
}

func (b *Bot) removeLinkHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /removelink <url> [group member]")
		finish("removelink", nil)
		return
	}

	var err error
	if len(args) >= 3 {
		err = b.links.Remove(ctx, args[1], args[2], args[0])
	} else {
		err = b.links.ForceRemove(ctx, args[0])
	}
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[1])
	case errors.Is(err, services.ErrMemberNotFound):
		b.sendf(ctx, chatID, "No member matches %q in that group.", args[2])
	case errors.Is(err, services.ErrLinkNotFound):
		b.send(ctx, chatID, "No such curated link.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.send(ctx, chatID, "Link removed.")
		b.notifyAudit(ctx, "Audit: user %d removed link %s.", update.Message.From.ID, args[0])
	}
	finish("removelink", err)
}

func (b *Bot) tagLinkHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /tag <url> <tag> [tag ...]")
		finish("tag", nil)
		return
	}

	applied, unknown, err := b.links.Tag(ctx, args[0], args[1:])
	switch {
	case errors.Is(err, services.ErrLinkNotFound):
		b.send(ctx, chatID, "No such curated link.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		reply := pluralized("Tagged with", len(applied.Added), "tag")
		if len(applied.Duplicates) > 0 {
			reply += " Already tagged: " + strings.Join(applied.Duplicates, ", ") + "."
		}
		if len(unknown.Missing) > 0 {
			reply += " Unknown tags: " + strings.Join(unknown.Missing, ", ") + "."
		}
		b.send(ctx, chatID, reply)
	}
	finish("tag", err)
}

func (b *Bot) untagLinkHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /untag <url> <tag> [tag ...]")
		finish("untag", nil)
		return
	}

	res, err := b.links.Untag(ctx, args[0], args[1:])
	switch {
	case errors.Is(err, services.ErrLinkNotFound):
		b.send(ctx, chatID, "No such curated link.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		reply := pluralized("Removed", len(res.Removed), "tag")
		if len(res.Missing) > 0 {
			reply += " Not present: " + strings.Join(res.Missing, ", ") + "."
		}
		b.send(ctx, chatID, reply)
	}
	finish("untag", err)
}

// randomHandler replies with a random curated link. Optional scoping:
// /random, /random <group> <member>, /random <group> <member> <tag>, or
// /random tag <tag>.
func (b *Bot) randomHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	var groupRef, memberRef, tagRef string
	switch {
	case len(args) == 2 && services.Normalize(args[0]) == "tag":
		tagRef = args[1]
	case len(args) >= 3:
		groupRef, memberRef, tagRef = args[0], args[1], args[2]
	case len(args) == 2:
		groupRef, memberRef = args[0], args[1]
	case len(args) == 1:
		b.send(ctx, chatID, "Usage: /random [<group> <member> [tag]] or /random tag <tag>")
		finish("random", nil)
		return
	}

	link, err := b.links.Random(ctx, groupRef, memberRef, tagRef)
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrTagNotFound):
		b.send(ctx, chatID, "Nothing matches that reference.")
	case errors.Is(err, services.ErrLinkNotFound):
		b.send(ctx, chatID, "No curated links there yet.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	default:
		b.send(ctx, chatID, link.URL)
	}
	finish("random", err)
}

func (b *Bot) recentHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /recent <group> <member> [count]")
		finish("recent", nil)
		return
	}

	n := 5
	if len(args) >= 3 {
		if v, err := strconv.Atoi(args[2]); err == nil && v > 0 {
			n = v
		}
	}

	urls, total, err := b.links.Recent(ctx, args[0], args[1], n)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[0])
	case errors.Is(err, services.ErrMemberNotFound):
		b.sendf(ctx, chatID, "No member matches %q in that group.", args[1])
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	case len(urls) == 0:
		b.send(ctx, chatID, "No curated links there yet.")
	default:
		b.sendf(ctx, chatID, "Latest %d of %d:\n%s", len(urls), total, strings.Join(urls, "\n"))
	}
	finish("recent", err)
}

// taggedHandler lists links carrying a tag: /tagged <tag> [group member].
func (b *Bot) taggedHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 1 {
		b.send(ctx, chatID, "Usage: /tagged <tag> [group member]")
		finish("tagged", nil)
		return
	}

	var groupRef, memberRef string
	if len(args) >= 3 {
		groupRef, memberRef = args[1], args[2]
	}

	urls, err := b.links.WithTag(ctx, args[0], groupRef, memberRef, 10)
	switch {
	case errors.Is(err, services.ErrTagNotFound),
		errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		b.send(ctx, chatID, "Nothing matches that reference.")
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	case len(urls) == 0:
		b.send(ctx, chatID, "No curated links there yet.")
	default:
		b.send(ctx, chatID, strings.Join(urls, "\n"))
	}
	finish("tagged", err)
}

// memberTagsHandler shows a member's tag usage: /membertags <group> <member>.
func (b *Bot) memberTagsHandler(bot *telego.Bot, update telego.Update) {
	ctx := update.Context()
	chatID := update.Message.Chat.ID
	args := commandArgs(update.Message.Text)

	if len(args) < 2 {
		b.send(ctx, chatID, "Usage: /membertags <group> <member>")
		finish("membertags", nil)
		return
	}

	counts, err := b.links.TagBreakdown(ctx, args[0], args[1])
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		b.sendf(ctx, chatID, "No group matches %q.", args[0])
	case errors.Is(err, services.ErrMemberNotFound):
		b.sendf(ctx, chatID, "No member matches %q in that group.", args[1])
	case err != nil:
		b.send(ctx, chatID, "Database error. Try again later.")
	case len(counts) == 0:
		b.send(ctx, chatID, "No tagged links for that member yet.")
	default:
		lines := make([]string, 0, len(counts))
		for _, c := range counts {
			lines = append(lines, fmt.Sprintf("%s: %d", c.Tag, c.Links))
		}
		b.send(ctx, chatID, strings.Join(lines, "\n"))
	}
	finish("membertags", err)
}
