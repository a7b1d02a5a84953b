// Package bot implements the Telegram command surface: taxonomy curation,
// link curation, feed subscriptions, and community commands. Handlers are
// thin: parse arguments, call a service, format the reply. All outbound
// sends go through a shared rate limiter.
package bot

import (
	"errors"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/stanbotdev/stanbot/internal/counters"
	"github.com/stanbotdev/stanbot/internal/services"
)

var (
	ErrGetMe          = errors.New("cannot retrieve api user")
	ErrUpdatesChannel = errors.New("cannot get updates channel")
	ErrHandlerInit    = errors.New("cannot initialize handler")
)

// Deps bundles everything the bot needs beyond the Telegram API client.
type Deps struct {
	Registry  *services.RegistryService
	Links     *services.LinkService
	Subs      *services.SubscriptionService
	Community *services.CommunityService
	Tracker   *counters.Tracker

	// SendRate and SendBurst size the outbound token bucket.
	SendRate  float64
	SendBurst int

	// LeaderboardSize is the default number of rows in leaderboard replies.
	LeaderboardSize int
}

// Bot owns the handler registration and the outbound send path.
type Bot struct {
	api       *telego.Bot
	registry  *services.RegistryService
	links     *services.LinkService
	subs      *services.SubscriptionService
	community *services.CommunityService
	tracker   *counters.Tracker

	limiter         *rate.Limiter
	leaderboardSize int
}

// New assembles a Bot from an API client and its dependencies.
func New(api *telego.Bot, d Deps) *Bot {
	size := d.LeaderboardSize
	if size < 1 {
		size = 10
	}
	return &Bot{
		api:             api,
		registry:        d.Registry,
		links:           d.Links,
		subs:            d.Subs,
		community:       d.Community,
		tracker:         d.Tracker,
		limiter:         rate.NewLimiter(rate.Limit(d.SendRate), d.SendBurst),
		leaderboardSize: size,
	}
}

// Run starts long polling and blocks until the handler loop stops.
func (b *Bot) Run() error {
	botUser, err := b.api.GetMe()
	if err != nil {
		log.Error().Err(err).Msg("cannot retrieve api user")

		return ErrGetMe
	}

	log.Info().
		Int64("id", botUser.ID).
		Str("username", botUser.Username).
		Msg("running bot as")

	updates, err := b.api.UpdatesViaLongPolling(nil)
	if err != nil {
		log.Error().Err(err).Msg("cannot get update channel")

		return ErrUpdatesChannel
	}

	bh, err := th.NewBotHandler(b.api, updates)
	if err != nil {
		log.Error().Err(err).Msg("cannot initialize bot handler")

		return ErrHandlerInit
	}

	defer bh.Stop()
	defer b.api.StopLongPolling()

	bh.Use(b.activityMiddleware)

	// Taxonomy
	bh.Handle(b.modOnly("addgroup", b.addGroupHandler), th.CommandEqual("addgroup"))
	bh.Handle(b.modOnly("delgroup", b.delGroupHandler), th.CommandEqual("delgroup"))
	bh.Handle(b.addGroupAliasHandler, th.CommandEqual("addgroupalias"))
	bh.Handle(b.modOnly("delgroupalias", b.delGroupAliasHandler), th.CommandEqual("delgroupalias"))
	bh.Handle(b.modOnly("addmember", b.addMemberHandler), th.CommandEqual("addmember"))
	bh.Handle(b.modOnly("delmember", b.delMemberHandler), th.CommandEqual("delmember"))
	bh.Handle(b.addMemberAliasHandler, th.CommandEqual("addmemberalias"))
	bh.Handle(b.modOnly("delmemberalias", b.delMemberAliasHandler), th.CommandEqual("delmemberalias"))
	bh.Handle(b.modOnly("addtag", b.addTagHandler), th.CommandEqual("addtag"))
	bh.Handle(b.modOnly("deltag", b.delTagHandler), th.CommandEqual("deltag"))
	bh.Handle(b.addTagAliasHandler, th.CommandEqual("addtagalias"))
	bh.Handle(b.modOnly("deltagalias", b.delTagAliasHandler), th.CommandEqual("deltagalias"))
	bh.Handle(b.aliasesHandler, th.CommandEqual("aliases"))
	bh.Handle(b.groupsHandler, th.CommandEqual("groups"))
	bh.Handle(b.membersHandler, th.CommandEqual("members"))
	bh.Handle(b.tagsHandler, th.CommandEqual("tags"))

	// Links
	bh.Handle(b.addLinkHandler, th.CommandEqual("addlink"))
	bh.Handle(b.modOnly("removelink", b.removeLinkHandler), th.CommandEqual("removelink"))
	bh.Handle(b.tagLinkHandler, th.CommandEqual("tag"))
	bh.Handle(b.untagLinkHandler, th.CommandEqual("untag"))
	bh.Handle(b.randomHandler, th.CommandEqual("random"))
	bh.Handle(b.recentHandler, th.CommandEqual("recent"))
	bh.Handle(b.taggedHandler, th.CommandEqual("tagged"))
	bh.Handle(b.memberTagsHandler, th.CommandEqual("membertags"))

	// Feed subscriptions
	bh.Handle(b.modOnly("follow", b.followHandler), th.CommandEqual("follow"))
	bh.Handle(b.modOnly("unfollow", b.unfollowHandler), th.CommandEqual("unfollow"))
	bh.Handle(b.followsHandler, th.CommandEqual("follows"))
	bh.Handle(b.modOnly("auditing", b.auditingHandler), th.CommandEqual("auditing"))

	// Community
	bh.Handle(b.leaderboardHandler, th.CommandEqual("leaderboard"))
	bh.Handle(b.profileHandler, th.CommandEqual("profile"))
	bh.Handle(b.statsHandler, th.CommandEqual("stats"))
	bh.Handle(b.modOnly("merge", b.mergeHandler), th.CommandEqual("merge"))
	bh.Handle(b.modOnly("addmod", b.addModHandler), th.CommandEqual("addmod"))
	bh.Handle(b.modOnly("delmod", b.delModHandler), th.CommandEqual("delmod"))
	bh.Handle(b.modOnly("addcommand", b.addCommandHandler), th.CommandEqual("addcommand"))
	bh.Handle(b.modOnly("delcommand", b.delCommandHandler), th.CommandEqual("delcommand"))
	bh.Handle(b.commandsHandler, th.CommandEqual("commands"))

	// Any other /command falls through to the custom command table.
	bh.Handle(b.customCommandHandler, th.AnyCommand())

	bh.Start()

	return nil
}

// activityMiddleware awards one XP for every handled message.
func (b *Bot) activityMiddleware(bot *telego.Bot, update telego.Update, next th.Handler) {
	if update.Message != nil && update.Message.From != nil {
		b.tracker.AddXP(update.Message.From.ID, 1)
	}
	next(bot, update)
}
