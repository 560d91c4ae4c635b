// Package discord wraps the gateway session: event handlers, slash commands,
// embeds, and outbound sends. It holds no scheduling or progression logic of
// its own; state lives in the store and the engines.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"crobot/internal/guildcfg"
	"crobot/internal/memes"
	"crobot/internal/sessions"
	"crobot/internal/store"
	logx "crobot/pkg/logx"
)

type Config struct {
	Token          string
	PrimaryGuildID string // fast command sync target; commands also register globally
	SendRatePerSec int    // default 5
}

// Bot is the gateway adapter. All Discord API failures are caught and logged
// at this boundary; nothing here propagates a send error into the core.
type Bot struct {
	session *discordgo.Session
	cfg     Config
	log     logx.Logger

	st       *store.Store
	defaults guildcfg.Defaults
	registry *sessions.Registry

	limiter *rate.Limiter

	registeredCmds []*discordgo.ApplicationCommand
}

func New(cfg Config, st *store.Store, defaults guildcfg.Defaults, registry *sessions.Registry, log logx.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord: token is required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent

	rps := cfg.SendRatePerSec
	if rps <= 0 {
		rps = 5
	}

	b := &Bot{
		session:  s,
		cfg:      cfg,
		log:      log,
		st:       st,
		defaults: defaults,
		registry: registry,
		limiter:  rate.NewLimiter(rate.Limit(rps), rps),
	}

	s.AddHandler(b.onReady)
	s.AddHandler(b.onMessageCreate)
	s.AddHandler(b.onMemberJoin)
	s.AddHandler(b.onReactionAdd)
	s.AddHandler(b.onInteraction)

	return b, nil
}

// Start opens the gateway connection and registers slash commands.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}
	if err := b.registerCommands(); err != nil {
		// Command sync failures are survivable; the gateway is up.
		b.log.Error("slash command sync failed", logx.Err(err))
	}
	_ = ctx
	return nil
}

func (b *Bot) Stop(ctx context.Context) error {
	_ = ctx
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("gateway ready",
		logx.String("user", r.User.Username),
		logx.Int("guilds", len(r.Guilds)))
	if len(statusMessages) > 0 {
		if err := s.UpdateGameStatus(0, statusMessages[0]); err != nil {
			b.log.Warn("initial status update failed", logx.Err(err))
		}
	}
}

// GuildIDs lists the guilds the bot currently sits in.
func (b *Bot) GuildIDs() []string {
	state := b.session.State
	state.RLock()
	defer state.RUnlock()
	ids := make([]string, 0, len(state.Guilds))
	for _, g := range state.Guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// sendMessage is the throttled, error-absorbing send used by every outbound
// notification path.
func (b *Bot) sendMessage(channelID, content string) {
	b.waitSend()
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		b.log.Warn("message send failed", logx.String("channel", channelID), logx.Err(err))
	}
}

func (b *Bot) sendComplex(channelID string, msg *discordgo.MessageSend) {
	b.waitSend()
	if _, err := b.session.ChannelMessageSendComplex(channelID, msg); err != nil {
		b.log.Warn("message send failed", logx.String("channel", channelID), logx.Err(err))
	}
}

func (b *Bot) waitSend() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := b.limiter.Wait(ctx); err != nil {
		b.log.Debug("send limiter wait aborted", logx.Err(err))
	}
}

// member returns the guild member if cached or fetchable, nil otherwise.
func (b *Bot) member(guildID, userID string) *discordgo.Member {
	m, err := b.session.State.Member(guildID, userID)
	if err == nil && m != nil {
		return m
	}
	m, err = b.session.GuildMember(guildID, userID)
	if err != nil {
		return nil
	}
	return m
}

func (b *Bot) resolveGuild(guildID string) guildcfg.Resolved {
	return b.st.ResolveGuild(guildID, b.defaults)
}

// PostMeme implements memes.Poster.
func (b *Bot) PostMeme(guildID, channelID string, item *memes.Item) error {
	b.waitSend()
	embed := &discordgo.MessageEmbed{
		Title: item.Title,
		URL:   item.PostLink,
		Color: colorBlue,
		Image: &discordgo.MessageEmbedImage{URL: item.ImageURL},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("From r/%s by u/%s", item.Subreddit, item.Author),
		},
	}
	_, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: randomPersonality(),
		Embed:   embed,
	})
	if err != nil {
		return fmt.Errorf("post meme to %s: %w", channelID, err)
	}
	return nil
}
