// Package memes drives the per-guild recurring post scheduler: each guild
// carries a persisted "next eligible time" watermark and an interval, and a
// post is dispatched when the watermark passes.
package memes

import (
	"context"
	"time"

	"crobot/internal/guildcfg"
	"crobot/internal/store"
	logx "crobot/pkg/logx"
)

// Item is one fetched content record.
type Item struct {
	Title     string
	PostLink  string
	ImageURL  string
	Subreddit string
	Author    string
}

// Fetcher retrieves one content item. Failures are expected and simply leave
// the guild eligible on the next tick.
type Fetcher interface {
	Fetch(ctx context.Context) (*Item, error)
}

// Poster dispatches a post into a guild channel.
type Poster interface {
	PostMeme(guildID, channelID string, item *Item) error
}

// Scheduler advances watermarks guild by guild. One guild's failure never
// blocks the remaining guilds in the same tick.
type Scheduler struct {
	log      logx.Logger
	st       *store.Store
	defaults guildcfg.Defaults
	fetcher  Fetcher
	poster   Poster

	now func() time.Time
}

func NewScheduler(st *store.Store, defaults guildcfg.Defaults, fetcher Fetcher, poster Poster, log logx.Logger) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Scheduler{
		log:      log,
		st:       st,
		defaults: defaults,
		fetcher:  fetcher,
		poster:   poster,
		now:      time.Now,
	}
}

// Tick processes every guild once. The guild config document is saved at
// most once per tick, after all watermark advances.
func (s *Scheduler) Tick(ctx context.Context, guildIDs []string) {
	now := s.now()
	advanced := false

	for _, gid := range guildIDs {
		if ctx.Err() != nil {
			break
		}
		if s.tickGuild(ctx, gid, now) {
			advanced = true
		}
	}

	if advanced {
		s.st.SaveGuilds()
	}
}

// tickGuild reports whether the guild's watermark advanced.
func (s *Scheduler) tickGuild(ctx context.Context, guildID string, now time.Time) bool {
	cfg := s.st.ResolveGuild(guildID, s.defaults)
	if cfg.MemeChannelID == "" {
		return false
	}
	if now.Before(cfg.NextMemeTime) {
		return false
	}

	item, err := s.fetcher.Fetch(ctx)
	if err != nil {
		// Watermark untouched: the guild stays eligible next tick.
		s.log.Warn("meme fetch failed", logx.String("guild", guildID), logx.Err(err))
		return false
	}

	if err := s.poster.PostMeme(guildID, cfg.MemeChannelID, item); err != nil {
		s.log.Warn("meme post failed", logx.String("guild", guildID), logx.Err(err))
		return false
	}

	next := now.Add(cfg.MemeInterval).Unix()
	s.st.UpdateGuild(guildID, func(o *guildcfg.Override) {
		o.NextMemeTime = next
	})
	s.log.Info("meme posted",
		logx.String("guild", guildID),
		logx.String("title", item.Title),
		logx.Time("next", time.Unix(next, 0)))
	return true
}
