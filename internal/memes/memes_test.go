package memes

import (
	"context"
	"errors"
	"testing"
	"time"

	"crobot/internal/guildcfg"
	"crobot/internal/store"
	logx "crobot/pkg/logx"
)

type stubFetcher struct {
	item *Item
	err  error
}

func (f *stubFetcher) Fetch(ctx context.Context) (*Item, error) {
	return f.item, f.err
}

type recordingPoster struct {
	posts []string // "guildID/channelID"
	err   error
}

func (p *recordingPoster) PostMeme(guildID, channelID string, item *Item) error {
	if p.err != nil {
		return p.err
	}
	p.posts = append(p.posts, guildID+"/"+channelID)
	return nil
}

var memeDefaults = guildcfg.Defaults{MemeInterval: 2 * time.Hour}

func newTestScheduler(t *testing.T, fetcher Fetcher, poster Poster) (*Scheduler, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Config{Driver: "file", Dir: t.TempDir()}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewScheduler(st, memeDefaults, fetcher, poster, logx.Nop()), st
}

func TestTickPostsAndAdvancesWatermark(t *testing.T) {
	fetcher := &stubFetcher{item: &Item{Title: "hi", ImageURL: "https://x/y.png"}}
	poster := &recordingPoster{}
	s, st := newTestScheduler(t, fetcher, poster)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	st.UpdateGuildNow("g1", func(o *guildcfg.Override) { o.MemeChannelID = "c1" })

	s.Tick(context.Background(), []string{"g1"})
	if len(poster.posts) != 1 || poster.posts[0] != "g1/c1" {
		t.Fatalf("posts = %v", poster.posts)
	}

	r := st.ResolveGuild("g1", memeDefaults)
	if !r.NextMemeTime.Equal(now.Add(2 * time.Hour)) {
		t.Fatalf("watermark = %s", r.NextMemeTime)
	}

	// Same tick time again: not due, no second post.
	s.Tick(context.Background(), []string{"g1"})
	if len(poster.posts) != 1 {
		t.Fatalf("posted while not due: %v", poster.posts)
	}

	// Past the watermark it fires again.
	s.now = func() time.Time { return now.Add(3 * time.Hour) }
	s.Tick(context.Background(), []string{"g1"})
	if len(poster.posts) != 2 {
		t.Fatalf("posts after interval = %v", poster.posts)
	}
}

func TestTickSkipsGuildWithoutChannel(t *testing.T) {
	fetcher := &stubFetcher{item: &Item{Title: "hi"}}
	poster := &recordingPoster{}
	s, _ := newTestScheduler(t, fetcher, poster)

	s.Tick(context.Background(), []string{"g1"})
	if len(poster.posts) != 0 {
		t.Fatalf("posted without a configured channel")
	}
}

func TestFetchFailureLeavesWatermarkUntouched(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("api down")}
	poster := &recordingPoster{}
	s, st := newTestScheduler(t, fetcher, poster)

	st.UpdateGuildNow("g1", func(o *guildcfg.Override) { o.MemeChannelID = "c1" })

	s.Tick(context.Background(), []string{"g1"})
	if len(poster.posts) != 0 {
		t.Fatalf("posted despite fetch failure")
	}
	r := st.ResolveGuild("g1", memeDefaults)
	if !r.NextMemeTime.IsZero() {
		t.Fatalf("watermark advanced on failure: %s", r.NextMemeTime)
	}

	// Recovery: next tick posts immediately.
	fetcher.err = nil
	fetcher.item = &Item{Title: "back"}
	s.Tick(context.Background(), []string{"g1"})
	if len(poster.posts) != 1 {
		t.Fatalf("did not recover after fetch failure")
	}
}

func TestPerGuildIsolation(t *testing.T) {
	fetcher := &stubFetcher{item: &Item{Title: "hi"}}
	poster := &recordingPoster{}
	s, st := newTestScheduler(t, fetcher, poster)

	st.UpdateGuildNow("g1", func(o *guildcfg.Override) { o.MemeChannelID = "c1" })
	st.UpdateGuildNow("g2", func(o *guildcfg.Override) { o.MemeChannelID = "c2" })

	// g1's post fails, g2's must still go out.
	poster.err = errors.New("channel gone")
	s.Tick(context.Background(), []string{"g1"})
	poster.err = nil
	s.Tick(context.Background(), []string{"g2"})
	if len(poster.posts) != 1 || poster.posts[0] != "g2/c2" {
		t.Fatalf("posts = %v", poster.posts)
	}

	// g1 stays due and posts once its failure clears.
	s.Tick(context.Background(), []string{"g1"})
	if len(poster.posts) != 2 {
		t.Fatalf("g1 did not recover: %v", poster.posts)
	}
}
