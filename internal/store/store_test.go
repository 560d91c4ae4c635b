package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crobot/internal/guildcfg"
	"crobot/internal/leveling"
	logx "crobot/pkg/logx"
)

func openTemp(t *testing.T, dir string) *Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Dir: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return st
}

func TestOpenEmptyDirStartsFresh(t *testing.T) {
	st := openTemp(t, t.TempDir())
	defer st.Close()

	if _, ok := st.User("u1"); ok {
		t.Fatalf("user present in empty store")
	}
	if len(st.Links()) != 0 || len(st.Birthdays()) != 0 {
		t.Fatalf("non-empty documents in empty store")
	}
}

func TestRoundtripAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	st := openTemp(t, dir)
	st.UpdateUser("u1", func(r *leveling.Record) {
		leveling.GrantXP(r, 250)
	})
	st.SetLink("u1", "StreamerName")
	st.SetBirthday("u1", "1990-06-15")
	st.RecordWarning("g1", "u1")
	st.UpdateGuildNow("g1", func(o *guildcfg.Override) {
		o.MemeChannelID = "123"
	})
	if err := st.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	st2 := openTemp(t, dir)
	defer st2.Close()

	rec, ok := st2.User("u1")
	if !ok || rec.Level != 2 || rec.XP != 150 {
		t.Fatalf("user not restored: %+v ok=%v", rec, ok)
	}
	if h, _ := st2.Link("u1"); h != "streamername" {
		t.Fatalf("link = %q", h)
	}
	if b, _ := st2.Birthday("u1"); b != "1990-06-15" {
		t.Fatalf("birthday = %q", b)
	}
	if st2.WarningCount("g1", "u1") != 1 {
		t.Fatalf("warnings = %d", st2.WarningCount("g1", "u1"))
	}
	r := st2.ResolveGuild("g1", guildcfg.Defaults{})
	if r.MemeChannelID != "123" {
		t.Fatalf("guild config = %+v", r)
	}
}

func TestLegacyGuildConfigCarriesOver(t *testing.T) {
	// A guild_config.json written by the previous deployment: numeric IDs
	// and a float watermark. It must load, not be dropped as malformed.
	dir := t.TempDir()
	legacy := `{"871657463980658318":{"welcome_channel_id":1319716313306365973,"meme_interval":7200,"next_meme_time":1756640461.5,"bad_words":["spoiler"]}}`
	if err := os.WriteFile(filepath.Join(dir, "guild_config.json"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st := openTemp(t, dir)
	defer st.Close()

	r := st.ResolveGuild("871657463980658318", guildcfg.Defaults{})
	if r.WelcomeChannelID != "1319716313306365973" {
		t.Fatalf("welcome channel = %q", r.WelcomeChannelID)
	}
	if r.MemeInterval != 2*time.Hour {
		t.Fatalf("interval = %s", r.MemeInterval)
	}
	if r.NextMemeTime.Unix() != 1756640461 {
		t.Fatalf("watermark = %s", r.NextMemeTime)
	}
	if len(r.WatchPhrases) != 1 || r.WatchPhrases[0] != "spoiler" {
		t.Fatalf("phrases = %v", r.WatchPhrases)
	}
}

func TestMalformedDocumentFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	st := openTemp(t, dir)
	defer st.Close()
	if _, ok := st.User("u1"); ok {
		t.Fatalf("got user from malformed document")
	}
}

func TestWriteThroughDoesNotWaitForFlush(t *testing.T) {
	dir := t.TempDir()
	st := openTemp(t, dir)

	st.SetLink("u1", "handle")
	// No Flush or Close: the links document must already be on disk.
	data, err := os.ReadFile(filepath.Join(dir, "twitch_links.json"))
	if err != nil {
		t.Fatalf("links file not written: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("links file empty")
	}
	st.Close()
}

func TestFlushPersistsDirtyUsers(t *testing.T) {
	dir := t.TempDir()
	st := openTemp(t, dir)

	st.UpdateUser("u1", func(r *leveling.Record) {
		leveling.GrantXP(r, 5)
	})
	if _, err := os.Stat(filepath.Join(dir, "users.json")); err == nil {
		t.Fatalf("users flushed before autosave")
	}
	st.Flush()
	if _, err := os.Stat(filepath.Join(dir, "users.json")); err != nil {
		t.Fatalf("users not flushed: %v", err)
	}
	st.Close()
}

func TestUpdateUserNowWritesImmediately(t *testing.T) {
	dir := t.TempDir()
	st := openTemp(t, dir)

	st.UpdateUserNow("u1", func(r *leveling.Record) {
		leveling.AddPrestige(r)
	})
	// No Flush or Close: the users document must already be on disk.
	if _, err := os.Stat(filepath.Join(dir, "users.json")); err != nil {
		t.Fatalf("users file not written: %v", err)
	}
	st.Close()

	reopened := openTemp(t, dir)
	defer reopened.Close()
	rec, ok := reopened.User("u1")
	if !ok || rec.Prestige != 1 {
		t.Fatalf("prestige not persisted: ok=%v rec=%+v", ok, rec)
	}
}

func TestDeleteUser(t *testing.T) {
	st := openTemp(t, t.TempDir())
	defer st.Close()

	st.EnsureUser("u1")
	if !st.DeleteUser("u1") {
		t.Fatalf("delete reported false for existing user")
	}
	if st.DeleteUser("u1") {
		t.Fatalf("delete reported true for missing user")
	}
}

func TestGuildWatermarkSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	next := time.Now().Add(time.Hour).Unix()

	st := openTemp(t, dir)
	st.UpdateGuild("g1", func(o *guildcfg.Override) {
		o.MemeChannelID = "55"
		o.NextMemeTime = next
	})
	st.SaveGuilds()
	st.Close()

	st2 := openTemp(t, dir)
	defer st2.Close()
	r := st2.ResolveGuild("g1", guildcfg.Defaults{})
	if r.NextMemeTime.Unix() != next {
		t.Fatalf("watermark = %s", r.NextMemeTime)
	}
}
