package guildcfg

import (
	"encoding/json"
	"testing"
	"time"
)

var testDefaults = Defaults{
	WelcomeChannelID: "100",
	MemeChannelID:    "200",
	TwitchChannelID:  "300",
	AutoRoleID:       "400",
	MemeInterval:     2 * time.Hour,
}

func TestResolveNilOverride(t *testing.T) {
	r := Resolve(nil, testDefaults)
	if r.WelcomeChannelID != "100" || r.MemeChannelID != "200" {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if r.MemeInterval != 2*time.Hour {
		t.Fatalf("interval = %s", r.MemeInterval)
	}
	if !r.NextMemeTime.IsZero() {
		t.Fatalf("zero watermark expected, got %s", r.NextMemeTime)
	}
}

func TestResolvePartialOverride(t *testing.T) {
	o := &Override{MemeChannelID: "42"}
	r := Resolve(o, testDefaults)
	if r.MemeChannelID != "42" {
		t.Fatalf("override ignored: %q", r.MemeChannelID)
	}
	// Unset keys still fall through to defaults.
	if r.WelcomeChannelID != "100" || r.MemeInterval != 2*time.Hour {
		t.Fatalf("fallthrough broken: %+v", r)
	}
}

func TestResolveIntervalFloor(t *testing.T) {
	o := &Override{MemeIntervalSec: -5}
	r := Resolve(o, testDefaults)
	if r.MemeInterval != 2*time.Hour {
		t.Fatalf("negative interval not clamped to default: %s", r.MemeInterval)
	}
}

func TestSetMemeIntervalResetsWatermark(t *testing.T) {
	o := &Override{NextMemeTime: time.Now().Add(time.Hour).Unix()}
	o.SetMemeInterval(6 * time.Hour)
	if o.MemeIntervalSec != int64(6*3600) {
		t.Fatalf("interval sec = %d", o.MemeIntervalSec)
	}
	if o.NextMemeTime != 0 {
		t.Fatalf("watermark not reset")
	}
}

func TestWatchPhraseAddRemove(t *testing.T) {
	var o Override
	if !o.AddWatchPhrase("  Banana  ") {
		t.Fatalf("add failed")
	}
	if o.AddWatchPhrase("banana") {
		t.Fatalf("duplicate add reported true")
	}
	if len(o.WatchPhrases) != 1 || o.WatchPhrases[0] != "banana" {
		t.Fatalf("phrases = %v", o.WatchPhrases)
	}
	if !o.RemoveWatchPhrase("BANANA") {
		t.Fatalf("remove failed")
	}
	if o.RemoveWatchPhrase("banana") {
		t.Fatalf("removing absent phrase reported true")
	}
}

func TestLegacyNumericRecordDecodes(t *testing.T) {
	// Records written by the previous deployment carry IDs as JSON numbers
	// and next_meme_time as a float.
	in := []byte(`{
		"welcome_channel_id": 1319716313306365973,
		"meme_channel_id": 1319716313306365974,
		"mod_role_id": 1319716313306365975,
		"meme_interval": 7200,
		"next_meme_time": 1756640461.25
	}`)
	var o Override
	if err := json.Unmarshal(in, &o); err != nil {
		t.Fatalf("legacy record rejected: %v", err)
	}
	if o.WelcomeChannelID != "1319716313306365973" {
		t.Fatalf("snowflake digits lost: %q", o.WelcomeChannelID)
	}
	if o.MemeChannelID != "1319716313306365974" || o.ModRoleID != "1319716313306365975" {
		t.Fatalf("ids = %q %q", o.MemeChannelID, o.ModRoleID)
	}
	if o.MemeIntervalSec != 7200 {
		t.Fatalf("interval = %d", o.MemeIntervalSec)
	}
	if o.NextMemeTime != 1756640461 {
		t.Fatalf("watermark = %d", o.NextMemeTime)
	}

	// The rewrite comes out canonical: string IDs, integer seconds.
	out, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again Override
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.WelcomeChannelID != o.WelcomeChannelID || again.NextMemeTime != o.NextMemeTime {
		t.Fatalf("canonical rewrite lost data: %+v", again)
	}
}

func TestUnknownKeysSurviveRoundtrip(t *testing.T) {
	in := []byte(`{"meme_channel_id":"55","legacy_field":{"a":1},"bad_words":["X","x"]}`)
	var o Override
	if err := json.Unmarshal(in, &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.MemeChannelID != "55" {
		t.Fatalf("known key lost: %q", o.MemeChannelID)
	}
	if len(o.WatchPhrases) != 1 || o.WatchPhrases[0] != "x" {
		t.Fatalf("phrases not normalized: %v", o.WatchPhrases)
	}

	out, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if _, ok := m["legacy_field"]; !ok {
		t.Fatalf("unknown key dropped on write: %s", out)
	}
}
