package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
discord:
  primary_guild_id: "123"
  send_rate_per_sec: 3
logging:
  level: debug
  console: true
storage:
  driver: file
  dir: ./data
jobs:
  twitch_poll: 45s
  birthday_cron: "30 8 * * *"
fallback:
  meme_channel_id: "900"
  meme_interval: 6h
`)
	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Discord.PrimaryGuildID != "123" || cfg.Discord.SendRatePerSec != 3 {
		t.Fatalf("discord = %+v", cfg.Discord)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.Jobs.TwitchPoll != "45s" || cfg.Jobs.BirthdayCron != "30 8 * * *" {
		t.Fatalf("jobs = %+v", cfg.Jobs)
	}
	if cfg.Fallback.MemeChannelID != "900" || cfg.Fallback.MemeInterval != "6h" {
		t.Fatalf("fallback = %+v", cfg.Fallback)
	}
	if m.Get() != cfg {
		t.Fatalf("Get did not return committed config")
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}},"discord":{},"storage":{},"jobs":{}}`)
	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "config.yaml", `
logging:
  level: info
  consle: true
`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatalf("typo'd key accepted")
	}
}

func TestLoadRejectsTrailingData(t *testing.T) {
	path := writeFile(t, "config.json", `{"logging":{"level":"info","console":true,"file":{"enabled":false,"path":""}}}{"extra":1}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatalf("trailing JSON accepted")
	}
}

func TestJobsResolve(t *testing.T) {
	j := JobsConfig{TwitchPoll: "45s", BirthdayCron: "30 8 * * *"}
	cad, err := j.Resolve(DefaultJobs())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cad.TwitchPoll != 45*time.Second {
		t.Fatalf("twitch poll = %s", cad.TwitchPoll)
	}
	// Unset fields keep their defaults.
	if cad.Autosave != 2*time.Minute || cad.StatusCron != "0 0 * * *" {
		t.Fatalf("defaults lost: %+v", cad)
	}
	if cad.BirthdayCron != "30 8 * * *" {
		t.Fatalf("birthday cron = %q", cad.BirthdayCron)
	}

	if _, err := (JobsConfig{Heartbeat: "soon"}).Resolve(DefaultJobs()); err == nil {
		t.Fatalf("bad duration accepted")
	}
	if _, err := (JobsConfig{Autosave: "-2m"}).Resolve(DefaultJobs()); err == nil {
		t.Fatalf("negative duration accepted")
	}
}

func TestCallTimeouts(t *testing.T) {
	d, err := TwitchConfig{}.CallTimeout()
	if err != nil || d != 10*time.Second {
		t.Fatalf("twitch default: %s, %v", d, err)
	}
	d, err = MemeAPIConfig{Timeout: "3s"}.CallTimeout()
	if err != nil || d != 3*time.Second {
		t.Fatalf("meme api explicit: %s, %v", d, err)
	}
	if _, err := (TwitchConfig{Timeout: "fast"}).CallTimeout(); err == nil {
		t.Fatalf("bad timeout accepted")
	}
}

func TestFallbackInterval(t *testing.T) {
	d, err := FallbackConfig{}.Interval(2 * time.Hour)
	if err != nil || d != 2*time.Hour {
		t.Fatalf("default: %s, %v", d, err)
	}
	d, err = FallbackConfig{MemeInterval: "6h"}.Interval(2 * time.Hour)
	if err != nil || d != 6*time.Hour {
		t.Fatalf("explicit: %s, %v", d, err)
	}
}

func TestDefaultJobs(t *testing.T) {
	def := DefaultJobs()
	if def.TwitchPoll != 30*time.Second || def.Autosave != 2*time.Minute {
		t.Fatalf("defaults = %+v", def)
	}
	if def.BirthdayCron == "" || def.StatusCron == "" {
		t.Fatalf("cron defaults empty")
	}
}
