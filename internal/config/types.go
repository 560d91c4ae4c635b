package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Discord DiscordConfig `json:"discord"`
	Logging LoggingConfig `json:"logging"`
	Storage StorageConfig `json:"storage"`
	Jobs    JobsConfig    `json:"jobs"`
	Twitch  TwitchConfig  `json:"twitch,omitempty"`
	MemeAPI MemeAPIConfig `json:"meme_api,omitempty"`

	// Fallback holds the compiled-in-style per-guild defaults. Guilds that
	// never ran the admin config commands resolve to these values.
	Fallback FallbackConfig `json:"fallback,omitempty"`
}

type DiscordConfig struct {
	// Token is normally taken from the DISCORD_TOKEN env var; the config
	// field exists for local development only.
	Token string `json:"token,omitempty"`

	// PrimaryGuildID gets fast slash-command sync; commands are still
	// registered globally.
	PrimaryGuildID string `json:"primary_guild_id,omitempty"`

	// SendRatePerSec throttles outbound notification sends. 0 means default.
	SendRatePerSec int `json:"send_rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig controls the persistence layer.
//
// Driver values:
//   - "file" (default): one pretty-printed JSON snapshot per named document
//   - "sqlite": snapshots in a single database file (build with -tags sqlite)
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Dir         string `json:"dir,omitempty"`          // file driver; default "./data"
	Path        string `json:"path,omitempty"`         // sqlite driver
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// JobsConfig sets the cadence of every periodic job.
//
// All fields are Go duration strings except BirthdayCron and StatusCron,
// which are standard 5-field cron specs. Empty fields fall back to the
// defaults in DefaultJobs.
type JobsConfig struct {
	TwitchPoll   string `json:"twitch_poll,omitempty"`
	MemeTick     string `json:"meme_tick,omitempty"`
	Autosave     string `json:"autosave,omitempty"`
	Heartbeat    string `json:"heartbeat,omitempty"`
	SessionSweep string `json:"session_sweep,omitempty"`
	BirthdayCron string `json:"birthday_cron,omitempty"`
	StatusCron   string `json:"status_cron,omitempty"`
}

type TwitchConfig struct {
	// ClientID/ClientSecret are normally taken from TWITCH_CLIENT_ID and
	// TWITCH_CLIENT_SECRET env vars. When both are empty the live tracker
	// is disabled and link commands still store handles.
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	// Timeout bounds each Helix call. Default 10s.
	Timeout string `json:"timeout,omitempty"`
}

type MemeAPIConfig struct {
	URL     string `json:"url,omitempty"`     // default https://meme-api.com/gimme
	Timeout string `json:"timeout,omitempty"` // default 10s
}

// FallbackConfig mirrors the original deployment's hard-coded IDs. All fields
// optional; zero values mean "no fallback" for that key.
type FallbackConfig struct {
	WelcomeChannelID string `json:"welcome_channel_id,omitempty"`
	MemeChannelID    string `json:"meme_channel_id,omitempty"`
	TwitchChannelID  string `json:"twitch_channel_id,omitempty"`
	AutoRoleID       string `json:"auto_role_id,omitempty"`
	// MemeInterval is a Go duration string. Default 2h.
	MemeInterval string `json:"meme_interval,omitempty"`
}

// JobDefaults are the cadences the original bot ran with.
type JobDefaults struct {
	TwitchPoll   time.Duration
	MemeTick     time.Duration
	Autosave     time.Duration
	Heartbeat    time.Duration
	SessionSweep time.Duration
	BirthdayCron string
	StatusCron   string
}

func DefaultJobs() JobDefaults {
	return JobDefaults{
		TwitchPoll:   30 * time.Second,
		MemeTick:     5 * time.Minute,
		Autosave:     2 * time.Minute,
		Heartbeat:    5 * time.Minute,
		SessionSweep: time.Minute,
		BirthdayCron: "0 0 * * *",
		StatusCron:   "0 0 * * *",
	}
}

// optionalDuration resolves a duration-string field: empty means def, a set
// value must parse and be positive. The field name only feeds the error.
func optionalDuration(field, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: duration must be positive, got %q", field, raw)
	}
	return d, nil
}

// Resolve fills every unset cadence from def and parses the rest. Cron
// fields pass through as strings; the scheduler validates those specs.
func (j JobsConfig) Resolve(def JobDefaults) (JobDefaults, error) {
	out := def
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"jobs.twitch_poll", j.TwitchPoll, &out.TwitchPoll},
		{"jobs.meme_tick", j.MemeTick, &out.MemeTick},
		{"jobs.autosave", j.Autosave, &out.Autosave},
		{"jobs.heartbeat", j.Heartbeat, &out.Heartbeat},
		{"jobs.session_sweep", j.SessionSweep, &out.SessionSweep},
	}
	for _, f := range fields {
		d, err := optionalDuration(f.name, f.raw, *f.dst)
		if err != nil {
			return JobDefaults{}, err
		}
		*f.dst = d
	}
	if j.BirthdayCron != "" {
		out.BirthdayCron = j.BirthdayCron
	}
	if j.StatusCron != "" {
		out.StatusCron = j.StatusCron
	}
	return out, nil
}

// CallTimeout is the per-request bound for Helix calls. Default 10s.
func (t TwitchConfig) CallTimeout() (time.Duration, error) {
	return optionalDuration("twitch.timeout", t.Timeout, 10*time.Second)
}

// CallTimeout is the per-request bound for meme API calls. Default 10s.
func (m MemeAPIConfig) CallTimeout() (time.Duration, error) {
	return optionalDuration("meme_api.timeout", m.Timeout, 10*time.Second)
}

// BusyWait parses the sqlite busy timeout; zero means the driver default.
func (s StorageConfig) BusyWait() (time.Duration, error) {
	return optionalDuration("storage.busy_timeout", s.BusyTimeout, 0)
}

// Interval parses the fallback meme cadence, def when unset.
func (f FallbackConfig) Interval(def time.Duration) (time.Duration, error) {
	return optionalDuration("fallback.meme_interval", f.MemeInterval, def)
}
