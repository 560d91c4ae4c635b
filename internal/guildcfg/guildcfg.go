// Package guildcfg holds the per-guild configuration record and its
// resolution against compiled-in fallbacks.
//
// Stored records contain only the keys an admin explicitly set. Resolution
// substitutes defaults for everything else, so downstream code never
// re-implements fallback lookups ad hoc.
package guildcfg

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultMemeInterval matches the original deployment's 2 hour cadence.
const DefaultMemeInterval = 2 * time.Hour

// Defaults are the process-wide fallbacks used for keys a guild never set.
// Zero-valued IDs mean "no fallback" for that key.
type Defaults struct {
	WelcomeChannelID string
	MemeChannelID    string
	TwitchChannelID  string
	AutoRoleID       string
	MemeInterval     time.Duration
}

func (d Defaults) withFloor() Defaults {
	if d.MemeInterval <= 0 {
		d.MemeInterval = DefaultMemeInterval
	}
	return d
}

// Override is one guild's stored record. Only explicitly set fields are
// serialized; unknown keys found on disk are preserved across rewrites but
// ignored by resolution.
type Override struct {
	WelcomeChannelID string   `json:"welcome_channel_id,omitempty"`
	MemeChannelID    string   `json:"meme_channel_id,omitempty"`
	TwitchChannelID  string   `json:"twitch_channel_id,omitempty"`
	AutoRoleID       string   `json:"auto_role_id,omitempty"`
	WelcomeDM        string   `json:"welcome_dm_message,omitempty"`
	ModRoleID        string   `json:"mod_role_id,omitempty"`
	MemeIntervalSec  int64    `json:"meme_interval,omitempty"`
	NextMemeTime     int64    `json:"next_meme_time,omitempty"`
	WatchPhrases     []string `json:"bad_words,omitempty"`

	extra map[string]json.RawMessage
}

var knownKeys = map[string]bool{
	"welcome_channel_id": true,
	"meme_channel_id":    true,
	"twitch_channel_id":  true,
	"auto_role_id":       true,
	"welcome_dm_message": true,
	"mod_role_id":        true,
	"meme_interval":      true,
	"next_meme_time":     true,
	"bad_words":          true,
}

// UnmarshalJSON keeps unrecognized keys in a side map so a later save does
// not destroy data written by a newer (or older) build. Legacy records wrote
// IDs as JSON numbers and next_meme_time as a float; those decode here too
// and come out canonical (string IDs, integer seconds) on the next save.
func (o *Override) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var p struct {
		WelcomeChannelID flexID    `json:"welcome_channel_id"`
		MemeChannelID    flexID    `json:"meme_channel_id"`
		TwitchChannelID  flexID    `json:"twitch_channel_id"`
		AutoRoleID       flexID    `json:"auto_role_id"`
		WelcomeDM        string    `json:"welcome_dm_message"`
		ModRoleID        flexID    `json:"mod_role_id"`
		MemeIntervalSec  flexInt64 `json:"meme_interval"`
		NextMemeTime     flexInt64 `json:"next_meme_time"`
		WatchPhrases     []string  `json:"bad_words"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = Override{
		WelcomeChannelID: string(p.WelcomeChannelID),
		MemeChannelID:    string(p.MemeChannelID),
		TwitchChannelID:  string(p.TwitchChannelID),
		AutoRoleID:       string(p.AutoRoleID),
		WelcomeDM:        p.WelcomeDM,
		ModRoleID:        string(p.ModRoleID),
		MemeIntervalSec:  int64(p.MemeIntervalSec),
		NextMemeTime:     int64(p.NextMemeTime),
		WatchPhrases:     p.WatchPhrases,
	}
	for k, v := range raw {
		if !knownKeys[k] {
			if o.extra == nil {
				o.extra = make(map[string]json.RawMessage)
			}
			o.extra[k] = v
		}
	}
	o.normalize()
	return nil
}

// flexID is a Discord snowflake that tolerates legacy numeric encoding.
// Integers keep their exact digits; a float (which should not appear for
// IDs, but did for other numeric keys) is truncated.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		v, err := n.Float64()
		if err != nil {
			return err
		}
		s = strconv.FormatInt(int64(v), 10)
	}
	*f = flexID(s)
	return nil
}

// flexInt64 accepts integers, legacy floats (truncated), and quoted numbers.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexInt64(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if v, err := n.Int64(); err == nil {
		*f = flexInt64(v)
		return nil
	}
	v, err := n.Float64()
	if err != nil {
		return err
	}
	*f = flexInt64(v)
	return nil
}

func (o Override) MarshalJSON() ([]byte, error) {
	type plain Override
	b, err := json.Marshal(plain(o))
	if err != nil {
		return nil, err
	}
	if len(o.extra) == 0 {
		return b, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range o.extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// normalize canonicalizes the record once at load time: lowercased, trimmed,
// deduplicated watch phrases in sorted order, and non-negative numeric fields.
func (o *Override) normalize() {
	if o.MemeIntervalSec < 0 {
		o.MemeIntervalSec = 0
	}
	if o.NextMemeTime < 0 {
		o.NextMemeTime = 0
	}
	if len(o.WatchPhrases) == 0 {
		return
	}
	seen := make(map[string]bool, len(o.WatchPhrases))
	out := o.WatchPhrases[:0]
	for _, p := range o.WatchPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Strings(out)
	o.WatchPhrases = out
}

// AddWatchPhrase inserts a phrase (lowercased) if not already present and
// reports whether the set changed.
func (o *Override) AddWatchPhrase(phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return false
	}
	for _, p := range o.WatchPhrases {
		if p == phrase {
			return false
		}
	}
	o.WatchPhrases = append(o.WatchPhrases, phrase)
	sort.Strings(o.WatchPhrases)
	return true
}

// RemoveWatchPhrase deletes a phrase and reports whether it was present.
func (o *Override) RemoveWatchPhrase(phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	for i, p := range o.WatchPhrases {
		if p == phrase {
			o.WatchPhrases = append(o.WatchPhrases[:i], o.WatchPhrases[i+1:]...)
			return true
		}
	}
	return false
}

// SetMemeInterval updates the posting interval and zeroes the watermark so
// the guild becomes eligible on the next scheduler tick.
func (o *Override) SetMemeInterval(d time.Duration) {
	o.MemeIntervalSec = int64(d / time.Second)
	o.NextMemeTime = 0
}

// Resolved is a fully-populated view of a guild's configuration.
type Resolved struct {
	WelcomeChannelID string
	MemeChannelID    string
	TwitchChannelID  string
	AutoRoleID       string
	WelcomeDM        string
	ModRoleID        string
	MemeInterval     time.Duration
	NextMemeTime     time.Time
	WatchPhrases     []string
}

// Resolve substitutes defaults for every key the override leaves unset.
// It is total: a nil override resolves to pure defaults.
func Resolve(o *Override, d Defaults) Resolved {
	d = d.withFloor()
	r := Resolved{
		WelcomeChannelID: d.WelcomeChannelID,
		MemeChannelID:    d.MemeChannelID,
		TwitchChannelID:  d.TwitchChannelID,
		AutoRoleID:       d.AutoRoleID,
		MemeInterval:     d.MemeInterval,
	}
	if o == nil {
		return r
	}
	if o.WelcomeChannelID != "" {
		r.WelcomeChannelID = o.WelcomeChannelID
	}
	if o.MemeChannelID != "" {
		r.MemeChannelID = o.MemeChannelID
	}
	if o.TwitchChannelID != "" {
		r.TwitchChannelID = o.TwitchChannelID
	}
	if o.AutoRoleID != "" {
		r.AutoRoleID = o.AutoRoleID
	}
	r.WelcomeDM = o.WelcomeDM
	r.ModRoleID = o.ModRoleID
	if o.MemeIntervalSec > 0 {
		r.MemeInterval = time.Duration(o.MemeIntervalSec) * time.Second
	}
	if o.NextMemeTime > 0 {
		r.NextMemeTime = time.Unix(o.NextMemeTime, 0)
	}
	r.WatchPhrases = append([]string(nil), o.WatchPhrases...)
	return r
}
