package store

import (
	"strings"

	"crobot/internal/guildcfg"
	"crobot/internal/leveling"
)

// ---- users ----

// User returns a copy of the user's progression record.
func (s *Store) User(userID string) (leveling.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	return rec, ok
}

// EnsureUser returns the user's record, creating the default lazily on first
// progression query.
func (s *Store) EnsureUser(userID string) leveling.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		rec = leveling.NewRecord()
		s.users[userID] = rec
		s.dirty[DocUsers] = true
	}
	return rec
}

// UpdateUser applies fn to the user's record (lazily created) in one atomic
// read-modify-write. Persistence is deferred to the periodic flush.
func (s *Store) UpdateUser(userID string, fn func(*leveling.Record)) leveling.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		rec = leveling.NewRecord()
	}
	fn(&rec)
	s.users[userID] = rec
	s.dirty[DocUsers] = true
	return rec
}

// UpdateUserNow is UpdateUser with an immediate save instead of waiting
// for the autosave tick. Rare milestone writes like prestige go through
// here so a crash cannot roll them back.
func (s *Store) UpdateUserNow(userID string, fn func(*leveling.Record)) leveling.Record {
	s.mu.Lock()
	rec, ok := s.users[userID]
	if !ok {
		rec = leveling.NewRecord()
	}
	fn(&rec)
	s.users[userID] = rec
	s.mu.Unlock()
	s.saveNow(DocUsers)
	return rec
}

// DeleteUser removes a user's progression record entirely (admin reset).
func (s *Store) DeleteUser(userID string) bool {
	s.mu.Lock()
	_, ok := s.users[userID]
	delete(s.users, userID)
	s.mu.Unlock()
	if ok {
		s.saveNow(DocUsers)
	}
	return ok
}

// ResetAllUsers clears every progression record (admin global reset).
func (s *Store) ResetAllUsers() {
	s.mu.Lock()
	s.users = make(map[string]leveling.Record)
	s.mu.Unlock()
	s.saveNow(DocUsers)
}

// UserEntries returns a copy of all records for ranking and stats.
func (s *Store) UserEntries() []leveling.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]leveling.Entry, 0, len(s.users))
	for uid, rec := range s.users {
		entries = append(entries, leveling.Entry{UserID: uid, Record: rec})
	}
	return entries
}

// ---- twitch links ----

// SetLink stores the user's external handle (lowercased), overwriting any
// previous link, and writes through.
func (s *Store) SetLink(userID, handle string) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	s.mu.Lock()
	s.links[userID] = handle
	s.dirty[DocLinks] = true
	s.mu.Unlock()
	s.saveNow(DocLinks)
}

func (s *Store) Link(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.links[userID]
	return h, ok
}

// Links returns a copy of the uid -> handle map.
func (s *Store) Links() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.links))
	for k, v := range s.links {
		out[k] = v
	}
	return out
}

// ---- guild config ----

// ResolveGuild returns the guild's effective configuration.
func (s *Store) ResolveGuild(guildID string, defaults guildcfg.Defaults) guildcfg.Resolved {
	s.mu.Lock()
	defer s.mu.Unlock()
	return guildcfg.Resolve(s.guilds[guildID], defaults)
}

// UpdateGuild applies fn to the guild's override record (lazily created).
// Persistence is deferred; use UpdateGuildNow for admin write-through.
func (s *Store) UpdateGuild(guildID string, fn func(*guildcfg.Override)) {
	s.mu.Lock()
	o := s.guilds[guildID]
	if o == nil {
		o = &guildcfg.Override{}
		s.guilds[guildID] = o
	}
	fn(o)
	s.dirty[DocGuilds] = true
	s.mu.Unlock()
}

// UpdateGuildNow is UpdateGuild plus an immediate snapshot of the guild
// config document (admin configuration changes are write-through).
func (s *Store) UpdateGuildNow(guildID string, fn func(*guildcfg.Override)) {
	s.UpdateGuild(guildID, fn)
	s.saveNow(DocGuilds)
}

// SaveGuilds persists the guild config document once; the recurring-post
// scheduler calls this at most once per tick after advancing watermarks.
func (s *Store) SaveGuilds() {
	s.saveNow(DocGuilds)
}

// ---- birthdays ----

func (s *Store) SetBirthday(userID, isoDate string) {
	s.mu.Lock()
	s.birthdays[userID] = isoDate
	s.dirty[DocBirthdays] = true
	s.mu.Unlock()
	s.saveNow(DocBirthdays)
}

func (s *Store) Birthday(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.birthdays[userID]
	return d, ok
}

// Birthdays returns a copy of the uid -> ISO date map.
func (s *Store) Birthdays() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.birthdays))
	for k, v := range s.birthdays {
		out[k] = v
	}
	return out
}

// ---- warnings ----

// RecordWarning increments and returns the user's warning count, writing the
// ledger through immediately.
func (s *Store) RecordWarning(guildID, userID string) int {
	s.mu.Lock()
	count := s.warnings.Record(guildID, userID)
	s.dirty[DocWarnings] = true
	s.mu.Unlock()
	s.saveNow(DocWarnings)
	return count
}

// ClearWarnings removes the user's ledger entry entirely (absent, not zero).
func (s *Store) ClearWarnings(guildID, userID string) {
	s.mu.Lock()
	s.warnings.Clear(guildID, userID)
	s.dirty[DocWarnings] = true
	s.mu.Unlock()
	s.saveNow(DocWarnings)
}

func (s *Store) WarningCount(guildID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnings.Count(guildID, userID)
}
