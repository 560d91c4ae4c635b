// Package sessions tracks ephemeral player-gathering posts. A session is a
// timer-scoped entity with an explicit expiry; a periodic sweep job removes
// expired ones instead of each session detaching its own delayed cleanup.
package sessions

import (
	"sync"
	"time"
)

// DefaultTTL matches the original 90 minute auto-expiry.
const DefaultTTL = 90 * time.Minute

// Session is one active gathering request, keyed by the announcement message.
type Session struct {
	MessageID string
	ChannelID string
	GuildID   string
	Game      string
	AuthorID  string
	Confirmed map[string]bool
	ExpiresAt time.Time
}

// confirmCount is informational only, so a copy is fine for callers.
func (s *Session) confirmCount() int { return len(s.Confirmed) }

type Registry struct {
	mu  sync.Mutex
	all map[string]*Session
	ttl time.Duration
	now func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		all: make(map[string]*Session),
		ttl: ttl,
		now: time.Now,
	}
}

// Create registers a new session keyed by its announcement message.
func (r *Registry) Create(messageID, channelID, guildID, game, authorID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &Session{
		MessageID: messageID,
		ChannelID: channelID,
		GuildID:   guildID,
		Game:      game,
		AuthorID:  authorID,
		Confirmed: make(map[string]bool),
		ExpiresAt: r.now().Add(r.ttl),
	}
	r.all[messageID] = s
	return s
}

// Confirm records a user's join reaction. Repeat confirmations are no-ops.
// Returns the confirmation count and whether the message has a session.
func (r *Registry) Confirm(messageID, userID string) (count int, changed bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.all[messageID]
	if s == nil {
		return 0, false, false
	}
	if !s.Confirmed[userID] {
		s.Confirmed[userID] = true
		changed = true
	}
	return s.confirmCount(), changed, true
}

// Get returns a copy of the session for messageID, if any.
func (r *Registry) Get(messageID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.all[messageID]
	if s == nil {
		return Session{}, false
	}
	return *s, true
}

// SweepExpired removes and returns sessions whose expiry has passed.
func (r *Registry) SweepExpired(now time.Time) []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []Session
	for id, s := range r.all {
		if now.After(s.ExpiresAt) {
			expired = append(expired, *s)
			delete(r.all, id)
		}
	}
	return expired
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.all)
}
