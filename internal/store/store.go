package store

import (
	"encoding/json"
	"sync"

	"crobot/internal/guildcfg"
	"crobot/internal/leveling"
	"crobot/internal/moderation"
	logx "crobot/pkg/logx"
)

// Store is the single shared mutable resource in the process. Every mutation
// runs as a read-modify-write inside one lock hold; serialization happens
// under the lock but backend I/O runs outside it on the copied bytes.
type Store struct {
	log     logx.Logger
	backend Backend

	mu        sync.Mutex
	users     map[string]leveling.Record
	links     map[string]string
	guilds    map[string]*guildcfg.Override
	birthdays map[string]string
	warnings  moderation.Ledger
	dirty     map[string]bool
}

// Open initializes the backend and loads every document. Unreadable or
// malformed documents come up empty with a warning; Open fails only when the
// backend itself cannot be initialized.
func Open(cfg Config, log logx.Logger) (*Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	backend, err := openBackend(cfg, log)
	if err != nil {
		return nil, err
	}

	s := &Store{
		log:       log,
		backend:   backend,
		users:     make(map[string]leveling.Record),
		links:     make(map[string]string),
		guilds:    make(map[string]*guildcfg.Override),
		birthdays: make(map[string]string),
		warnings:  make(moderation.Ledger),
		dirty:     make(map[string]bool),
	}
	s.loadDoc(DocUsers, &s.users)
	s.loadDoc(DocLinks, &s.links)
	s.loadDoc(DocGuilds, &s.guilds)
	s.loadDoc(DocBirthdays, &s.birthdays)
	s.loadDoc(DocWarnings, &s.warnings)
	return s, nil
}

func (s *Store) loadDoc(name string, out any) {
	data, ok, err := s.backend.LoadDoc(name)
	if err != nil {
		s.log.Warn("document unreadable; starting empty", logx.String("doc", name), logx.Err(err))
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.Warn("document malformed; starting empty", logx.String("doc", name), logx.Err(err))
	}
}

// Flush saves every dirty document. Save failures are logged and leave the
// document dirty so the next flush retries.
func (s *Store) Flush() {
	s.saveDocs(false)
}

// SaveAll unconditionally snapshots every document, dirty or not.
func (s *Store) SaveAll() {
	s.saveDocs(true)
}

// Close flushes all state and releases the backend.
func (s *Store) Close() error {
	s.SaveAll()
	return s.backend.Close()
}

type snapshot struct {
	name string
	data []byte
}

func (s *Store) saveDocs(all bool) {
	// Marshal under the lock, write outside it.
	s.mu.Lock()
	snaps := make([]snapshot, 0, len(DocNames))
	for _, name := range DocNames {
		if !all && !s.dirty[name] {
			continue
		}
		data, err := s.marshalLocked(name)
		if err != nil {
			s.log.Error("document marshal failed", logx.String("doc", name), logx.Err(err))
			continue
		}
		delete(s.dirty, name)
		snaps = append(snaps, snapshot{name: name, data: data})
	}
	s.mu.Unlock()

	for _, sn := range snaps {
		if err := s.backend.SaveDoc(sn.name, sn.data); err != nil {
			s.log.Warn("document save failed", logx.String("doc", sn.name), logx.Err(err))
			s.mu.Lock()
			s.dirty[sn.name] = true
			s.mu.Unlock()
		}
	}
}

func (s *Store) marshalLocked(name string) ([]byte, error) {
	var v any
	switch name {
	case DocUsers:
		v = s.users
	case DocLinks:
		v = s.links
	case DocGuilds:
		v = s.guilds
	case DocBirthdays:
		v = s.birthdays
	case DocWarnings:
		v = s.warnings
	default:
		v = struct{}{}
	}
	return json.MarshalIndent(v, "", "  ")
}

// saveNow persists one document immediately (write-through for admin-facing
// mutations).
func (s *Store) saveNow(name string) {
	s.mu.Lock()
	data, err := s.marshalLocked(name)
	if err != nil {
		s.log.Error("document marshal failed", logx.String("doc", name), logx.Err(err))
		s.mu.Unlock()
		return
	}
	delete(s.dirty, name)
	s.mu.Unlock()

	if err := s.backend.SaveDoc(name, data); err != nil {
		s.log.Warn("document save failed", logx.String("doc", name), logx.Err(err))
		s.mu.Lock()
		s.dirty[name] = true
		s.mu.Unlock()
	}
}
