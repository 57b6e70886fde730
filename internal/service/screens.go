package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/userdesk/internal/domain"
)

// screenSet is the screen state of one browser session.
type screenSet struct {
	list     *SyncEngine
	edit     *EditScreen
	pending  *domain.Envelope
	lastSeen time.Time
}

func (s *screenSet) closeAll() {
	if s.list != nil {
		s.list.Close()
		s.list = nil
	}
	if s.edit != nil {
		s.edit.Close()
		s.edit = nil
	}
}

// Screens tracks the active screens and pending navigation state of every
// browser session. Mounting a screen tears down the one it replaces. It is
// safe for concurrent use.
type Screens struct {
	cache domain.CacheStore
	dir   domain.Directory

	mu   sync.Mutex
	sets map[string]*screenSet
}

// NewScreens creates an empty registry. Engines it mounts share cache and dir.
func NewScreens(cache domain.CacheStore, dir domain.Directory) *Screens {
	return &Screens{
		cache: cache,
		dir:   dir,
		sets:  make(map[string]*screenSet),
	}
}

func (s *Screens) setLocked(sid string) *screenSet {
	set, ok := s.sets[sid]
	if !ok {
		set = &screenSet{}
		s.sets[sid] = set
	}
	set.lastSeen = time.Now()
	return set
}

// Navigate stores env as the navigation state for the session's next
// screen, replacing anything not yet consumed.
func (s *Screens) Navigate(sid string, env *domain.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(sid).pending = env
}

// TakeNavigation consumes the pending navigation state. It is returned only
// when addressed to path; a mismatched envelope is discarded all the same.
func (s *Screens) TakeNavigation(sid, path string) *domain.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setLocked(sid)
	env := set.pending
	set.pending = nil
	if env == nil || env.Path != path {
		return nil
	}
	return env
}

// MountList replaces the session's screens with a fresh list engine.
func (s *Screens) MountList(sid string) *SyncEngine {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setLocked(sid)
	set.closeAll()
	set.list = NewSyncEngine(s.cache, s.dir)
	return set.list
}

// List returns the session's active list engine.
func (s *Screens) List(sid string) (*SyncEngine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setLocked(sid)
	return set.list, set.list != nil
}

// MountEdit replaces the session's screens with an edit screen for user id,
// taking its record context from env. On domain.ErrNotFound the previous
// screens are still torn down.
func (s *Screens) MountEdit(sid string, id int64, env *domain.Envelope) (*EditScreen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setLocked(sid)
	set.closeAll()

	edit, err := NewEditScreen(s.dir, id, env)
	if err != nil {
		return nil, err
	}
	set.edit = edit
	return edit, nil
}

// Edit returns the session's active edit screen if it is editing user id.
func (s *Screens) Edit(sid string, id int64) (*EditScreen, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.setLocked(sid)
	if set.edit == nil || set.edit.ID() != id {
		return nil, false
	}
	return set.edit, true
}

// Drop tears down and forgets every screen of the session.
func (s *Screens) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.sets[sid]; ok {
		set.closeAll()
		delete(s.sets, sid)
	}
}

// Prune drops sessions not seen within idle and returns how many were removed.
func (s *Screens) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-idle)
	var n int
	for sid, set := range s.sets {
		if set.lastSeen.Before(cutoff) {
			set.closeAll()
			delete(s.sets, sid)
			n++
		}
	}
	if n > 0 {
		slog.Debug("pruned idle screen sessions", "count", n)
	}
	return n
}
