// Package session holds live editing sessions. A session owns one preview
// composer and one preview hub from Open until Close; nothing is shared
// between sessions.
package session

import (
	"sync"
	"time"

	"github.com/varunrmantri23/nexacode/internal/core"
	"github.com/varunrmantri23/nexacode/internal/preview"
)

type Session struct {
	ID    string
	Owner core.User

	composer *preview.Composer
	hub      *preview.Hub
	now      func() time.Time

	mu         sync.Mutex
	projectID  string
	title      string
	lastActive time.Time
	closed     bool
}

type Snapshot struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id,omitempty"`
	Title     string       `json:"title"`
	OwnerUID  string       `json:"owner_uid"`
	Sources   core.Sources `json:"sources"`
	Settled   core.Sources `json:"settled"`
	Document  string       `json:"document"`
	Version   uint64       `json:"version"`
	Pending   bool         `json:"pending"`
}

// Update replaces the live value of one buffer. The preview follows once the
// buffer settles.
func (s *Session) Update(kind core.BufferKind, value string) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.composer.Update(kind, value)
	return nil
}

func (s *Session) SetTitle(title string) error {
	if err := s.touch(); err != nil {
		return err
	}
	s.mu.Lock()
	s.title = core.NormalizeTitle(title)
	s.mu.Unlock()
	return nil
}

func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

func (s *Session) Document() (string, uint64) {
	return s.composer.Snapshot()
}

func (s *Session) Sources() core.Sources {
	return s.composer.Sources()
}

func (s *Session) Snapshot() Snapshot {
	state := s.composer.State()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		ProjectID: s.projectID,
		Title:     s.title,
		OwnerUID:  s.Owner.UID,
		Sources:   state.Live,
		Settled:   state.Settled,
		Document:  state.Document,
		Version:   state.Version,
		Pending:   state.Pending,
	}
}

// Subscribe returns a channel signalled after every recomputation of the
// preview. It is closed when the session closes.
func (s *Session) Subscribe() chan struct{} {
	_ = s.touch()
	return s.hub.Subscribe()
}

func (s *Session) Unsubscribe(ch chan struct{}) {
	s.hub.Unsubscribe(ch)
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrSessionClosed
	}
	s.lastActive = s.now()
	return nil
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) setProject(p core.Project) {
	s.mu.Lock()
	s.projectID = p.ID
	s.title = p.Title
	s.mu.Unlock()
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.composer.Close()
	s.hub.Close()
}
