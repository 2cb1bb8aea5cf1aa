package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/varunrmantri23/nexacode/internal/clock"
	"github.com/varunrmantri23/nexacode/internal/core"
	"github.com/varunrmantri23/nexacode/internal/preview"
)

const (
	DefaultIdleTimeout  = 30 * time.Minute
	DefaultReapInterval = time.Minute
)

// Projects is the persistence collaborator sessions load from and save to.
type Projects interface {
	Get(ctx context.Context, id string) (core.Project, error)
	Save(ctx context.Context, owner core.User, p core.Project) (core.Project, error)
}

type Config struct {
	Quiescence  time.Duration
	IdleTimeout time.Duration
	Clock       clock.Clock
	Now         func() time.Time
	IDs         func() string
	Logger      *zap.Logger
}

type Manager struct {
	projects Projects
	cfg      Config
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(projects Projects, cfg Config) *Manager {
	if cfg.Quiescence <= 0 {
		cfg.Quiescence = preview.DefaultQuiescence
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.IDs == nil {
		panic("session: Config.IDs is required")
	}

	return &Manager{
		projects: projects,
		cfg:      cfg,
		logger:   cfg.Logger,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session for owner. An empty projectID starts a blank,
// untitled project; otherwise the stored project's raw sources seed the
// composer and the preview is composed right away.
func (m *Manager) Open(ctx context.Context, owner core.User, projectID string) (*Session, error) {
	var project *core.Project
	if projectID != "" {
		p, err := m.projects.Get(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
		project = &p
	}

	hub := preview.NewHub()
	composer := preview.New(
		preview.WithQuiescence(m.cfg.Quiescence),
		preview.WithClock(m.cfg.Clock),
		preview.WithLogger(m.logger),
		preview.OnChange(func(string, uint64) { hub.Notify() }),
	)

	s := &Session{
		ID:         m.cfg.IDs(),
		Owner:      owner,
		composer:   composer,
		hub:        hub,
		now:        m.cfg.Now,
		title:      core.DefaultTitle,
		lastActive: m.cfg.Now(),
	}
	if project != nil {
		s.setProject(*project)
		composer.Seed(project.Sources())
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session opened",
		zap.String("session", s.ID),
		zap.String("owner", owner.UID),
		zap.String("project", projectID),
	)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}
	return s, nil
}

// Lookup is Get restricted to the session's owner.
func (m *Manager) Lookup(id string, owner core.User) (*Session, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Owner.UID != owner.UID {
		return nil, fmt.Errorf("session %s: %w", id, core.ErrForbidden)
	}
	return s, nil
}

// Save stores the session's raw sources, title and current preview. The
// session follows the saved id, which differs from the loaded one when the
// project belonged to another user.
func (m *Manager) Save(ctx context.Context, s *Session) (core.Project, error) {
	if err := s.touch(); err != nil {
		return core.Project{}, err
	}

	doc, _ := s.composer.Snapshot()
	p := core.Project{
		ID:     s.ProjectID(),
		Title:  s.Title(),
		Output: doc,
	}
	p.SetSources(s.composer.Sources())

	saved, err := m.projects.Save(ctx, s.Owner, p)
	if err != nil {
		return core.Project{}, fmt.Errorf("save session %s: %w", s.ID, err)
	}
	s.setProject(saved)

	m.logger.Info("session saved",
		zap.String("session", s.ID),
		zap.String("project", saved.ID),
	)
	return saved, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, core.ErrNotFound)
	}

	s.close()
	m.logger.Info("session closed", zap.String("session", id))
	return nil
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap closes sessions idle for longer than the idle timeout. Sessions with
// a connected preview subscriber are kept.
func (m *Manager) Reap() int {
	cutoff := m.cfg.Now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.hub.Subscribers() > 0 || s.idleSince().After(cutoff) {
			continue
		}
		idle = append(idle, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.close()
		m.logger.Info("session reaped", zap.String("session", s.ID))
	}
	return len(idle)
}

// Run reaps idle sessions every interval until ctx is done, then closes
// every remaining session.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer m.CloseAll()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			m.Reap()
		}
	}
}
