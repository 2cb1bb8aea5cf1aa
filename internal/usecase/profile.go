package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/varunrmantri23/nexacode/internal/core"
)

const (
	DefaultRecentProjects = 6
	userRefreshInterval   = 10 * time.Minute
)

type ProfileService struct {
	users       UserStore
	projects    ProjectStore
	collections CollectionStore
	now         Clock
	recent      int
	seen        *seenCache
}

func NewProfileService(users UserStore, projects ProjectStore, collections CollectionStore, now Clock, recent int) *ProfileService {
	if recent <= 0 {
		recent = DefaultRecentProjects
	}
	return &ProfileService{
		users:       users,
		projects:    projects,
		collections: collections,
		now:         now,
		recent:      recent,
		seen:        newSeenCache(userRefreshInterval),
	}
}

// EnsureUser records the identity of a signed-in user. Repeated calls for
// the same uid within the refresh interval skip the store.
func (s *ProfileService) EnsureUser(ctx context.Context, u core.User) error {
	if u.UID == "" {
		return fmt.Errorf("ensure user: %w", core.ErrUnauthorized)
	}
	now := s.now().UTC()
	if s.seen.fresh(u.UID, now) {
		return nil
	}

	u.UpdatedAt = now
	if err := s.users.UpsertUser(ctx, u); err != nil {
		return err
	}
	s.seen.mark(u.UID, now)
	return nil
}

type Profile struct {
	User            core.User      `json:"user"`
	Projects        []core.Project `json:"projects"`
	ProjectCount    int            `json:"project_count"`
	CollectionCount int            `json:"collection_count"`
}

func (s *ProfileService) Get(ctx context.Context, uid string) (Profile, error) {
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		return Profile{}, err
	}
	projects, err := s.projects.ListProjectsByOwner(ctx, uid, s.recent)
	if err != nil {
		return Profile{}, err
	}
	if projects == nil {
		projects = []core.Project{}
	}
	projectCount, err := s.projects.CountProjectsByOwner(ctx, uid)
	if err != nil {
		return Profile{}, err
	}
	collectionCount, err := s.collections.CountCollections(ctx, uid)
	if err != nil {
		return Profile{}, err
	}

	return Profile{
		User:            u,
		Projects:        projects,
		ProjectCount:    projectCount,
		CollectionCount: collectionCount,
	}, nil
}

func (s *ProfileService) UpdateDisplayName(ctx context.Context, uid, name string) (core.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.User{}, fmt.Errorf("%w: display name is required", core.ErrInvalidInput)
	}
	if err := s.users.UpdateDisplayName(ctx, uid, name, s.now().UTC()); err != nil {
		return core.User{}, err
	}
	return s.users.GetUser(ctx, uid)
}
