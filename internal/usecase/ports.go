package usecase

import (
	"context"
	"time"

	"github.com/varunrmantri23/nexacode/internal/core"
)

type UserStore interface {
	UpsertUser(ctx context.Context, u core.User) error
	GetUser(ctx context.Context, uid string) (core.User, error)
	UpdateDisplayName(ctx context.Context, uid, name string, at time.Time) error
}

type ProjectStore interface {
	SaveProject(ctx context.Context, p core.Project) error
	GetProject(ctx context.Context, id string) (core.Project, error)
	ListProjects(ctx context.Context) ([]core.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerUID string, limit int) ([]core.Project, error)
	CountProjectsByOwner(ctx context.Context, ownerUID string) (int, error)
}

type CollectionStore interface {
	CreateCollection(ctx context.Context, c core.Collection) error
	GetCollection(ctx context.Context, id string) (core.Collection, error)
	ListCollections(ctx context.Context, ownerUID string) ([]core.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
	AddToCollection(ctx context.Context, collectionID, projectID string, at time.Time) error
	RemoveFromCollection(ctx context.Context, collectionID, projectID string) error
	CollectionsContaining(ctx context.Context, ownerUID, projectID string) ([]string, error)
	CountCollections(ctx context.Context, ownerUID string) (int, error)
}

// IDGenerator returns a new unique, time-sortable identifier.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time
