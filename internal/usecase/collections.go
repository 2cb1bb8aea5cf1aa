package usecase

import (
	"context"
	"fmt"

	"github.com/varunrmantri23/nexacode/internal/core"
)

type CollectionService struct {
	store    CollectionStore
	projects ProjectStore
	ids      IDGenerator
	now      Clock
}

func NewCollectionService(store CollectionStore, projects ProjectStore, ids IDGenerator, now Clock) *CollectionService {
	return &CollectionService{store: store, projects: projects, ids: ids, now: now}
}

func (s *CollectionService) List(ctx context.Context, owner core.User) ([]core.Collection, error) {
	return s.store.ListCollections(ctx, owner.UID)
}

// Create makes a new collection. When projectID is set the project is added
// right away.
func (s *CollectionService) Create(ctx context.Context, owner core.User, name, projectID string) (core.Collection, error) {
	name, err := core.ValidateCollectionName(name)
	if err != nil {
		return core.Collection{}, err
	}

	c := core.Collection{
		ID:         s.ids(),
		OwnerUID:   owner.UID,
		Name:       name,
		ProjectIDs: []string{},
		CreatedAt:  s.now().UTC(),
	}
	if projectID != "" {
		if _, err := s.projects.GetProject(ctx, projectID); err != nil {
			return core.Collection{}, err
		}
		c.ProjectIDs = append(c.ProjectIDs, projectID)
	}

	if err := s.store.CreateCollection(ctx, c); err != nil {
		return core.Collection{}, err
	}
	return c, nil
}

func (s *CollectionService) Delete(ctx context.Context, owner core.User, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	return s.store.DeleteCollection(ctx, id)
}

func (s *CollectionService) Add(ctx context.Context, owner core.User, id, projectID string) (core.Collection, error) {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return core.Collection{}, err
	}
	if _, err := s.projects.GetProject(ctx, projectID); err != nil {
		return core.Collection{}, err
	}
	if err := s.store.AddToCollection(ctx, id, projectID, s.now().UTC()); err != nil {
		return core.Collection{}, err
	}
	return s.store.GetCollection(ctx, id)
}

func (s *CollectionService) Remove(ctx context.Context, owner core.User, id, projectID string) (core.Collection, error) {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return core.Collection{}, err
	}
	if err := s.store.RemoveFromCollection(ctx, id, projectID); err != nil {
		return core.Collection{}, err
	}
	return s.store.GetCollection(ctx, id)
}

// Toggle flips projectID's membership in the collection and reports whether
// it is now a member.
func (s *CollectionService) Toggle(ctx context.Context, owner core.User, id, projectID string) (bool, error) {
	c, err := s.owned(ctx, owner, id)
	if err != nil {
		return false, err
	}
	if c.Contains(projectID) {
		_, err := s.Remove(ctx, owner, id, projectID)
		return false, err
	}
	_, err = s.Add(ctx, owner, id, projectID)
	return err == nil, err
}

// Containing lists which of owner's collections hold projectID.
func (s *CollectionService) Containing(ctx context.Context, owner core.User, projectID string) ([]string, error) {
	return s.store.CollectionsContaining(ctx, owner.UID, projectID)
}

func (s *CollectionService) owned(ctx context.Context, owner core.User, id string) (core.Collection, error) {
	c, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return core.Collection{}, err
	}
	if c.OwnerUID != owner.UID {
		return core.Collection{}, fmt.Errorf("collection %s: %w", id, core.ErrForbidden)
	}
	return c, nil
}
