package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/varunrmantri23/nexacode/internal/core"
)

// CreateCollection inserts c together with its initial project ids.
func (s *Store) CreateCollection(ctx context.Context, c core.Collection) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create collection %s: begin: %w", c.ID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collections (id, owner_uid, name, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.OwnerUID, c.Name, toMillis(c.CreatedAt),
	); err != nil {
		return fmt.Errorf("create collection %s: %w", c.ID, err)
	}

	for _, pid := range c.ProjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO collection_projects (collection_id, project_id, added_at) VALUES (?, ?, ?)`,
			c.ID, pid, toMillis(c.CreatedAt),
		); err != nil {
			return fmt.Errorf("create collection %s: add %s: %w", c.ID, pid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create collection %s: commit: %w", c.ID, err)
	}
	return nil
}

func (s *Store) GetCollection(ctx context.Context, id string) (core.Collection, error) {
	var (
		c       core.Collection
		created int64
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, owner_uid, name, created_at FROM collections WHERE id = ?`, id,
	).Scan(&c.ID, &c.OwnerUID, &c.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Collection{}, fmt.Errorf("collection %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Collection{}, fmt.Errorf("get collection %s: %w", id, err)
	}
	c.CreatedAt = fromMillis(created)

	ids, err := s.collectionProjectIDs(ctx, id)
	if err != nil {
		return core.Collection{}, err
	}
	c.ProjectIDs = ids
	return c, nil
}

func (s *Store) collectionProjectIDs(ctx context.Context, collectionID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT project_id FROM collection_projects WHERE collection_id = ? ORDER BY added_at, project_id`,
		collectionID)
	if err != nil {
		return nil, fmt.Errorf("collection %s projects: %w", collectionID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan collection project: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListCollections returns the collections of ownerUID in creation order,
// each with its project ids.
func (s *Store) ListCollections(ctx context.Context, ownerUID string) ([]core.Collection, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id, c.owner_uid, c.name, c.created_at, cp.project_id
		FROM collections c
		LEFT JOIN collection_projects cp ON cp.collection_id = c.id
		WHERE c.owner_uid = ?
		ORDER BY c.id, cp.added_at, cp.project_id`, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("list collections of %s: %w", ownerUID, err)
	}
	defer rows.Close()

	out := []core.Collection{}
	for rows.Next() {
		var (
			c         core.Collection
			created   int64
			projectID sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.OwnerUID, &c.Name, &created, &projectID); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}

		if n := len(out); n == 0 || out[n-1].ID != c.ID {
			c.CreatedAt = fromMillis(created)
			c.ProjectIDs = []string{}
			out = append(out, c)
		}
		if projectID.Valid {
			last := &out[len(out)-1]
			last.ProjectIDs = append(last.ProjectIDs, projectID.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteCollection(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete collection %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// AddToCollection is idempotent.
func (s *Store) AddToCollection(ctx context.Context, collectionID, projectID string, at time.Time) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO collection_projects (collection_id, project_id, added_at) VALUES (?, ?, ?)`,
		collectionID, projectID, toMillis(at))
	if err != nil {
		return fmt.Errorf("add %s to collection %s: %w", projectID, collectionID, err)
	}
	return nil
}

// RemoveFromCollection is idempotent.
func (s *Store) RemoveFromCollection(ctx context.Context, collectionID, projectID string) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM collection_projects WHERE collection_id = ? AND project_id = ?`,
		collectionID, projectID)
	if err != nil {
		return fmt.Errorf("remove %s from collection %s: %w", projectID, collectionID, err)
	}
	return nil
}

// CollectionsContaining returns the ids of ownerUID's collections that hold
// projectID.
func (s *Store) CollectionsContaining(ctx context.Context, ownerUID, projectID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT c.id FROM collections c
		JOIN collection_projects cp ON cp.collection_id = c.id
		WHERE c.owner_uid = ? AND cp.project_id = ?
		ORDER BY c.id`, ownerUID, projectID)
	if err != nil {
		return nil, fmt.Errorf("collections containing %s: %w", projectID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan collection id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CountCollections(ctx context.Context, ownerUID string) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collections WHERE owner_uid = ?`, ownerUID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count collections of %s: %w", ownerUID, err)
	}
	return n, nil
}
