package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/varunrmantri23/nexacode/internal/core"
)

const projectColumns = `
	p.id, p.title, p.html, p.css, p.js, p.output, p.created_at, p.updated_at,
	u.uid, u.email, u.display_name, u.photo_url, u.provider, u.updated_at`

// SaveProject inserts p or replaces its mutable fields. CreatedAt of an
// existing row is kept.
func (s *Store) SaveProject(ctx context.Context, p core.Project) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO projects (id, title, html, css, js, output, owner_uid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			html = excluded.html,
			css = excluded.css,
			js = excluded.js,
			output = excluded.output,
			updated_at = excluded.updated_at`,
		p.ID, p.Title, p.HTML, p.CSS, p.JS, p.Output, p.Owner.UID,
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (core.Project, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.uid = p.owner_uid
		WHERE p.id = ?`, id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, fmt.Errorf("project %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// ListProjects returns every project, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.uid = p.owner_uid
		ORDER BY p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return collectProjects(rows)
}

// ListProjectsByOwner returns the projects of one user, newest first. A
// limit of zero or less means no limit.
func (s *Store) ListProjectsByOwner(ctx context.Context, ownerUID string, limit int) ([]core.Project, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.uid = p.owner_uid
		WHERE p.owner_uid = ?
		ORDER BY p.id DESC
		LIMIT ?`, ownerUID, limit)
	if err != nil {
		return nil, fmt.Errorf("list projects of %s: %w", ownerUID, err)
	}
	return collectProjects(rows)
}

func (s *Store) CountProjectsByOwner(ctx context.Context, ownerUID string) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE owner_uid = ?`, ownerUID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects of %s: %w", ownerUID, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (core.Project, error) {
	var (
		p                             core.Project
		created, updated, userUpdated int64
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.HTML, &p.CSS, &p.JS, &p.Output, &created, &updated,
		&p.Owner.UID, &p.Owner.Email, &p.Owner.DisplayName, &p.Owner.PhotoURL, &p.Owner.Provider, &userUpdated,
	)
	if err != nil {
		return core.Project{}, err
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	p.Owner.UpdatedAt = fromMillis(userUpdated)
	return p, nil
}

func collectProjects(rows *sql.Rows) ([]core.Project, error) {
	defer rows.Close()

	var out []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return out, nil
}
