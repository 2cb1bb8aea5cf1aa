package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/varunrmantri23/nexacode/internal/core"
)

// UpsertUser records the identity-provider profile of u. A display name the
// user already edited is kept when the provider sends a different one.
func (s *Store) UpsertUser(ctx context.Context, u core.User) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (uid, email, display_name, photo_url, provider, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			email = excluded.email,
			display_name = CASE WHEN users.display_name = '' THEN excluded.display_name ELSE users.display_name END,
			photo_url = excluded.photo_url,
			provider = excluded.provider,
			updated_at = excluded.updated_at`,
		u.UID, u.Email, u.DisplayName, u.PhotoURL, u.Provider, toMillis(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.UID, err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, uid string) (core.User, error) {
	var (
		u         core.User
		updatedAt int64
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT uid, email, display_name, photo_url, provider, updated_at
		FROM users WHERE uid = ?`, uid,
	).Scan(&u.UID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.Provider, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", uid, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", uid, err)
	}
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (s *Store) UpdateDisplayName(ctx context.Context, uid, name string, at time.Time) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE users SET display_name = ?, updated_at = ? WHERE uid = ?`, name, toMillis(at), uid)
	if err != nil {
		return fmt.Errorf("update display name %s: %w", uid, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", uid, core.ErrNotFound)
	}
	return nil
}
