package core

import (
	"fmt"
	"strings"
	"time"
)

const DefaultTitle = "Untitled"

type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Provider    string    `json:"provider,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Name is the label shown next to a user's projects: the display name, or
// the local part of the email when no display name is set.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if local, _, ok := strings.Cut(u.Email, "@"); ok {
		return local
	}
	return u.Email
}

// Project is the persisted record of an editing session. Output is the
// denormalized composed document kept for listings; loading always reseeds
// from HTML, CSS and JS.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	HTML      string    `json:"html"`
	CSS       string    `json:"css"`
	JS        string    `json:"js"`
	Output    string    `json:"output,omitempty"`
	Owner     User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Project) Sources() Sources {
	return Sources{Markup: p.HTML, Styles: p.CSS, Script: p.JS}
}

func (p *Project) SetSources(src Sources) {
	p.HTML = src.Markup
	p.CSS = src.Styles
	p.JS = src.Script
}

// NormalizeTitle trims a title and falls back to DefaultTitle when blank.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

type Collection struct {
	ID         string    `json:"id"`
	OwnerUID   string    `json:"owner_uid"`
	Name       string    `json:"name"`
	ProjectIDs []string  `json:"projects"`
	CreatedAt  time.Time `json:"created_at"`
}

func (c Collection) Contains(projectID string) bool {
	for _, id := range c.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

func ValidateCollectionName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: collection name is required", ErrInvalidInput)
	}
	return name, nil
}
