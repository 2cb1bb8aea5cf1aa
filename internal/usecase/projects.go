package usecase

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/varunrmantri23/nexacode/internal/core"
)

const (
	DefaultPageSize = 6
	excerptMaxRunes = 140
	excerptEllipsis = "…"
)

type ProjectService struct {
	store    ProjectStore
	ids      IDGenerator
	now      Clock
	pageSize int
	strip    *bluemonday.Policy
}

func NewProjectService(store ProjectStore, ids IDGenerator, now Clock, pageSize int) *ProjectService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ProjectService{
		store:    store,
		ids:      ids,
		now:      now,
		pageSize: pageSize,
		strip:    bluemonday.StrictPolicy(),
	}
}

// Save persists p on behalf of owner. A project without an id, or one that
// belongs to someone else, is stored under a fresh id owned by owner.
func (s *ProjectService) Save(ctx context.Context, owner core.User, p core.Project) (core.Project, error) {
	if owner.UID == "" {
		return core.Project{}, fmt.Errorf("save project: %w", core.ErrUnauthorized)
	}
	now := s.now().UTC()

	fork := p.ID == ""
	if !fork {
		existing, err := s.store.GetProject(ctx, p.ID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			p.CreatedAt = now
		case err != nil:
			return core.Project{}, err
		case existing.Owner.UID != owner.UID:
			fork = true
		default:
			p.CreatedAt = existing.CreatedAt
		}
	}
	if fork {
		p.ID = s.ids()
		p.CreatedAt = now
	}

	p.Title = core.NormalizeTitle(p.Title)
	p.Owner = owner
	p.UpdatedAt = now

	if err := s.store.SaveProject(ctx, p); err != nil {
		return core.Project{}, err
	}
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (core.Project, error) {
	return s.store.GetProject(ctx, id)
}

type ListQuery struct {
	Search string
	Page   int
}

type ProjectSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	OwnerUID  string `json:"owner_uid"`
	OwnerName string `json:"owner_name"`
	PhotoURL  string `json:"photo_url,omitempty"`
}

type ProjectPage struct {
	core.PageInfo
	Search   string           `json:"search,omitempty"`
	Projects []ProjectSummary `json:"projects"`
}

// List filters every project by title search and returns one page, newest
// first.
func (s *ProjectService) List(ctx context.Context, q ListQuery) (ProjectPage, error) {
	all, err := s.store.ListProjects(ctx)
	if err != nil {
		return ProjectPage{}, err
	}

	term := strings.TrimSpace(q.Search)
	matched := all[:0]
	for _, p := range all {
		if core.MatchesSearch(p.Title, term) {
			matched = append(matched, p)
		}
	}

	start, end, info := core.Paginate(len(matched), q.Page, s.pageSize)
	page := ProjectPage{
		PageInfo: info,
		Search:   term,
		Projects: make([]ProjectSummary, 0, end-start),
	}
	for _, p := range matched[start:end] {
		page.Projects = append(page.Projects, s.Summarize(p))
	}
	return page, nil
}

func (s *ProjectService) Summarize(p core.Project) ProjectSummary {
	return ProjectSummary{
		ID:        p.ID,
		Title:     p.Title,
		Excerpt:   s.Excerpt(p.HTML),
		OwnerUID:  p.Owner.UID,
		OwnerName: p.Owner.Name(),
		PhotoURL:  p.Owner.PhotoURL,
	}
}

// Excerpt reduces markup to a short line of plain text for listings.
func (s *ProjectService) Excerpt(markup string) string {
	text := html.UnescapeString(s.strip.Sanitize(markup))
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= excerptMaxRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:excerptMaxRunes])) + excerptEllipsis
}
