// Package http exposes sessions, previews, projects, collections and
// profiles over HTTP.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/varunrmantri23/nexacode/internal/auth"
	"github.com/varunrmantri23/nexacode/internal/session"
	"github.com/varunrmantri23/nexacode/internal/usecase"
)

// maxSourceBytes bounds a single buffer update.
const maxSourceBytes = 1 << 20

type Deps struct {
	Sessions    *session.Manager
	Projects    *usecase.ProjectService
	Profiles    *usecase.ProfileService
	Collections *usecase.CollectionService
	Verifier    *auth.Verifier
	Logger      *zap.Logger
	IsDev       bool
}

type handler struct {
	sessions    *session.Manager
	projects    *usecase.ProjectService
	profiles    *usecase.ProfileService
	collections *usecase.CollectionService
	verifier    *auth.Verifier
	logger      *zap.Logger
	isDev       bool
	upgrader    websocket.Upgrader
}

func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{
		sessions:    deps.Sessions,
		projects:    deps.Projects,
		profiles:    deps.Profiles,
		collections: deps.Collections,
		verifier:    deps.Verifier,
		logger:      logger,
		isDev:       deps.IsDev,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			HandshakeTimeout: 10 * time.Second,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The preview iframe is sandboxed and cannot authenticate; the session
	// id is the capability.
	r.Get("/preview/{id}", h.sessionPreview)
	r.Get("/preview/{id}/events", h.sessionEvents)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authenticate)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.openSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Patch("/", h.renameSession)
				r.Delete("/", h.closeSession)
				r.Put("/sources/{kind}", h.updateSource)
				r.Post("/save", h.saveSession)
				r.Get("/ws", h.sessionSocket)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.listProjects)
			r.Get("/{id}", h.getProject)
			r.Get("/{id}/preview", h.projectPreview)
			r.Get("/{id}/collections", h.projectCollections)
		})

		r.Get("/me", h.getProfile)
		r.Put("/me", h.updateProfile)

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", h.listCollections)
			r.Post("/", h.createCollection)
			r.Delete("/{id}", h.deleteCollection)
			r.Put("/{id}/projects/{projectID}", h.addToCollection)
			r.Delete("/{id}/projects/{projectID}", h.removeFromCollection)
			r.Post("/{id}/projects/{projectID}/toggle", h.toggleCollection)
		})
	})

	return r
}
