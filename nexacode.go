// Package nexacode wires the playground server: storage, identity, editing
// sessions and the HTTP API.
package nexacode

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/varunrmantri23/nexacode/internal/adapters/http"
	"github.com/varunrmantri23/nexacode/internal/auth"
	"github.com/varunrmantri23/nexacode/internal/config"
	"github.com/varunrmantri23/nexacode/internal/core"
	"github.com/varunrmantri23/nexacode/internal/preview"
	"github.com/varunrmantri23/nexacode/internal/session"
	"github.com/varunrmantri23/nexacode/internal/store"
	"github.com/varunrmantri23/nexacode/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

type Config = config.Config

type App struct {
	cfg    Config
	logger *zap.Logger
	store  *store.Store

	sessions    *session.Manager
	projects    *usecase.ProjectService
	profiles    *usecase.ProfileService
	collections *usecase.CollectionService
	handler     http.Handler
}

type Option func(*App)

func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New opens the store and builds every service. Call Stop to release it.
func New(cfg Config, opts ...Option) (*App, error) {
	app := &App{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(app)
	}

	st, err := store.Open(cfg.DBPath, store.WithMkdirAll())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	app.store = st

	ids := usecase.NewULIDGenerator()
	now := time.Now

	app.projects = usecase.NewProjectService(st, ids, now, cfg.Listing.PageSize)
	app.profiles = usecase.NewProfileService(st, st, st, now, cfg.Profile.RecentProjects)
	app.collections = usecase.NewCollectionService(st, st, ids, now)
	app.sessions = session.NewManager(app.projects, session.Config{
		Quiescence:  cfg.Preview.Quiescence,
		IdleTimeout: cfg.Session.IdleTimeout,
		IDs:         ids,
		Logger:      app.logger.Named("session"),
	})

	verifierOpts := []auth.Option{auth.WithIssuer(cfg.Auth.Issuer)}
	if cfg.Dev {
		verifierOpts = append(verifierOpts, auth.WithDevFallback())
	}

	app.handler = httpadapter.NewRouter(httpadapter.Deps{
		Sessions:    app.sessions,
		Projects:    app.projects,
		Profiles:    app.profiles,
		Collections: app.collections,
		Verifier:    auth.NewVerifier(cfg.Auth.Secret, verifierOpts...),
		Logger:      app.logger.Named("http"),
		IsDev:       cfg.Dev,
	})

	return app, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Sessions() *session.Manager {
	return a.sessions
}

func (a *App) Projects() *usecase.ProjectService {
	return a.projects
}

// Run listens on the configured address and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln and the idle session reaper. When ctx is
// done every session is closed, which ends open preview streams, and the
// server shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.sessions.Run(ctx, a.cfg.Session.ReapInterval)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Export composes the stored project's raw sources into a document. The
// stored output is not trusted since it may predate the last save.
func (a *App) Export(ctx context.Context, projectID string) (core.Project, string, error) {
	p, err := a.projects.Get(ctx, projectID)
	if err != nil {
		return core.Project{}, "", err
	}

	composer := preview.New(preview.WithLogger(a.logger))
	defer composer.Close()
	composer.Seed(p.Sources())
	return p, composer.Document(), nil
}

// Stop closes every session and the store.
func (a *App) Stop() error {
	a.sessions.CloseAll()
	return a.store.Close()
}
