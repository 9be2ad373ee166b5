package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/specialistvlad/callgrid/internal/config"
	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/graph"
	"github.com/specialistvlad/callgrid/internal/registry"
	"github.com/specialistvlad/callgrid/internal/remote"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *Config
	registry *registry.Registry
	project  *config.Project
	graph    *graph.Graph
	remote   *remote.Client

	frames     atomic.Uint64
	statusMu   sync.Mutex
	lastStatus []remote.ViewStatus
	modules    []moduleStatus
}

// NewApp is the constructor for the main application. It loads the project
// and validates the registry; both failures are fatal startup errors and
// panic.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, plugins ...registry.Plugin) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, uuid.NewString(), outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	project, err := loader.Load(ctx, cfg.ProjectPaths...)
	if err != nil {
		panic(fmt.Errorf("failed to load project: %w", err))
	}
	logger.Debug("Project loaded and translated into unified model.")

	reg := registry.New()
	if len(plugins) == 0 {
		plugins = corePlugins
	}
	reg.Load(plugins...)
	logger.Debug("All module packages registered.", "count", len(plugins))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// A mismatch between module code and call descriptions is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.", "modules", len(reg.ModuleClasses()), "calls", len(reg.CallClasses()))

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfg,
		registry: reg,
		project:  project,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Graph returns the module graph once Run has built it.
func (a *App) Graph() *graph.Graph { return a.graph }

// Project returns the loaded project.
func (a *App) Project() *config.Project { return a.project }

// Frames returns the number of frames rendered so far.
func (a *App) Frames() uint64 { return a.frames.Load() }

// SetRemote attaches a remote control client. Run dials one itself when
// RemoteURL is configured.
func (a *App) SetRemote(c *remote.Client) { a.remote = c }
