package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/callgrid/internal/remote"
	"github.com/specialistvlad/callgrid/internal/slotid"
)

type healthStatus struct {
	Status  string              `json:"status"`
	Frames  uint64              `json:"frames"`
	Views   []remote.ViewStatus `json:"views"`
	Modules []moduleStatus      `json:"modules"`
}

type moduleStatus struct {
	Name      string   `json:"name"`
	Class     string   `json:"class"`
	Producers []string `json:"producers"`
}

// snapshotModules records the module graph for the health endpoint. The
// graph does not change shape while frames are rendered.
func (a *App) snapshotModules() {
	modules := []moduleStatus{}
	for _, inst := range a.graph.Instances() {
		producers, err := a.graph.Producers(inst.Name)
		if err != nil {
			a.logger.Warn("Cannot list producers.", "module", inst.Name, "error", err)
		}
		global := make([]string, 0, len(producers))
		for _, p := range producers {
			global = append(global, slotid.Separator+p)
		}
		modules = append(modules, moduleStatus{Name: slotid.Separator + inst.Name, Class: inst.Class, Producers: global})
	}
	a.statusMu.Lock()
	a.modules = modules
	a.statusMu.Unlock()
}

// HealthHandler reports the frame counter, the outcome of the last frame
// of every view and the module graph.
func (a *App) HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
		a.statusMu.Lock()
		st := healthStatus{Status: "ok", Frames: a.frames.Load(), Views: a.lastStatus, Modules: a.modules}
		a.statusMu.Unlock()
		if st.Views == nil {
			st.Views = []remote.ViewStatus{}
		}
		if st.Modules == nil {
			st.Modules = []moduleStatus{}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(st); err != nil {
			a.logger.Warn("Cannot write health status.", "error", err)
		}
	})
}

func (a *App) newHealthServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/health", a.HealthHandler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serveHealth runs srv until ctx is done and then shuts it down
// gracefully.
func (a *App) serveHealth(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("health check server failed: %w", err)
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	a.logger.Info("🩺 Shutting down health check server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Health check server shut down gracefully.")
	return nil
}
