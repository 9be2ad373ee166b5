package app

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/specialistvlad/callgrid/internal/remote"
	"github.com/specialistvlad/callgrid/internal/slotid"
	"github.com/specialistvlad/callgrid/internal/tracing"
	"github.com/specialistvlad/callgrid/internal/view"
	"golang.org/x/sync/errgroup"
)

// Run builds the graph and renders frames until the frame limit is reached
// or ctx is cancelled. The graph is released before Run returns.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tcfg := tracing.DefaultConfig()
	tcfg.OTLPEndpoint = a.cfg.OTLPEndpoint
	tp, err := tracing.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Tracer shutdown failed.", "error", err)
		}
	}()

	if a.remote == nil && a.cfg.RemoteURL != "" {
		rc, err := remote.Dial(ctx, remote.Config{URL: a.cfg.RemoteURL, Namespace: a.cfg.RemoteNamespace, QueueSize: 64})
		if err != nil {
			return fmt.Errorf("failed to connect remote control: %w", err)
		}
		defer rc.Close()
		a.remote = rc
	}

	if err := a.BuildGraph(ctx); err != nil {
		return fmt.Errorf("failed to build module graph: %w", err)
	}
	defer a.graph.Release(ctx)
	a.snapshotModules()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(ctx)
	if a.cfg.HealthcheckPort > 0 {
		srv := a.newHealthServer(a.cfg.HealthcheckPort)
		eg.Go(func() error { return a.serveHealth(egCtx, srv) })
	} else {
		a.logger.Debug("Health check server not started: disabled")
	}
	eg.Go(func() error {
		defer cancel()
		return a.renderLoop(egCtx)
	})
	if err := eg.Wait(); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// renderLoop drives every view once per frame. All graph access happens on
// this goroutine, including remote parameter changes.
func (a *App) renderLoop(ctx context.Context) error {
	views := a.renderables()
	if len(views) == 0 {
		a.logger.Warn("No views found in project, nothing to render.")
		return nil
	}

	var tick <-chan time.Time
	if a.cfg.FPS > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / a.cfg.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	a.logger.Info("🚀 Starting frame loop...", "views", len(views), "frames", a.cfg.Frames, "fps", a.cfg.FPS)
	start := time.Now()
	for frame := uint64(1); a.cfg.Frames == 0 || frame <= uint64(a.cfg.Frames); frame++ {
		if ctx.Err() != nil {
			break
		}
		a.drainRemote()
		a.renderFrame(ctx, frame, views, time.Since(start).Seconds())

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}
	a.logger.Info("🏁 Frame loop finished.", "frames", a.frames.Load())
	return nil
}

type namedView struct {
	name string
	view view.Renderable
}

func (a *App) renderables() []namedView {
	var out []namedView
	for _, inst := range a.graph.Views() {
		r, ok := inst.Module.(view.Renderable)
		if !ok {
			a.logger.Warn("View class cannot render frames, skipping.", "view", inst.Name, "class", inst.Class)
			continue
		}
		out = append(out, namedView{name: slotid.Separator + inst.Name, view: r})
	}
	return out
}

func (a *App) renderFrame(ctx context.Context, frame uint64, views []namedView, instTime float64) {
	ctx, span := tracing.StartFrameSpan(ctx, frame, len(views))
	defer span.End()

	statuses := make([]remote.ViewStatus, 0, len(views))
	for _, v := range views {
		res := v.view.RenderFrame(ctxlog.With(ctx, "view", v.name), instTime)
		statuses = append(statuses, remote.ViewStatus{
			Name:      v.name,
			Title:     res.Title,
			Reason:    res.Reason,
			Triangles: res.Stats.Triangles,
			Time:      res.Time,
		})
	}

	a.frames.Store(frame)
	a.statusMu.Lock()
	a.lastStatus = statuses
	a.statusMu.Unlock()

	if a.remote != nil {
		a.remote.PublishFrame(remote.Frame{Number: frame, Views: statuses})
	}
}

func (a *App) drainRemote() {
	if a.remote == nil {
		return
	}
	a.remote.Drain(func(cmd remote.Command) error {
		return a.graph.SetParamValue(cmd.Name, cmd.Value)
	})
}
