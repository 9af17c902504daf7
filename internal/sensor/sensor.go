// Package sensor streams simulated sensor positions into a live stage.
// It is the in-process analog of an external data source pushing transforms
// at a connector: one prim per sensor, one worker per prim, all writing to
// the same live layer.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stagelink-labs/stagelink/internal/asset"
	"github.com/stagelink-labs/stagelink/internal/stage"
)

// StageName is the live layer the bridge creates under the base URL.
const StageName = "SensorExample.live"

// Bridge owns the live stage and the worker pool feeding it.
type Bridge struct {
	client asset.Client
	logger *slog.Logger
	cfg    Config
	signal Signal

	mu sync.Mutex
	st *stage.Stage
}

// New creates a bridge. When cfg.Script is set the Starlark signal is
// loaded up front so script errors surface before any stage is touched.
func New(client asset.Client, logger *slog.Logger, cfg Config) (*Bridge, error) {
	if client == nil {
		return nil, fmt.Errorf("sensor: client is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cfg = cfg.withDefaults()

	var signal Signal
	if cfg.Script != "" {
		script, err := LoadScriptSignal(cfg.Script)
		if err != nil {
			return nil, err
		}
		signal = script
	} else {
		signal = &OrbitSignal{Radius: cfg.Radius, Height: 50, Count: cfg.Count}
	}

	return &Bridge{client: client, logger: logger, cfg: cfg, signal: signal}, nil
}

// StageURL returns the live stage location for a base URL.
func StageURL(baseURL string) string {
	return asset.JoinURL(baseURL, StageName)
}

// Run creates the live stage, drives the workers until the configured
// lifetime expires or the context is cancelled, then records a final
// checkpoint. Cancellation is a normal shutdown, not an error.
func (b *Bridge) Run(ctx context.Context, baseURL string) error {
	stageURL := StageURL(baseURL)
	if err := b.createStage(ctx, stageURL); err != nil {
		return err
	}
	b.logger.Info("sensor stage created",
		"url", stageURL, "sensors", b.cfg.Count, "interval", time.Duration(b.cfg.Interval).String())

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(b.cfg.Lifetime))
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	for i := range b.cfg.Count {
		g.Go(func() error {
			return b.worker(gctx, stageURL, i, start)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Lifetime is up or we were interrupted; either way record the final
	// state. The save must outlive the cancelled context.
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.save(context.WithoutCancel(ctx), stageURL, "Sensor run finished."); err != nil {
		return err
	}
	b.logger.Info("sensor run finished", "elapsed", time.Since(start).String())
	return nil
}

// createStage replaces any previous run's stage with a fresh one holding
// one cube per sensor.
func (b *Bridge) createStage(ctx context.Context, stageURL string) error {
	if err := b.client.Delete(ctx, stageURL); err != nil && !ignorableDelete(err) {
		return fmt.Errorf("failed to remove previous stage: %w", err)
	}

	st := stage.New()
	world, err := st.DefinePrim("/World", stage.TypeXform)
	if err != nil {
		return err
	}
	world.SetKind(stage.KindAssembly)
	st.SetDefaultPrim(world)

	for i := range b.cfg.Count {
		prim, err := st.DefinePrim(SensorPath(i), stage.TypeCube)
		if err != nil {
			return err
		}
		prim.SetKind(stage.KindComponent)
		prim.SetAttr("size", 10.0)
		prim.SetAttr("extent", []stage.Vec3{{-5, -5, -5}, {5, 5, 5}})
		prim.SetSRT(stage.DefaultSRT())
	}

	b.st = st
	return b.save(ctx, stageURL, "Created sensor stage.")
}

// worker samples the signal at the configured interval and writes its
// sensor's translation until the context ends.
func (b *Bridge) worker(ctx context.Context, stageURL string, index int, start time.Time) error {
	ticker := time.NewTicker(time.Duration(b.cfg.Interval))
	defer ticker.Stop()

	path := SensorPath(index)
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			pos, err := b.signal.Sample(now.Sub(start).Seconds(), index)
			if err != nil {
				return err
			}
			if err := b.update(ctx, stageURL, path, pos); err != nil {
				return err
			}
		}
	}
}

func (b *Bridge) update(ctx context.Context, stageURL, primPath string, pos stage.Vec3) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prim := b.st.GetPrimAtPath(primPath)
	if prim == nil {
		return fmt.Errorf("sensor prim %s vanished from the stage", primPath)
	}
	prim.SetTranslate(pos)
	return b.save(ctx, stageURL, "")
}

// save encodes and writes the stage. Callers hold b.mu.
func (b *Bridge) save(ctx context.Context, stageURL, comment string) error {
	data, err := stage.Encode(b.st)
	if err != nil {
		return err
	}
	if err := b.client.WriteFile(ctx, stageURL, data, comment); err != nil {
		// Shutdown mid-write is not a failure.
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to write %s: %w", stageURL, err)
	}
	return nil
}

// SensorPath returns the prim path for sensor i.
func SensorPath(i int) string {
	return fmt.Sprintf("/World/Sensor_%d", i)
}

func ignorableDelete(err error) bool {
	return err == nil || errors.Is(err, asset.ErrNotFound)
}
