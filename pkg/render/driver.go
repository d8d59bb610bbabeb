package render

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/integrator"
)

// Driver owns the framebuffer and ticks a Backend once per sample,
// publishing snapshots periodically rather than after every single sample.
// Field layout mirrors the teacher's ProgressiveRaytracer/WorkerPool split
// of "what's shared" vs "what's owned per-pass", generalized into a single
// always-on tick loop per the spec's driver model (§5) instead of the
// teacher's bounded pass count.
type Driver struct {
	scene   integrator.Scene
	backend Backend
	logger  core.Logger

	running      atomic.Bool
	samples      atomic.Int64
	syncRate     atomic.Int64
	denoise      atomic.Bool
	useBlueNoise atomic.Bool
	interacting  atomic.Bool
	dirty        atomic.Bool

	configMu sync.RWMutex
	config   core.TracingConfig

	// fbMu guards camera and fb together: both describe "what the current
	// accumulation means" and must be swapped out atomically on a dirty
	// flush. It is held only for the duration of a publish copy or a
	// reset/swap, never across a tracing tick.
	fbMu   sync.RWMutex
	camera integrator.Camera
	fb     *Framebuffer

	denoiser Denoiser
}

// NewDriver constructs a Driver ready to tick, seeding its framebuffer from
// config's dimensions.
func NewDriver(scene integrator.Scene, camera integrator.Camera, backend Backend, config core.TracingConfig, logger core.Logger) *Driver {
	d := &Driver{
		scene:    scene,
		camera:   camera,
		backend:  backend,
		logger:   logger,
		config:   config,
		fb:       NewFramebuffer(config.Width, config.Height),
		denoiser: NewBlurDenoiser(),
	}
	d.syncRate.Store(int64(max(1, config.SyncRate)))
	d.denoise.Store(config.Denoise)
	d.useBlueNoise.Store(config.UseBlueNoise)
	return d
}

// SetConfig replaces the tracing config and marks the driver dirty, so the
// next tick flushes the framebuffer before resuming accumulation.
func (d *Driver) SetConfig(config core.TracingConfig) {
	d.configMu.Lock()
	d.config = config
	d.configMu.Unlock()

	d.syncRate.Store(int64(max(1, config.SyncRate)))
	d.denoise.Store(config.Denoise)
	d.useBlueNoise.Store(config.UseBlueNoise)
	d.dirty.Store(true)
}

// SetCamera replaces the camera and marks the driver dirty.
func (d *Driver) SetCamera(camera integrator.Camera) {
	d.fbMu.Lock()
	d.camera = camera
	d.fbMu.Unlock()
	d.dirty.Store(true)
}

// SetInteracting toggles a hint the caller can use to lower publish
// frequency while the user is dragging the camera around.
func (d *Driver) SetInteracting(interacting bool) {
	d.interacting.Store(interacting)
}

func (d *Driver) configSnapshot() core.TracingConfig {
	d.configMu.RLock()
	defer d.configMu.RUnlock()
	return d.config
}

// Tick advances every pixel by one sample, flushing the framebuffer first if
// a dirty config/camera change is pending, and returns the current average
// sample count once the tick completes.
func (d *Driver) Tick() (float64, error) {
	if d.dirty.CompareAndSwap(true, false) {
		d.fbMu.Lock()
		d.fb.Reset()
		d.fbMu.Unlock()
		d.samples.Store(0)
	}

	config := d.configSnapshot()

	d.fbMu.RLock()
	fb := d.fb
	camera := d.camera
	d.fbMu.RUnlock()

	if err := d.backend.RenderSample(d.scene, camera, config, fb); err != nil {
		return 0, fmt.Errorf("render tick: %w", err)
	}

	d.samples.Add(1)
	return fb.Stats().AverageSamples, nil
}

// Snapshot publishes a copy of the current framebuffer image, optionally
// denoised, guarded only for the duration of the copy itself so the tracing
// loop never blocks on a reader.
func (d *Driver) Snapshot() *image.RGBA {
	d.fbMu.RLock()
	img := d.fb.Snapshot()
	d.fbMu.RUnlock()

	if d.denoise.Load() {
		img = d.denoiser.Denoise(img)
	}
	return img
}

// Run ticks the driver until ctx is cancelled, publishing a snapshot every
// syncRate samples. Mirrors the teacher's RenderProgressive channel loop,
// generalized to an unbounded tick loop that keeps accumulating samples
// instead of stopping at a fixed pass count.
func (d *Driver) Run(ctx context.Context, publish func(img *image.RGBA, averageSamples float64)) error {
	d.running.Store(true)
	defer d.running.Store(false)

	startConfig := d.configSnapshot()
	d.logger.Printf("render driver starting (%dx%d)\n", startConfig.Width, startConfig.Height)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		avg, err := d.Tick()
		if err != nil {
			return err
		}

		rate := d.syncRate.Load()
		if rate < 1 {
			rate = 1
		}
		if d.samples.Load()%rate == 0 && publish != nil {
			publish(d.Snapshot(), avg)
		}
	}
}

// Running reports whether Run is currently ticking.
func (d *Driver) Running() bool { return d.running.Load() }
