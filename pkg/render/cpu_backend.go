package render

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/integrator"
)

// CPUBackend renders one sample per pixel per tick, dispatching rows across
// an errgroup worker pool instead of the teacher's hand-rolled channel-based
// worker pool (pkg/renderer/worker_pool.go) — the same row-ownership
// discipline (each goroutine only ever writes rows it was handed, never
// touching another goroutine's slice range) carried over to the ecosystem
// primitive.
type CPUBackend struct {
	// NumWorkers is the number of goroutines to fan rows out across; 0 means
	// use runtime.GOMAXPROCS(0).
	NumWorkers int
}

func (b CPUBackend) numWorkers() int {
	if b.NumWorkers > 0 {
		return b.NumWorkers
	}
	return runtime.GOMAXPROCS(0)
}

// RenderSample advances every pixel in fb by exactly one sample, splitting
// the image into contiguous row ranges and rendering each range on its own
// goroutine.
func (b CPUBackend) RenderSample(scene integrator.Scene, camera integrator.Camera, config core.TracingConfig, fb *Framebuffer) error {
	workers := b.numWorkers()
	if workers > fb.Height {
		workers = fb.Height
	}
	if workers < 1 {
		workers = 1
	}

	rowsPerWorker := (fb.Height + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		yStart := w * rowsPerWorker
		yEnd := min(yStart+rowsPerWorker, fb.Height)
		if yStart >= yEnd {
			continue
		}
		g.Go(func() error {
			renderRows(scene, camera, config, fb, yStart, yEnd)
			return nil
		})
	}
	return g.Wait()
}

func renderRows(scene integrator.Scene, camera integrator.Camera, config core.TracingConfig, fb *Framebuffer, yStart, yEnd int) {
	for y := yStart; y < yEnd; y++ {
		for x := 0; x < fb.Width; x++ {
			idx := y*fb.Width + x
			rng := fb.RNG[idx]

			jitter := rng.Gen2()
			uv := integrator.PixelUV(x, y, jitter, fb.Width, fb.Height)
			ray := camera.Ray(uv)

			sample := integrator.TracePixel(scene, config, ray, &rng)
			fb.Pixels[idx].AddSample(sample)
			fb.RNG[idx] = rng.NextSample()
		}
	}
}
