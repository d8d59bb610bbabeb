package render

import (
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/integrator"
)

// Backend advances every pixel in a framebuffer by exactly one sample,
// matching the spec's requirement that the CPU and GPU execution paths be
// interchangeable implementations of the same per-sample tick.
type Backend interface {
	RenderSample(scene integrator.Scene, camera integrator.Camera, config core.TracingConfig, fb *Framebuffer) error
}
