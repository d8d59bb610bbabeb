package render

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// PixelStats tracks per-pixel accumulation the way the teacher's
// pkg/renderer.PixelStats does: a running color sum plus luminance moments
// for convergence estimation, with SampleCount as the divisor for both.
type PixelStats struct {
	ColorAccum       core.Vec3
	LuminanceAccum   float64
	LuminanceSqAccum float64
	SampleCount      int
}

// AddSample folds one traced sample into the running statistics.
func (ps *PixelStats) AddSample(sample core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(sample)
	luminance := sample.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// Color returns the current average radiance for this pixel.
func (ps *PixelStats) Color() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// Variance returns the sample variance of luminance accumulated so far, used
// to decide whether a pixel still needs more samples.
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount < 2 {
		return math.Inf(1)
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	return math.Max(0, ps.LuminanceSqAccum/n-mean*mean)
}

// RenderStats summarizes a framebuffer's convergence for progress reporting,
// matching the shape of the teacher's RenderStats (total/average/min/max
// sample counts) but computed from a live Framebuffer instead of a
// completed pass.
type RenderStats struct {
	TotalPixels    int
	TotalSamples   int
	AverageSamples float64
	MinSamples     int
	MaxSamples     int
}

// Stats computes a RenderStats summary of fb's current accumulation state.
func (fb *Framebuffer) Stats() RenderStats {
	stats := RenderStats{TotalPixels: len(fb.Pixels)}
	if len(fb.Pixels) == 0 {
		return stats
	}
	stats.MinSamples = fb.Pixels[0].SampleCount
	for i := range fb.Pixels {
		n := fb.Pixels[i].SampleCount
		stats.TotalSamples += n
		stats.MinSamples = min(stats.MinSamples, n)
		stats.MaxSamples = max(stats.MaxSamples, n)
	}
	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	return stats
}
