package render

import (
	"context"
	"image"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brindlefx/lumentrace/pkg/bvh"
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/integrator"
	"github.com/brindlefx/lumentrace/pkg/lights"
	"github.com/brindlefx/lumentrace/pkg/material"
)

type silentLogger struct{}

func (silentLogger) Printf(format string, args ...interface{}) {}

type constantSky struct{ color core.Vec3 }

func (s constantSky) Sample(_ core.Vec3) core.Vec3 { return s.color }

// furnaceMesh builds a closed box of rough, non-metallic PBR walls with base
// color 1 and no emission; accumulated radiance inside it must never become
// NaN or go negative.
func furnaceMesh() (*bvh.Mesh, []material.Surface) {
	mesh := &bvh.Mesh{}
	surfaces := []material.Surface{}

	addQuad := func(a, b, c, d, normal core.Vec3) {
		base := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, a, b, c, d)
		mesh.Normals = append(mesh.Normals, normal, normal, normal, normal)
		mesh.UVs = append(mesh.UVs, core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1), core.NewVec2(0, 1))
		mesh.Indices = append(mesh.Indices, [3]uint32{base, base + 1, base + 2}, [3]uint32{base, base + 2, base + 3})
		matIdx := uint32(len(surfaces))
		mesh.MaterialIndex = append(mesh.MaterialIndex, matIdx, matIdx)
		surfaces = append(surfaces, material.Surface{
			BaseColor:              core.NewVec3(1, 1, 1),
			Roughness:              1.0,
			SpecularWeightClampMin: 0.1,
			SpecularWeightClampMax: 0.9,
		})
	}

	addQuad(core.NewVec3(-1, -1, -1), core.NewVec3(1, -1, -1), core.NewVec3(1, 1, -1), core.NewVec3(-1, 1, -1), core.NewVec3(0, 0, 1))
	addQuad(core.NewVec3(-1, -1, 1), core.NewVec3(-1, 1, 1), core.NewVec3(1, 1, 1), core.NewVec3(1, -1, 1), core.NewVec3(0, 0, -1))
	addQuad(core.NewVec3(-1, -1, -1), core.NewVec3(-1, 1, -1), core.NewVec3(-1, 1, 1), core.NewVec3(-1, -1, 1), core.NewVec3(1, 0, 0))
	addQuad(core.NewVec3(1, -1, -1), core.NewVec3(1, -1, 1), core.NewVec3(1, 1, 1), core.NewVec3(1, 1, -1), core.NewVec3(-1, 0, 0))
	addQuad(core.NewVec3(-1, 1, -1), core.NewVec3(1, 1, -1), core.NewVec3(1, 1, 1), core.NewVec3(-1, 1, 1), core.NewVec3(0, -1, 0))
	addQuad(core.NewVec3(-1, -1, -1), core.NewVec3(-1, -1, 1), core.NewVec3(1, -1, 1), core.NewVec3(1, -1, -1), core.NewVec3(0, 1, 0))

	return mesh, surfaces
}

func furnaceScene() integrator.Scene {
	mesh, surfaces := furnaceMesh()
	tree := bvh.Build(mesh)
	surfaceAt := func(i uint32) material.Surface { return surfaces[mesh.MaterialIndex[i]] }
	table := lights.Build(mesh, surfaceAt)
	return integrator.Scene{Tree: tree, SurfaceAt: surfaceAt, LightTable: table, Sky: constantSky{}}
}

func TestCPUBackend_FurnaceTestStaysFiniteAndNonNegative(t *testing.T) {
	scene := furnaceScene()
	camera := integrator.Camera{Position: core.Vec3{}}
	config := core.DefaultTracingConfig(8, 8)
	config.NEEMode = core.NEEOff

	fb := NewFramebuffer(config.Width, config.Height)
	backend := CPUBackend{NumWorkers: 4}

	for i := 0; i < 20; i++ {
		require.NoError(t, backend.RenderSample(scene, camera, config, fb))
	}

	for i := range fb.Pixels {
		c := fb.Pixels[i].Color()
		require.False(t, c.X < 0 || c.Y < 0 || c.Z < 0, "pixel %d went negative: %v", i, c)
		require.False(t, math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsNaN(c.Z), "pixel %d is NaN", i)
	}
}

func TestCPUBackend_RowParallelMatchesSingleWorker(t *testing.T) {
	scene := furnaceScene()
	camera := integrator.Camera{Position: core.Vec3{}}
	config := core.DefaultTracingConfig(16, 16)
	config.NEEMode = core.NEEOff

	fbSingle := NewFramebuffer(config.Width, config.Height)
	fbParallel := NewFramebuffer(config.Width, config.Height)

	require.NoError(t, (CPUBackend{NumWorkers: 1}).RenderSample(scene, camera, config, fbSingle))
	require.NoError(t, (CPUBackend{NumWorkers: 6}).RenderSample(scene, camera, config, fbParallel))

	for i := range fbSingle.Pixels {
		assert.InDelta(t, fbSingle.Pixels[i].Color().X, fbParallel.Pixels[i].Color().X, 1e-9, "pixel %d diverged between worker counts", i)
	}
}

func TestDriver_TickAccumulatesSamples(t *testing.T) {
	scene := furnaceScene()
	camera := integrator.Camera{Position: core.Vec3{}}
	config := core.DefaultTracingConfig(4, 4)
	config.SyncRate = 2

	driver := NewDriver(scene, camera, CPUBackend{NumWorkers: 2}, config, silentLogger{})

	for i := 0; i < 5; i++ {
		_, err := driver.Tick()
		require.NoError(t, err)
	}

	stats := driver.fb.Stats()
	assert.Equal(t, 5, stats.MinSamples)
	assert.Equal(t, 5, stats.MaxSamples)
}

func TestDriver_SetConfigFlushesOnNextTick(t *testing.T) {
	scene := furnaceScene()
	camera := integrator.Camera{Position: core.Vec3{}}
	config := core.DefaultTracingConfig(4, 4)

	driver := NewDriver(scene, camera, CPUBackend{NumWorkers: 2}, config, silentLogger{})
	_, err := driver.Tick()
	require.NoError(t, err)
	require.Equal(t, 1, driver.fb.Stats().MinSamples)

	driver.SetConfig(config)
	_, err = driver.Tick()
	require.NoError(t, err)

	// The dirty flush resets accumulation before the flushing tick runs, so
	// exactly one sample's worth of accumulation should be present again,
	// not two.
	assert.Equal(t, 1, driver.fb.Stats().MinSamples)
}

func TestDriver_RunStopsOnContextCancellation(t *testing.T) {
	scene := furnaceScene()
	camera := integrator.Camera{Position: core.Vec3{}}
	config := core.DefaultTracingConfig(4, 4)
	config.SyncRate = 1

	driver := NewDriver(scene, camera, CPUBackend{NumWorkers: 2}, config, silentLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	published := 0
	err := driver.Run(ctx, func(img *image.RGBA, avg float64) {
		published++
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, published, 0)
	assert.False(t, driver.Running())
}

func TestDriver_SnapshotWithDenoiseEnabledKeepsFrameSize(t *testing.T) {
	scene := furnaceScene()
	camera := integrator.Camera{Position: core.Vec3{}}
	config := core.DefaultTracingConfig(4, 4)
	config.Denoise = true

	driver := NewDriver(scene, camera, CPUBackend{NumWorkers: 1}, config, silentLogger{})
	_, err := driver.Tick()
	require.NoError(t, err)

	img := driver.Snapshot()
	require.NotNil(t, img)
	assert.Equal(t, config.Width, img.Bounds().Dx())
	assert.Equal(t, config.Height, img.Bounds().Dy())
}
