package skybox

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/texture"
)

func TestAtmosphere_SampleFinite(t *testing.T) {
	atm := Atmosphere{SunDirection: core.NewVec3(0, 1, 0).Normalize(), SunIntensity: 22.0}
	origin := core.NewVec3(0, 100, 0)

	dirs := []core.Vec3{
		core.NewVec3(0, 1, 0),
		core.NewVec3(1, 0.1, 0).Normalize(),
		core.NewVec3(0, 0.01, 1).Normalize(),
	}
	for i, d := range dirs {
		c := atm.Sample(origin, d)
		if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsNaN(c.Z) {
			t.Fatalf("dir %d: NaN component in %v", i, c)
		}
		if math.IsInf(c.X, 0) || c.X < 0 {
			t.Fatalf("dir %d: invalid X component %v", i, c.X)
		}
	}
}

func TestAtmosphere_LookingTowardSunIsBrighter(t *testing.T) {
	atm := Atmosphere{SunDirection: core.NewVec3(0, 0.2, 1).Normalize(), SunIntensity: 22.0}
	origin := core.NewVec3(0, 100, 0)

	towardSun := atm.Sample(origin, atm.SunDirection)
	awayFromSun := atm.Sample(origin, atm.SunDirection.Negate())

	if towardSun.Luminance() <= awayFromSun.Luminance() {
		t.Fatalf("expected looking toward the sun to be brighter: toward=%v away=%v", towardSun, awayFromSun)
	}
}

func TestEnvironmentMap_SampleWrapsAroundEquator(t *testing.T) {
	atlas := texture.NewAtlas(4, 4)
	env := EnvironmentMap{Atlas: atlas, SunDirection: core.NewVec3(0, 0.3, 1).Normalize(), SunIntensity: 15.0}

	c := env.Sample(core.NewVec3(1, 0, 0))
	if math.IsNaN(c.X) {
		t.Fatalf("expected finite sample, got NaN")
	}
}

func TestEnvironmentMap_SunAzimuthRotatesLookup(t *testing.T) {
	atlas := texture.NewAtlas(8, 8)
	strip := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				strip.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				strip.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	atlas.Blit(strip, strip.Bounds())

	facingSun := EnvironmentMap{Atlas: atlas, SunDirection: core.NewVec3(1, 0, 0), SunIntensity: 15.0}
	rotatedSun := EnvironmentMap{Atlas: atlas, SunDirection: core.NewVec3(0, 0, 1), SunIntensity: 15.0}

	dir := core.NewVec3(1, 0, 0)
	if facingSun.Sample(dir).Equals(rotatedSun.Sample(dir)) {
		t.Fatalf("expected rotating the sun's azimuth to change the environment lookup")
	}
}
