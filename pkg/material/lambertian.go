package material

import (
	"math"

	"github.com/brindlefx/lumentrace/pkg/core"
)

// Lambertian is a perfectly diffuse BSDF.
type Lambertian struct {
	Albedo core.Vec3
}

func (l Lambertian) pdfFast(cosTheta float64) float64 {
	return cosTheta / math.Pi
}

func (l Lambertian) evaluateFast(cosTheta float64) core.Vec3 {
	return l.Albedo.Multiply(cosTheta / math.Pi)
}

func (l Lambertian) Evaluate(_, normal, sampleDirection core.Vec3, _ Lobe) core.Vec3 {
	cosTheta := math.Max(0, normal.Dot(sampleDirection))
	return l.evaluateFast(cosTheta)
}

func (l Lambertian) Sample(_, normal core.Vec3, rng *core.State) Sample {
	local := core.CosineSampleHemisphere(rng.Gen1(), rng.Gen1())
	direction := core.AlignToNormal(local, normal)

	cosTheta := math.Max(0, normal.Dot(direction))
	return Sample{
		PDF:       l.pdfFast(cosTheta),
		Lobe:      LobeDiffuseReflection,
		Spectrum:  l.evaluateFast(cosTheta),
		Direction: direction,
	}
}

func (l Lambertian) PDF(_, normal, sampleDirection core.Vec3, _ Lobe) float64 {
	cosTheta := math.Max(0, normal.Dot(sampleDirection))
	return l.pdfFast(cosTheta)
}
