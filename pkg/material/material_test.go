package material

import (
	"math"
	"testing"

	"github.com/brindlefx/lumentrace/pkg/core"
)

func TestLambertian_SampleConsistentWithPDF(t *testing.T) {
	l := Lambertian{Albedo: core.NewVec3(0.8, 0.8, 0.8)}
	normal := core.NewVec3(0, 1, 0)
	view := core.NewVec3(0, 1, 0)
	rng := core.NewState(1)

	for i := 0; i < 1000; i++ {
		s := l.Sample(view, normal, &rng)
		if s.PDF <= 0 {
			t.Fatalf("sample %d: non-positive pdf %v", i, s.PDF)
		}
		if s.Direction.Dot(normal) < -1e-9 {
			t.Fatalf("sample %d: direction below hemisphere", i)
		}
		got := l.PDF(view, normal, s.Direction, LobeDiffuseReflection)
		if math.Abs(got-s.PDF) > 1e-9 {
			t.Fatalf("sample %d: PDF mismatch got %v want %v", i, got, s.PDF)
		}
		rng = rng.NextSample()
	}
}

func TestPBR_DiffuseLobeEvaluatesPositiveForDielectric(t *testing.T) {
	p := PBR{
		Albedo:                 core.NewVec3(0.5, 0.5, 0.5),
		Roughness:              0.5,
		Metallic:               0.0,
		SpecularWeightClampMin: 0.0,
		SpecularWeightClampMax: 1.0,
	}
	normal := core.NewVec3(0, 1, 0)
	view := core.NewVec3(0, 1, 0)

	direction := core.NewVec3(0.1, 0.9, 0).Normalize()
	spectrum := p.Evaluate(view, normal, direction, LobeDiffuseReflection)
	if spectrum.X <= 0 || spectrum.Y <= 0 || spectrum.Z <= 0 {
		t.Fatalf("expected positive diffuse contribution, got %v", spectrum)
	}
}

func TestPBR_SpecularWeightClampedAwayFromExtremes(t *testing.T) {
	p := PBR{
		Albedo:                 core.NewVec3(1, 1, 1),
		Roughness:              0.2,
		Metallic:               0.0,
		SpecularWeightClampMin: 0.1,
		SpecularWeightClampMax: 0.9,
	}
	normal := core.NewVec3(0, 1, 0)
	// Grazing angle drives the unclamped Fresnel term toward 1.0.
	grazing := core.NewVec3(0.999, 0.0447, 0).Normalize()
	w := p.specularWeight(grazing, normal)
	if w > p.SpecularWeightClampMax+1e-9 {
		t.Fatalf("specular weight %v exceeds clamp max %v", w, p.SpecularWeightClampMax)
	}
}

func TestPBR_SampleDirectionsStayInHemisphere(t *testing.T) {
	p := PBR{
		Albedo:                 core.NewVec3(0.6, 0.2, 0.2),
		Roughness:              0.4,
		Metallic:               0.3,
		SpecularWeightClampMin: 0.1,
		SpecularWeightClampMax: 0.9,
	}
	normal := core.NewVec3(0, 1, 0)
	view := core.NewVec3(0.2, 0.98, 0).Normalize()
	rng := core.NewState(42)

	for i := 0; i < 500; i++ {
		s := p.Sample(view, normal, &rng)
		if s.Lobe == LobeDiffuseReflection && s.Direction.Dot(normal) < -1e-9 {
			t.Fatalf("sample %d: diffuse direction below hemisphere", i)
		}
		if s.PDF < 0 {
			t.Fatalf("sample %d: negative pdf %v", i, s.PDF)
		}
		rng = rng.NextSample()
	}
}

func TestGlass_ReflectOrRefractDelta(t *testing.T) {
	g := Glass{Albedo: core.NewVec3(1, 1, 1), IOR: 1.5, Roughness: 0.0}
	normal := core.NewVec3(0, 1, 0)
	view := core.NewVec3(0.1, 0.99, 0).Normalize()
	rng := core.NewState(7)

	reflected, refracted := 0, 0
	for i := 0; i < 200; i++ {
		s := g.Sample(view, normal, &rng)
		if s.PDF != 1.0 {
			t.Fatalf("sample %d: expected delta pdf 1.0, got %v", i, s.PDF)
		}
		switch s.Lobe {
		case LobeSpecularReflection:
			reflected++
		case LobeSpecularTransmission:
			refracted++
		default:
			t.Fatalf("sample %d: unexpected lobe %v", i, s.Lobe)
		}
		rng = rng.NextSample()
	}
	if reflected == 0 || refracted == 0 {
		t.Fatalf("expected both reflection and transmission to occur, got reflected=%d refracted=%d", reflected, refracted)
	}
}

func TestSurface_BSDFAtSelectsGlass(t *testing.T) {
	s := Surface{IsGlass: true, IOR: 1.5, Roughness: 0.0, BaseColor: core.NewVec3(1, 1, 1)}
	bsdf := s.BSDFAt(core.NewVec2(0, 0))
	if _, ok := bsdf.(Glass); !ok {
		t.Fatalf("expected Glass BSDF, got %T", bsdf)
	}
}

func TestSurface_IsEmissive(t *testing.T) {
	dark := Surface{Emissive: core.NewVec3(0, 0, 0)}
	if dark.IsEmissive() {
		t.Fatalf("expected non-emissive surface to report false")
	}
	bright := Surface{Emissive: core.NewVec3(5, 5, 5)}
	if !bright.IsEmissive() {
		t.Fatalf("expected emissive surface to report true")
	}
}
