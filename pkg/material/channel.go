package material

import (
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/texture"
)

// Channel is a scalar-or-vector material input that is either a constant
// (the common case for procedurally-authored scenes) or a rectangle of an
// atlas sampled by a per-triangle UV. Only one of the two is ever read,
// selected by HasTexture.
type Channel struct {
	Constant   core.Vec3
	HasTexture bool
	Atlas      *texture.Atlas
	// RectOffset/RectScale give the UV-space sub-rectangle of Atlas this channel occupies,
	// expressed as a [0,1] offset+scale so a shared packed atlas can host
	// many materials' channels side by side.
	RectOffset core.Vec2
	RectScale  core.Vec2
}

// ConstantChannel builds a Channel that ignores UV entirely.
func ConstantChannel(v core.Vec3) Channel {
	return Channel{Constant: v}
}

// TextureChannel builds a Channel backed by an atlas rectangle.
func TextureChannel(atlas *texture.Atlas, offset, scale core.Vec2) Channel {
	return Channel{HasTexture: true, Atlas: atlas, RectOffset: offset, RectScale: scale}
}

// Sample evaluates the channel at the given triangle UV coordinate.
func (c Channel) Sample(uv core.Vec2) core.Vec3 {
	if !c.HasTexture {
		return c.Constant
	}
	u := c.RectOffset.X + uv.X*c.RectScale.X
	v := c.RectOffset.Y + uv.Y*c.RectScale.Y
	return c.Atlas.Sample(u, v)
}

// Surface holds the per-channel material description of a triangle mesh and
// produces a concrete BSDF for a shaded point. NormalMap is optional (nil
// disables normal mapping).
type Surface struct {
	BaseColor core.Vec3
	BaseColorChannel Channel

	Roughness float64
	Metallic  float64
	MetallicRoughnessChannel Channel // G=roughness, B=metallic, glTF convention

	Emissive core.Vec3
	EmissiveChannel Channel

	NormalMap *Channel

	// IsGlass selects the Glass BSDF instead of PBR; Roughness/IOR apply.
	IsGlass bool
	IOR     float64

	SpecularWeightClampMin float64
	SpecularWeightClampMax float64
}

// BSDFAt builds the concrete BSDF for a shading point with the given UV.
func (s Surface) BSDFAt(uv core.Vec2) BSDF {
	albedo := s.BaseColor
	if s.BaseColorChannel.HasTexture {
		albedo = s.BaseColorChannel.Sample(uv)
	}

	if s.IsGlass {
		return Glass{Albedo: albedo, IOR: s.IOR, Roughness: s.Roughness}
	}

	roughness, metallic := s.Roughness, s.Metallic
	if s.MetallicRoughnessChannel.HasTexture {
		mr := s.MetallicRoughnessChannel.Sample(uv)
		roughness, metallic = mr.Y, mr.Z
	}

	return PBR{
		Albedo:                 albedo,
		Roughness:              roughness,
		Metallic:               metallic,
		SpecularWeightClampMin: s.SpecularWeightClampMin,
		SpecularWeightClampMax: s.SpecularWeightClampMax,
	}
}

// EmissiveAt returns the emissive radiance at the given UV.
func (s Surface) EmissiveAt(uv core.Vec2) core.Vec3 {
	if s.EmissiveChannel.HasTexture {
		return s.EmissiveChannel.Sample(uv)
	}
	return s.Emissive
}

// IsEmissive reports whether this surface ever contributes emitted light,
// used by the light-pick table builder to decide which triangles to index.
func (s Surface) IsEmissive() bool {
	return s.Emissive.Luminance() > 0 || s.EmissiveChannel.HasTexture
}
