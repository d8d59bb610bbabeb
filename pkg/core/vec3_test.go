package core

import (
	"math"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	if got := a.Add(b); got != NewVec3(5, 7, 9) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Subtract(a); got != NewVec3(3, 3, 3) {
		t.Errorf("Subtract: got %v", got)
	}
	if got := a.Multiply(2); got != NewVec3(2, 4, 6) {
		t.Errorf("Multiply: got %v", got)
	}
	if got := a.MultiplyVec(b); got != NewVec3(4, 10, 18) {
		t.Errorf("MultiplyVec: got %v", got)
	}
}

func TestVec3_Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := x.Cross(y)
	if z.Subtract(NewVec3(0, 0, 1)).Length() > 1e-9 {
		t.Errorf("expected cross(x,y)=z, got %v", z)
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 0, 4)
	n := v.Normalize()
	if math.Abs(n.Length()-1.0) > 1e-9 {
		t.Errorf("expected unit length, got %f", n.Length())
	}

	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("expected normalizing zero vector to stay zero, got %v", zero)
	}
}

func TestVec3_Luminance(t *testing.T) {
	white := NewVec3(1, 1, 1)
	if math.Abs(white.Luminance()-1.0) > 1e-9 {
		t.Errorf("expected luminance(white)=1, got %f", white.Luminance())
	}
}

func TestRay_At(t *testing.T) {
	r := NewRay(NewVec3(0, 0, 0), NewVec3(1, 0, 0))
	p := r.At(5)
	if p != NewVec3(5, 0, 0) {
		t.Errorf("expected (5,0,0), got %v", p)
	}
}
