package shuttlesim

import (
	"math"
	"testing"

	"github.com/gonum/floats"
)

func TestGravityInverseSquare(t *testing.T) {
	r1 := Earth.Radius + 200
	for _, r2 := range []float64{r1 + 1, Earth.Radius + StationAltitude, 42164, 384400} {
		a1 := GravitationalAcceleration(Vector3{r1, 0, 0}, Earth).Norm()
		a2 := GravitationalAcceleration(Vector3{0, r2, 0}, Earth).Norm()
		if a1 <= a2 {
			t.Fatalf("gravity does not decrease with radius: %f <= %f", a1, a2)
		}
		if ratio := a1 / a2; !floats.EqualWithinRel(ratio, math.Pow(r2/r1, 2), 1e-12) {
			t.Fatalf("ratio %f != (r2/r1)^2=%f", ratio, math.Pow(r2/r1, 2))
		}
	}
}

func TestGravityDirection(t *testing.T) {
	r := Earth.Radius + StationAltitude
	for _, pos := range []Vector3{{r, 0, 0}, {0, -r, 0}, Vector3{r, r, r}.Scale(1 / math.Sqrt(3)), {-5000, 3000, 4000}} {
		acc := GravitationalAcceleration(pos, Earth)
		if !vectorsEqual(acc.Unit(), pos.Scale(-1).Unit()) {
			t.Fatalf("gravity at %s does not point to the primary: %s", pos, acc)
		}
		if exp := Earth.GM() / math.Pow(pos.Norm(), 2); !floats.EqualWithinRel(acc.Norm(), exp, 1e-12) {
			t.Fatalf("|a| = %f != GM/r^2 = %f", acc.Norm(), exp)
		}
	}
	// Offset primary
	primary := NewPrimaryBody("offset", Vector3{100, 100, 100}, 10, 1e3)
	acc := GravitationalAcceleration(Vector3{100, 100, 120}, primary)
	if !vectorsEqual(acc, Vector3{0, 0, -1e3 / 400}) {
		t.Fatalf("invalid gravity about an offset primary: %s", acc)
	}
}

func TestGravityInsidePrimary(t *testing.T) {
	for _, pos := range []Vector3{{}, {1, 0, 0}, {0, 0, Earth.Radius - 1e-3}} {
		if acc := GravitationalAcceleration(pos, Earth); !acc.IsZero() {
			t.Fatalf("gravity inside the primary at %s is %s", pos, acc)
		}
	}
	if acc := GravitationalAcceleration(Vector3{Earth.Radius, 0, 0}, Earth); acc.IsZero() {
		t.Fatal("gravity on the surface should not be nil")
	}
}

func TestDragBoundary(t *testing.T) {
	atmo := DefaultAtmosphere
	v := Vector3{7, -1, 0.5}
	below := atmo.Drag(v, 99, 0.1)
	if below.Norm() >= v.Norm() {
		t.Fatalf("no drag at 99 km: %s", below)
	}
	if above := atmo.Drag(v, 101, 0.1); above != v {
		t.Fatalf("drag at 101 km: %s", above)
	}
	if at := atmo.Drag(v, 100, 0.1); at != v {
		t.Fatal("drag is only active strictly below the ceiling")
	}
	if !atmo.Active(0) || atmo.Active(100) || atmo.Damping(150) != 0 {
		t.Fatal("invalid activation")
	}
}

func TestDragFunctionalForm(t *testing.T) {
	atmo := DefaultAtmosphere
	v := Vector3{1, 2, 3}
	for _, alt := range []float64{0, 8, 50, 99.9} {
		for _, dt := range []float64{0.016, 0.1} {
			factor := 1 - 0.001*math.Exp(-alt/8)*dt
			if got := atmo.Drag(v, alt, dt); !got.Equals(v.Scale(factor), 1e-15) {
				t.Fatalf("alt=%f dt=%f: %s != %s", alt, dt, got, v.Scale(factor))
			}
		}
	}
	// Drag decreases with altitude.
	if atmo.Damping(10) <= atmo.Damping(20) {
		t.Fatal("drag does not decay with altitude")
	}
	if !floats.EqualWithinAbs(atmo.Damping(0), 0.001, 1e-15) {
		t.Fatalf("surface damping = %g", atmo.Damping(0))
	}
}

func TestAtmosphereValidate(t *testing.T) {
	if err := DefaultAtmosphere.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := (Atmosphere{Ceiling: 100, ScaleHeight: 0, Coefficient: 1}).Validate(); err == nil {
		t.Fatal("zero scale height should be invalid")
	}
	if err := (Atmosphere{Ceiling: 100, ScaleHeight: 8, Coefficient: -1}).Validate(); err == nil {
		t.Fatal("negative coefficient should be invalid")
	}
	if err := (Atmosphere{}).Validate(); err != nil {
		t.Fatal("no atmosphere should be valid")
	}
}
