package shuttlesim

import (
	"fmt"
	"math"
	"time"

	"github.com/gonum/floats"
)

// Orbit defines the osculating orbit of a body via its orbital elements. Angles are in radians.
type Orbit struct {
	a, e, i, Ω, ω, ν float64
	μ                float64     // Gravitational parameter the body actually feels
	Origin           PrimaryBody // Orbit origin
	r, v             Vector3     // Relative to the origin
}

// NewOrbitFromRV returns the orbital elements from the position and velocity, both relative to the
// origin, under the provided gravitational parameter (km^3/s^2).
func NewOrbitFromRV(R, V Vector3, origin PrimaryBody, μ float64) Orbit {
	// From Vallado's RV2COE, page 113
	hVec := R.Cross(V)
	n := Vector3{0, 0, 1}.Cross(hVec)
	v := V.Norm()
	r := R.Norm()
	ξ := (v*v)/2 - μ/r
	a := -μ / (2 * ξ)
	eVec := R.Scale(v*v - μ/r).Sub(V.Scale(R.Dot(V))).Scale(1 / μ)
	e := eVec.Norm()
	// Radial motion (e.g. at rest) has no orbit plane, hence no inclination.
	var i float64
	if h := hVec.Norm(); h > 0 {
		i = math.Acos(Clamp(hVec.Z/h, -1, 1))
	}
	var ω float64
	if n.IsZero() {
		// Equatorial orbit: use the longitude of periapsis.
		ω = math.Atan2(eVec.Y, eVec.X)
	} else {
		ω = math.Acos(Clamp(n.Dot(eVec)/(n.Norm()*e), -1, 1))
		if math.IsNaN(ω) {
			ω = 0
		}
		if eVec.Z < 0 {
			ω = 2*math.Pi - ω
		}
	}
	Ω := math.Acos(n.X / n.Norm())
	if math.IsNaN(Ω) {
		// Equatorial orbit
		Ω = 0
	}
	if n.Y < 0 {
		Ω = 2*math.Pi - Ω
	}
	var ν float64
	if floats.EqualWithinAbs(e, 0, eccentricityε) {
		ω = 0
		// Circular orbit: use the argument of latitude, or the true longitude if also equatorial.
		if n.IsZero() {
			ν = math.Atan2(R.Y, R.X)
		} else {
			ν = math.Acos(Clamp(n.Dot(R)/(n.Norm()*r), -1, 1))
			if R.Z < 0 {
				ν = 2*math.Pi - ν
			}
		}
	} else {
		ν = math.Acos(Clamp(eVec.Dot(R)/(e*r), -1, 1))
		if R.Dot(V) < 0 {
			ν = 2*math.Pi - ν
		}
	}
	// Fix rounding errors.
	twoπ := 2 * math.Pi
	return Orbit{a, e, math.Mod(i, twoπ), math.Mod(Ω, twoπ), math.Mod(ω+twoπ, twoπ), math.Mod(ν+twoπ, twoπ), μ, origin, R, V}
}

// eccentricityε is the eccentricity under which an orbit is considered circular.
const eccentricityε = 5e-5

// Elements returns the classical orbital elements.
func (o Orbit) Elements() (a, e, i, Ω, ω, ν float64) {
	return o.a, o.e, o.i, o.Ω, o.ω, o.ν
}

// Energyξ returns the specific mechanical energy ξ.
func (o Orbit) Energyξ() float64 {
	return o.v.Dot(o.v)/2 - o.μ/o.r.Norm()
}

// Bound returns whether this orbit is closed (elliptical).
func (o Orbit) Bound() bool {
	return o.Energyξ() < 0 && o.e < 1
}

// Apoapsis returns the apoapsis radius, or +Inf for open orbits.
func (o Orbit) Apoapsis() float64 {
	if !o.Bound() {
		return math.Inf(1)
	}
	return o.a * (1 + o.e)
}

// Periapsis returns the periapsis radius.
func (o Orbit) Periapsis() float64 {
	// Holds for open orbits too: h^2 / μ / (1+e).
	h := o.r.Cross(o.v).Norm()
	return h * h / o.μ / (1 + o.e)
}

// PeriapsisAltitude returns the altitude of the periapsis: a negative value means the orbit hits the origin.
func (o Orbit) PeriapsisAltitude() float64 {
	return o.Periapsis() - o.Origin.Radius
}

// ApoapsisAltitude returns the altitude of the apoapsis.
func (o Orbit) ApoapsisAltitude() float64 {
	return o.Apoapsis() - o.Origin.Radius
}

// Period returns the period of this orbit, or zero if it is not bound.
func (o Orbit) Period() time.Duration {
	if !o.Bound() {
		return 0
	}
	seconds := 2 * math.Pi * math.Sqrt(math.Pow(o.a, 3)/o.μ)
	return time.Duration(seconds * float64(time.Second))
}

func (o Orbit) String() string {
	return fmt.Sprintf("a=%.3f e=%.6f i=%.3f Ω=%.3f ω=%.3f ν=%.3f (periapsis alt=%.3f km)", o.a, o.e, Rad2deg(o.i), Rad2deg(o.Ω), Rad2deg(o.ω), Rad2deg(o.ν), o.PeriapsisAltitude())
}

// Orbit returns the osculating orbit of the named body. Player controlled bodies feel the scaled
// gravity of the primary, hence their orbit is computed with that scaled gravitational parameter.
func (s *Simulation) Orbit(name string) (Orbit, error) {
	st, err := s.Body(name)
	if err != nil {
		return Orbit{}, err
	}
	μ := s.Primary.GM()
	if st.Policy == PlayerControlled {
		μ *= s.prop.AccelerationScale
	}
	return NewOrbitFromRV(st.Position.Sub(s.Primary.Position), st.Velocity, s.Primary, μ), nil
}
