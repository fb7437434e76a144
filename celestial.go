package shuttlesim

import (
	"fmt"
	"math"
	"strings"
)

// PrimaryBody defines the fixed celestial object around which everything moves.
// It is never moved by the simulation.
type PrimaryBody struct {
	Name     string
	Position Vector3 // Usually the origin
	Radius   float64 // km
	μ        float64 // km^3/s^2
}

// NewPrimaryBody returns a new primary body from its radius (km) and standard gravitational parameter (km^3/s^2).
func NewPrimaryBody(name string, position Vector3, radius, gm float64) PrimaryBody {
	return PrimaryBody{name, position, radius, gm}
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c PrimaryBody) GM() float64 {
	return c.μ
}

// Altitude returns the distance from the surface to the provided position, floored at zero.
func (c PrimaryBody) Altitude(position Vector3) float64 {
	return math.Max(0, Distance(position, c.Position)-c.Radius)
}

// CircularSpeed returns the speed of a circular orbit at radius r.
func (c PrimaryBody) CircularSpeed(r float64) float64 {
	return math.Sqrt(c.μ / r)
}

// String implements the Stringer interface.
func (c PrimaryBody) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided primary body is the same.
func (c PrimaryBody) Equals(b PrimaryBody) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.μ == b.μ && c.Position == b.Position
}

// PrimaryBodyFromString returns the object from its name
func PrimaryBodyFromString(name string) (PrimaryBody, error) {
	switch strings.ToLower(name) {
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	case "mars":
		return Mars, nil
	default:
		return PrimaryBody{}, fmt.Errorf("undefined primary body '%s'", name)
	}
}

/* Definitions */

const (
	gravitationalConstant = 6.674e-11 // m^3 kg^-1 s^-2
	earthMass             = 5.972e24  // kg
	// StationAltitude is the approximate altitude of the ISS in km.
	StationAltitude = 408.
)

// Earth is home. Its μ is computed from G and its mass, as the simulator always has.
var Earth = PrimaryBody{"Earth", Vector3{}, 6371, gravitationalConstant * earthMass / 1e9}

// Moon is where we'll go next.
var Moon = PrimaryBody{"Moon", Vector3{}, 1737.4, 4.9028e3}

// Mars is the vacation place.
var Mars = PrimaryBody{"Mars", Vector3{}, 3396.19, 4.28283100e4}
