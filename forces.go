package shuttlesim

import (
	"fmt"
	"math"
)

// GravitationalAcceleration returns the acceleration (km/s^2) exerted by the primary on an object at
// the provided position. Inside the primary, the acceleration is nil: that state is already invalid and
// is handled by the collision recovery.
func GravitationalAcceleration(position Vector3, primary PrimaryBody) Vector3 {
	toPrimary := primary.Position.Sub(position)
	r2 := toPrimary.Dot(toPrimary)
	r := math.Sqrt(r2)
	if r < primary.Radius {
		return Vector3{}
	}
	// a = GM / r^2, pointing towards the primary
	return toPrimary.Scale(primary.μ / r2 / r)
}

// Atmosphere defines the (very) simplified exponential atmosphere of the primary.
type Atmosphere struct {
	Ceiling     float64 // Altitude above which there is no drag (km)
	ScaleHeight float64 // km
	Coefficient float64 // Drag coefficient at the surface (1/s)
}

// DefaultAtmosphere is the atmosphere the simulator has always used.
var DefaultAtmosphere = Atmosphere{Ceiling: 100, ScaleHeight: 8, Coefficient: 0.001}

// Active returns whether there is any drag at this altitude.
func (a Atmosphere) Active(altitude float64) bool {
	return a.Ceiling > 0 && altitude < a.Ceiling
}

// Damping returns the per second damping coefficient at the provided altitude.
func (a Atmosphere) Damping(altitude float64) float64 {
	if !a.Active(altitude) {
		return 0
	}
	return a.Coefficient * math.Exp(-altitude/a.ScaleHeight)
}

// Drag returns the velocity after having been slowed down by the atmosphere during dt.
// This is a first order decay applied to each axis, not a force.
func (a Atmosphere) Drag(velocity Vector3, altitude, dt float64) Vector3 {
	if !a.Active(altitude) {
		return velocity
	}
	factor := 1 - a.Damping(altitude)*dt
	return Vector3{velocity.X * factor, velocity.Y * factor, velocity.Z * factor}
}

// Validate returns an error if the atmosphere cannot be used.
func (a Atmosphere) Validate() error {
	if a.Ceiling > 0 && a.ScaleHeight <= 0 {
		return fmt.Errorf("atmosphere scale height must be positive (got %f km)", a.ScaleHeight)
	}
	if a.Coefficient < 0 {
		return fmt.Errorf("atmosphere drag coefficient must not be negative (got %f)", a.Coefficient)
	}
	return nil
}

func (a Atmosphere) String() string {
	return fmt.Sprintf("ceiling=%.1f km H=%.1f km Cd=%g", a.Ceiling, a.ScaleHeight, a.Coefficient)
}
