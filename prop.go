package shuttlesim

import (
	"fmt"
	"math"
)

const (
	// DefaultAccelerationScale converts the summed gravity and thrust into the integrated acceleration.
	DefaultAccelerationScale = 1e-3
)

// Integrator advances movable bodies by one tick. The integration is an explicit Euler step and
// must stay one: the trajectories depend on it.
type Integrator struct {
	Primary           PrimaryBody
	Atmosphere        Atmosphere
	AccelerationScale float64
	// Reorthogonalize projects the reused motion direction of orbit constrained bodies back onto the
	// plane perpendicular to their radius vector. Off by default: the direction is carried as is.
	Reorthogonalize bool
}

// NewIntegrator returns an integrator about the provided primary with the default atmosphere and scaling.
func NewIntegrator(primary PrimaryBody) *Integrator {
	return &Integrator{primary, DefaultAtmosphere, DefaultAccelerationScale, false}
}

// Step advances the body by dt seconds. The control input is only used by player controlled bodies.
func (p *Integrator) Step(b *MovableBody, control Vector3, dt float64) {
	switch b.Policy {
	case PlayerControlled:
		p.stepPlayer(b, control, dt)
	case OrbitConstrained:
		p.stepOrbit(b, dt)
	default:
		panic(fmt.Errorf("unsupported control policy %d for %s", b.Policy, b.Name))
	}
}

// stepPlayer performs gravity+thrust -> velocity -> drag -> position, in that order.
func (p *Integrator) stepPlayer(b *MovableBody, control Vector3, dt float64) {
	grav := GravitationalAcceleration(b.Position, p.Primary)
	thrust := b.ThrustAcceleration(control)
	b.Acceleration = grav.Add(thrust).Scale(p.AccelerationScale)
	b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))
	b.Velocity = p.Atmosphere.Drag(b.Velocity, b.Altitude(p.Primary), dt)
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// stepOrbit recomputes the circular orbit velocity for the current radius and moves along it.
func (p *Integrator) stepOrbit(b *MovableBody, dt float64) {
	rVec := b.Position.Sub(p.Primary.Position)
	r := rVec.Norm()
	if r > 0 {
		dir := p.MotionDirection(rVec, b.LastMotionDirection)
		b.LastMotionDirection = dir
		b.Velocity = dir.Scale(p.Primary.CircularSpeed(r))
		// Only for telemetry: this acceleration is not integrated.
		b.Acceleration = rVec.Scale(-p.Primary.μ / math.Pow(r, 3))
	}
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// MotionDirection returns the direction of motion of an orbit constrained body given its radius
// vector and the direction used at the previous tick. A missing (nil) previous direction is derived
// from the radius vector, otherwise it is reused verbatim unless Reorthogonalize is set.
func (p *Integrator) MotionDirection(rVec, last Vector3) Vector3 {
	if last.IsZero() {
		return perpendicular(rVec)
	}
	if !p.Reorthogonalize {
		return last
	}
	rHat := rVec.Unit()
	dir := last.Sub(rHat.Scale(last.Dot(rHat))).Unit()
	if dir.IsZero() {
		// The previous direction was radial, nothing to salvage.
		return perpendicular(rVec)
	}
	return dir
}

// perpendicular returns a unit vector perpendicular to r using the Z axis.
func perpendicular(r Vector3) Vector3 {
	perp := Vector3{-r.Y, r.X, 0}.Unit()
	if perp.IsZero() {
		return Vector3{0, 0, 1}
	}
	return perp
}
