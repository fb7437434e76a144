package shuttlesim

import (
	"fmt"
	"math"
)

// ControlPolicy defines how a movable body has its motion updated.
type ControlPolicy uint8

const (
	// PlayerControlled bodies integrate gravity and an external thrust input.
	PlayerControlled ControlPolicy = iota + 1
	// OrbitConstrained bodies have their velocity recomputed every tick to stay on a circular orbit.
	OrbitConstrained
)

func (p ControlPolicy) String() string {
	switch p {
	case PlayerControlled:
		return "player"
	case OrbitConstrained:
		return "orbit"
	}
	panic("cannot stringify unknown control policy")
}

// ControlPolicyFromString returns the policy from its name.
func ControlPolicyFromString(name string) (ControlPolicy, error) {
	switch name {
	case "player":
		return PlayerControlled, nil
	case "orbit":
		return OrbitConstrained, nil
	default:
		return 0, fmt.Errorf("unknown control policy '%s'", name)
	}
}

const (
	// DefaultThrustPower is the thrust acceleration per unit of control input.
	DefaultThrustPower = 0.05
	vehicleStartMargin = 50. // km above the station orbit
	vehicleStartSpeed  = -5. // km/s along X
)

// MovableBody is anything which moves under the influence of the primary body.
type MovableBody struct {
	Name                string
	Position            Vector3 // km
	Velocity            Vector3 // km/s
	Acceleration        Vector3 // km/s^2, as of the last tick
	Policy              ControlPolicy
	ThrustPower         float64 // Only used by PlayerControlled bodies
	LastMotionDirection Vector3 // Only used by OrbitConstrained bodies
}

// NewMovableBody returns a new body with the provided initial state.
func NewMovableBody(name string, policy ControlPolicy, position, velocity Vector3) *MovableBody {
	return &MovableBody{Name: name, Position: position, Velocity: velocity, Policy: policy, ThrustPower: DefaultThrustPower}
}

// NewVehicle returns the player controlled vehicle, started slightly above the station orbit.
func NewVehicle(name string, primary PrimaryBody) *MovableBody {
	offset := primary.Radius + StationAltitude + vehicleStartMargin
	position := primary.Position.Add(Vector3{offset, offset, 0})
	return NewMovableBody(name, PlayerControlled, position, Vector3{vehicleStartSpeed, 0, 0})
}

// NewStation returns an orbit constrained body on a circular orbit of the provided radius (km), at
// an angle (in radians) in the XZ plane of the primary.
func NewStation(name string, primary PrimaryBody, radius, angle float64) *MovableBody {
	sinθ, cosθ := math.Sincos(angle)
	position := primary.Position.Add(Vector3{cosθ * radius, 0, sinθ * radius})
	tangent := Vector3{-sinθ, 0, cosθ}
	b := NewMovableBody(name, OrbitConstrained, position, tangent.Scale(primary.CircularSpeed(radius)))
	b.ThrustPower = 0
	b.LastMotionDirection = tangent
	return b
}

// ThrustAcceleration returns the thrust acceleration for the provided control input.
// Forward is -Z in the frame of the input, hence the Z inversion.
func (b *MovableBody) ThrustAcceleration(control Vector3) Vector3 {
	return Vector3{control.X * b.ThrustPower, control.Y * b.ThrustPower, -control.Z * b.ThrustPower}
}

// Speed returns the norm of the velocity.
func (b *MovableBody) Speed() float64 {
	return b.Velocity.Norm()
}

// Altitude returns the altitude of this body above the primary, floored at zero.
func (b *MovableBody) Altitude(primary PrimaryBody) float64 {
	return primary.Altitude(b.Position)
}

// DistanceTo returns the distance to the other body.
func (b *MovableBody) DistanceTo(other *MovableBody) float64 {
	return Distance(b.Position, other.Position)
}

// State returns a copy of the state of this body.
func (b *MovableBody) State(primary PrimaryBody) BodyState {
	return BodyState{b.Name, b.Policy, b.Position, b.Velocity, b.Acceleration, b.Speed(), b.Altitude(primary)}
}

func (b *MovableBody) String() string {
	return fmt.Sprintf("%s (%s) R=%s V=%s", b.Name, b.Policy, b.Position, b.Velocity)
}

// BodyState is a read-only copy of a movable body, as exposed to renderers and HUDs.
type BodyState struct {
	Name                             string
	Policy                           ControlPolicy
	Position, Velocity, Acceleration Vector3
	Speed, Altitude                  float64
}
