package shuttlesim

// DefaultResetOffset is the altitude (km) of the safe insertion point, on both the X and Y axes.
const DefaultResetOffset = StationAltitude

// SafeInsertion returns the position to which a body is reset after hitting the primary.
func SafeInsertion(primary PrimaryBody, offset float64) Vector3 {
	return primary.Position.Add(Vector3{primary.Radius + offset, primary.Radius + offset, 0})
}

// Collided returns whether the body is inside the primary.
func Collided(b *MovableBody, primary PrimaryBody) bool {
	return Distance(b.Position, primary.Position) < primary.Radius
}

// CheckCollision resets the body to the safe insertion point, at rest, if it is inside the primary.
// Returns whether the body was reset. This is a hard reset, not a bounce.
func CheckCollision(b *MovableBody, primary PrimaryBody, offset float64) bool {
	if !Collided(b, primary) {
		return false
	}
	b.Position = SafeInsertion(primary, offset)
	b.Velocity = Vector3{}
	b.Acceleration = Vector3{}
	return true
}
