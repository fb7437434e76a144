package shuttlesim

import (
	"fmt"
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	deg2rad = math.Pi / 180
	// zeroε is the norm under which a vector is considered nil.
	zeroε = 1e-12
)

// Vector3 is a 3D vector, in km, km/s or km/s^2 depending on what it stores.
type Vector3 struct {
	X, Y, Z float64
}

// NewVector3 returns a new Vector3 from a slice of (at least) three items.
func NewVector3(a []float64) Vector3 {
	return Vector3{a[0], a[1], a[2]}
}

// Add returns v+o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v-o.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns k*v.
func (v Vector3) Scale(k float64) Vector3 {
	return Vector3{v.X * k, v.Y * k, v.Z * k}
}

// Norm returns the magnitude of this vector.
func (v Vector3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Unit returns the unit vector of v, or the nil vector if v has no magnitude.
func (v Vector3) Unit() Vector3 {
	n := v.Norm()
	if floats.EqualWithinAbs(n, 0, zeroε) {
		return Vector3{}
	}
	return v.Scale(1 / n)
}

// IsZero returns whether all components are zero.
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Dot performs the inner product via mat64/BLAS.
func (v Vector3) Dot(o Vector3) float64 {
	return mat64.Dot(v.Vec(), o.Vec())
}

// Cross performs the cross product v x o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X}
}

// Slice returns a copy of this vector as a slice.
func (v Vector3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// Vec returns a copy of this vector as a mat64.Vector.
func (v Vector3) Vec() *mat64.Vector {
	return mat64.NewVector(3, v.Slice())
}

// Equals returns whether both vectors are equal within the provided tolerance.
func (v Vector3) Equals(o Vector3, tol float64) bool {
	return floats.EqualApprox(v.Slice(), o.Slice(), tol)
}

func (v Vector3) String() string {
	return fmt.Sprintf("[%f %f %f]", v.X, v.Y, v.Z)
}

// Distance returns the distance between a and b.
func Distance(a, b Vector3) float64 {
	return a.Sub(b).Norm()
}

// Lerp linearly interpolates between start and end.
func Lerp(start, end, t float64) float64 {
	return start + (end-start)*t
}

// LerpVec linearly interpolates each component between a and b.
func LerpVec(a, b Vector3, t float64) Vector3 {
	return Vector3{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t), Lerp(a.Z, b.Z, t)}
}

// Clamp returns x bounded to [min, max].
func Clamp(x, min, max float64) float64 {
	return math.Min(math.Max(x, min), max)
}

// Deg2rad converts degrees to radians, and enforced only positive numbers.
func Deg2rad(a float64) float64 {
	if a < 0 {
		a += 360
	}
	return math.Mod(a*deg2rad, 2*math.Pi)
}

// Rad2deg converts radians to degrees, and enforced only positive numbers.
func Rad2deg(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	return math.Mod(a/deg2rad, 360)
}
