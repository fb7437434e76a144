package shuttlesim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

const (
	// RadarRangeσ is the range standard deviation of a rendezvous radar, in km.
	RadarRangeσ = 5e-3
	// RadarRangeRateσ is the range rate standard deviation of a rendezvous radar, in km/s.
	RadarRangeRateσ = 5e-6
)

// Tracker measures the range and range rate from one body to another.
type Tracker struct {
	Name                       string
	MaxRange                   float64        // km, zero for unlimited
	RangeNoise, RangeRateNoise *distmv.Normal // nil if noiseless
}

// NewTracker returns a new tracker. The noise is given as standard deviations in km and km/s;
// a zero standard deviation leads to noiseless measurements.
func NewTracker(name string, maxRange, σρ, σρDot float64, seed int64) (*Tracker, error) {
	if maxRange < 0 || σρ < 0 || σρDot < 0 {
		return nil, fmt.Errorf("tracker %s: negative range or noise", name)
	}
	src := rand.New(rand.NewSource(seed))
	ρNoise, err := newNoise(σρ, src)
	if err != nil {
		return nil, fmt.Errorf("tracker %s range: %s", name, err)
	}
	ρDotNoise, err := newNoise(σρDot, src)
	if err != nil {
		return nil, fmt.Errorf("tracker %s range rate: %s", name, err)
	}
	return &Tracker{name, maxRange, ρNoise, ρDotNoise}, nil
}

func newNoise(σ float64, src *rand.Rand) (*distmv.Normal, error) {
	if σ == 0 {
		return nil, nil
	}
	noise, ok := distmv.NewNormal([]float64{0}, mat64.NewSymDense(1, []float64{σ * σ}), src)
	if !ok {
		return nil, fmt.Errorf("σ=%f is not a valid standard deviation", σ)
	}
	return noise, nil
}

func sample(noise *distmv.Normal) float64 {
	if noise == nil {
		return 0
	}
	return noise.Rand(nil)[0]
}

// Measure returns the measurement of the target from the observer.
func (t *Tracker) Measure(primary PrimaryBody, epoch time.Time, from, to BodyState) Measurement {
	ρVec := to.Position.Sub(from.Position)
	ρ := ρVec.Norm()
	var ρDot float64
	if ρ > 0 {
		ρDot = ρVec.Dot(to.Velocity.Sub(from.Velocity)) / ρ
	}
	visible := (t.MaxRange == 0 || ρ <= t.MaxRange) && lineOfSight(primary, from.Position, to.Position)
	return Measurement{
		Visible:       visible,
		Range:         ρ + sample(t.RangeNoise),
		RangeRate:     ρDot + sample(t.RangeRateNoise),
		TrueRange:     ρ,
		TrueRangeRate: ρDot,
		Epoch:         epoch,
		Tracker:       t.Name,
		Observer:      from,
		Target:        to,
	}
}

// MeasureState returns the measurement between two named bodies of the snapshot.
func (t *Tracker) MeasureState(st State, observer, target string) (Measurement, error) {
	from, err := st.Body(observer)
	if err != nil {
		return Measurement{}, err
	}
	to, err := st.Body(target)
	if err != nil {
		return Measurement{}, err
	}
	return t.Measure(st.Primary, st.Epoch, from, to), nil
}

func (t *Tracker) String() string {
	return fmt.Sprintf("%s (max range = %f km)", t.Name, t.MaxRange)
}

// lineOfSight returns whether the segment between both positions clears the primary.
func lineOfSight(primary PrimaryBody, a, b Vector3) bool {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return true
	}
	t := Clamp(primary.Position.Sub(a).Dot(ab)/l2, 0, 1)
	closest := a.Add(ab.Scale(t))
	return Distance(closest, primary.Position) >= primary.Radius
}

// Measurement stores a measurement of a tracker.
type Measurement struct {
	Visible                  bool    // Whether the target was within range and not hidden by the primary.
	Range, RangeRate         float64 // Noisy range (km) and range rate (km/s)
	TrueRange, TrueRangeRate float64
	Epoch                    time.Time
	Tracker                  string
	Observer, Target         BodyState
}

// IsNil returns whether this measurement is empty.
func (m Measurement) IsNil() bool {
	return m.Range == m.RangeRate && m.RangeRate == 0
}

// Closing returns whether the bodies are getting closer.
func (m Measurement) Closing() bool {
	return m.TrueRangeRate < 0
}

// StateVector returns the noisy measurement as a mat64.Vector
func (m Measurement) StateVector() *mat64.Vector {
	return mat64.NewVector(2, []float64{m.Range, m.RangeRate})
}

// HTilde returns the partials of the range and range rate with respect to the target position and velocity.
func (m Measurement) HTilde() *mat64.Dense {
	H := mat64.NewDense(2, 6, nil)
	if m.TrueRange == 0 {
		return H
	}
	ρ := m.TrueRange
	ρVec := m.Target.Position.Sub(m.Observer.Position).Slice()
	vVec := m.Target.Velocity.Sub(m.Observer.Velocity).Slice()
	for i := 0; i < 3; i++ {
		// \partial \rho / \partial {x,y,z}
		H.Set(0, i, ρVec[i]/ρ)
		// \partial \dot\rho / \partial {x,y,z}
		H.Set(1, i, vVec[i]/ρ-(m.TrueRangeRate/math.Pow(ρ, 2))*ρVec[i])
		// \partial \dot\rho / \partial {vx,vy,vz}
		H.Set(1, i+3, ρVec[i]/ρ)
	}
	return H
}

// CSV returns the data as CSV (does *not* include the new line)
func (m Measurement) CSV() string {
	return fmt.Sprintf("%f,%f,%f,%f,%t,", m.TrueRange, m.TrueRangeRate, m.Range, m.RangeRate, m.Visible)
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s: %s->%s@%s ρ=%f km ρDot=%f km/s", m.Tracker, m.Observer.Name, m.Target.Name, m.Epoch, m.Range, m.RangeRate)
}
