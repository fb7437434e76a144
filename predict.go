package shuttlesim

import (
	"fmt"
	"time"

	"github.com/ChristopherRabotin/ode"
)

const (
	// DefaultPredictionHorizon is roughly one low orbit.
	DefaultPredictionHorizon = 90 * time.Minute
	// DefaultPredictionStep is the RK4 step of the prediction.
	DefaultPredictionStep = 10 * time.Second
)

// PredictConfig defines how far and how finely a trajectory is predicted.
type PredictConfig struct {
	Horizon           time.Duration
	Step              time.Duration
	AccelerationScale float64 // Defaults to DefaultAccelerationScale
}

// Prediction is the coasting trajectory of a body.
type Prediction struct {
	Points      []Vector3 // One point per step, starting after the first step
	Impact      bool
	ImpactAfter time.Duration
	MinAltitude float64 // km
}

func (p Prediction) String() string {
	if p.Impact {
		return fmt.Sprintf("impact after %s (%d points)", p.ImpactAfter, len(p.Points))
	}
	return fmt.Sprintf("no impact, min altitude = %f km (%d points)", p.MinAltitude, len(p.Points))
}

// trajectory is an ode.Integrable which coasts a copy of a body under the scaled gravity of the primary.
type trajectory struct {
	primary       PrimaryBody
	scale         float64
	position      Vector3
	velocity      Vector3
	elapsed       time.Duration
	step, horizon time.Duration
	prediction    *Prediction
}

// GetState gets the state.
func (p *trajectory) GetState() []float64 {
	return append(p.position.Slice(), p.velocity.Slice()...)
}

// SetState sets the next state at time t.
func (p *trajectory) SetState(t float64, s []float64) {
	p.position = NewVector3(s[:3])
	p.velocity = NewVector3(s[3:6])
	p.elapsed += p.step
	p.prediction.Points = append(p.prediction.Points, p.position)
	if Distance(p.position, p.primary.Position) < p.primary.Radius {
		p.prediction.Impact = true
		p.prediction.ImpactAfter = p.elapsed
		p.prediction.MinAltitude = 0
		return
	}
	if alt := p.primary.Altitude(p.position); alt < p.prediction.MinAltitude {
		p.prediction.MinAltitude = alt
	}
}

// Stop returns whether we should stop the integration.
func (p *trajectory) Stop(t float64) bool {
	return p.prediction.Impact || p.elapsed >= p.horizon
}

// Func does the math. Returns a new state.
func (p *trajectory) Func(t float64, f []float64) (fDot []float64) {
	fDot = make([]float64, 6)
	acc := GravitationalAcceleration(NewVector3(f[:3]), p.primary).Scale(p.scale)
	// d\vec{R}/dt
	fDot[0] = f[3]
	fDot[1] = f[4]
	fDot[2] = f[5]
	// d\vec{V}/dt
	fDot[3] = acc.X
	fDot[4] = acc.Y
	fDot[5] = acc.Z
	return
}

// Predict propagates the provided body without thrust nor drag until the horizon or an impact with the primary.
// The body itself is never modified.
func Predict(primary PrimaryBody, body BodyState, conf PredictConfig) Prediction {
	if conf.Horizon <= 0 {
		conf.Horizon = DefaultPredictionHorizon
	}
	if conf.Step <= 0 {
		conf.Step = DefaultPredictionStep
	}
	if conf.AccelerationScale <= 0 {
		conf.AccelerationScale = DefaultAccelerationScale
	}
	prediction := &Prediction{
		Points:      make([]Vector3, 0, int(conf.Horizon/conf.Step)+1),
		MinAltitude: primary.Altitude(body.Position),
	}
	if Distance(body.Position, primary.Position) < primary.Radius {
		prediction.Impact = true
		return *prediction
	}
	p := &trajectory{primary, conf.AccelerationScale, body.Position, body.Velocity, 0, conf.Step, conf.Horizon, prediction}
	ode.NewRK4(0, conf.Step.Seconds(), p).Solve() // Blocking.
	return *prediction
}

// Predict returns the coasting trajectory of the named body with the gravity scaling of this simulation.
func (s *Simulation) Predict(name string, horizon, step time.Duration) (Prediction, error) {
	st, err := s.Body(name)
	if err != nil {
		return Prediction{}, err
	}
	return Predict(s.Primary, st, PredictConfig{horizon, step, s.prop.AccelerationScale}), nil
}
