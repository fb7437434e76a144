package shuttlesim

import (
	"errors"
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

const (
	// DefaultMaxStep is the largest time step (in seconds) of one tick. Longer frames are truncated.
	DefaultMaxStep = 0.1
)

// J2000 is the default epoch of a simulation.
var J2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// Config defines how a Simulation runs.
type Config struct {
	Name              string
	MaxStep           float64 // seconds
	TimeScale         float64 // multiplier of the wall clock time
	AccelerationScale float64
	ResetOffset       float64 // km
	Atmosphere        Atmosphere
	Reorthogonalize   bool
	Epoch             time.Time
	Now               func() time.Time // wall clock used by Update
	Logger            kitlog.Logger
}

// DefaultConfig returns the default configuration: real time with a 0.1 s max step.
func DefaultConfig() Config {
	return Config{
		Name:              "shuttlesim",
		MaxStep:           DefaultMaxStep,
		TimeScale:         1,
		AccelerationScale: DefaultAccelerationScale,
		ResetOffset:       DefaultResetOffset,
		Atmosphere:        DefaultAtmosphere,
		Epoch:             J2000,
	}
}

// Simulation owns the movable bodies and advances them once per frame.
// It is not safe for concurrent use: it is meant to be called from the frame loop only.
type Simulation struct {
	Primary    PrimaryBody
	bodies     []*MovableBody
	prop       *Integrator
	clock      *Clock
	maxStep    float64
	timeScale  float64
	resetOff   float64
	epoch      time.Time
	tick       uint64
	collisions uint64
	logger     kitlog.Logger
}

// NewSimulation returns a new simulation of the provided bodies about the primary.
// Non positive MaxStep, TimeScale, AccelerationScale and ResetOffset are replaced by their defaults:
// a simulation always starts running, use SetTimeScale(0) to pause it.
func NewSimulation(conf Config, primary PrimaryBody, bodies ...*MovableBody) *Simulation {
	if conf.MaxStep <= 0 {
		conf.MaxStep = DefaultMaxStep
	}
	if !(conf.TimeScale > 0) || math.IsInf(conf.TimeScale, 0) {
		conf.TimeScale = 1
	}
	if conf.ResetOffset <= 0 {
		conf.ResetOffset = DefaultResetOffset
	}
	if conf.AccelerationScale <= 0 {
		conf.AccelerationScale = DefaultAccelerationScale
	}
	if conf.Epoch.IsZero() {
		conf.Epoch = J2000
	}
	// Must switch to UTC as all exported dates are in UTC.
	conf.Epoch = conf.Epoch.UTC()
	logger := conf.Logger
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	if conf.Name != "" {
		logger = kitlog.With(logger, "sim", conf.Name)
	}
	prop := &Integrator{primary, conf.Atmosphere, conf.AccelerationScale, conf.Reorthogonalize}
	s := &Simulation{primary, bodies, prop, NewClock(conf.Now), conf.MaxStep, conf.TimeScale, conf.ResetOffset, conf.Epoch, 0, 0, logger}
	if err := uniqueNames(bodies); err != nil {
		s.logger.Log("level", "warning", "subsys", "sim", "message", "lookups by name return the first body", "err", err)
	}
	for _, b := range bodies {
		if b.Policy == OrbitConstrained && Collided(b, primary) {
			s.logger.Log("level", "warning", "subsys", "sim", "body", b.Name, "message", "orbit constrained body starts inside the primary")
		}
	}
	return s
}

// TimeScale returns the current time scale.
func (s *Simulation) TimeScale() float64 {
	return s.timeScale
}

// SetTimeScale changes how fast the simulation runs compared to the wall clock.
func (s *Simulation) SetTimeScale(k float64) error {
	if k < 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return fmt.Errorf("invalid time scale %f", k)
	}
	s.timeScale = k
	s.logger.Log("level", "info", "subsys", "sim", "timeScale", k)
	return nil
}

// Epoch returns the current simulation time.
func (s *Simulation) Epoch() time.Time {
	return s.epoch
}

// Ticks returns the number of ticks performed so far.
func (s *Simulation) Ticks() uint64 {
	return s.tick
}

// Collisions returns the number of times a body was recovered after hitting the primary.
func (s *Simulation) Collisions() uint64 {
	return s.collisions
}

// Update performs one tick using the wall clock time elapsed since the previous update.
func (s *Simulation) Update(control Vector3) float64 {
	return s.Step(s.clock.Delta(), control)
}

// Step performs one tick of dt seconds (truncated to the max step) and returns the time step which was
// actually integrated. All bodies are integrated before any collision is checked.
func (s *Simulation) Step(dt float64, control Vector3) float64 {
	dt = Clamp(dt, 0, s.maxStep) * s.timeScale
	for _, b := range s.bodies {
		s.prop.Step(b, control, dt)
	}
	for _, b := range s.bodies {
		if b.Policy != PlayerControlled {
			continue
		}
		if r := Distance(b.Position, s.Primary.Position); CheckCollision(b, s.Primary, s.resetOff) {
			s.collisions++
			s.logger.Log("level", "critical", "subsys", "astro", "collided", s.Primary.Name, "body", b.Name, "dt", s.epoch, "r", r, "radius", s.Primary.Radius)
		}
	}
	s.epoch = s.epoch.Add(time.Duration(math.Round(dt * float64(time.Second))))
	s.tick++
	return dt
}

// Snapshot returns a copy of the state of all the bodies.
func (s *Simulation) Snapshot() State {
	st := State{s.epoch, s.tick, s.Primary, make([]BodyState, len(s.bodies))}
	for i, b := range s.bodies {
		st.Bodies[i] = b.State(s.Primary)
	}
	return st
}

// Bodies returns a copy of the state of each body, in the order they were provided.
func (s *Simulation) Bodies() []BodyState {
	return s.Snapshot().Bodies
}

// Body returns a copy of the state of the named body.
func (s *Simulation) Body(name string) (BodyState, error) {
	for _, b := range s.bodies {
		if b.Name == name {
			return b.State(s.Primary), nil
		}
	}
	return BodyState{}, fmt.Errorf("%w: %s", ErrUnknownBody, name)
}

// LogStatus logs the status of each body.
func (s *Simulation) LogStatus() {
	for _, b := range s.bodies {
		s.logger.Log("level", "info", "subsys", "astro", "date", s.epoch, "tick", s.tick, "body", b.Name, "alt(km)", b.Altitude(s.Primary), "speed(km/s)", b.Speed())
	}
}

// ErrUnknownBody is returned when looking up a body which is not simulated.
var ErrUnknownBody = errors.New("unknown body")

// State stores a snapshot of the simulation.
type State struct {
	Epoch   time.Time
	Tick    uint64
	Primary PrimaryBody
	Bodies  []BodyState
}

// Body returns the state of the named body.
func (st State) Body(name string) (BodyState, error) {
	for _, b := range st.Bodies {
		if b.Name == name {
			return b, nil
		}
	}
	return BodyState{}, fmt.Errorf("%w: %s", ErrUnknownBody, name)
}

// DistanceBetween returns the distance between two bodies.
func (st State) DistanceBetween(a, b string) (float64, error) {
	sa, err := st.Body(a)
	if err != nil {
		return -1, err
	}
	sb, err := st.Body(b)
	if err != nil {
		return -1, err
	}
	return Distance(sa.Position, sb.Position), nil
}
