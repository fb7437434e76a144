package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ChristopherRabotin/shuttlesim"
	kitlog "github.com/go-kit/kit/log"
)

// This code loads a scenario and runs the simulation headless, as a frame loop would.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05"
)

var (
	scenario string
	frames   int
	fps      float64
	realtime bool
	thrust   string
	seed     int64
	verbose  bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file (defaults to the shuttle and ISS about the Earth)")
	flag.IntVar(&frames, "frames", 600, "number of frames to run")
	flag.Float64Var(&fps, "fps", 60, "frames per second")
	flag.BoolVar(&realtime, "realtime", false, "use the wall clock instead of a fixed 1/fps time step")
	flag.StringVar(&thrust, "thrust", "0,0,0", "constant control input as x,y,z")
	flag.Int64Var(&seed, "seed", 0, "seed of the radar noise (defaults to the current time)")
	flag.BoolVar(&verbose, "verbose", false, "log the status of every body every simulated second")
}

func main() {
	flag.Parse()
	if fps <= 0 {
		log.Fatalf("fps must be positive (got %f)", fps)
	}
	control, err := parseControl(thrust)
	if err != nil {
		log.Fatalf("invalid thrust `%s`: %s", thrust, err)
	}

	// Load scenario
	sc := shuttlesim.DefaultScenario()
	if scenario != defaultScenario {
		if sc, err = shuttlesim.LoadScenario(scenario); err != nil {
			log.Fatal(err)
		}
	}
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	sc.Config.Logger = logger
	sim := sc.Simulation()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	radar, err := shuttlesim.NewTracker("radar", 0, shuttlesim.RadarRangeσ, shuttlesim.RadarRangeRateσ, seed)
	if err != nil {
		log.Fatal(err)
	}

	// Export
	var wg sync.WaitGroup
	var stateChan chan shuttlesim.State
	if !sc.Export.IsUseless() {
		stateChan = make(chan shuttlesim.State, 100)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := shuttlesim.StreamStates(sc.Export, stateChan); err != nil {
				logger.Log("level", "critical", "subsys", "export", "err", err)
			}
		}()
	}

	frame := time.Duration(float64(time.Second) / fps)
	lastStatus := sim.Epoch()
	for i := 0; i < frames; i++ {
		if realtime {
			time.Sleep(frame)
			sim.Update(control)
		} else {
			sim.Step(frame.Seconds(), control)
		}
		st := sim.Snapshot()
		if stateChan != nil {
			stateChan <- st
		}
		if st.Epoch.Sub(lastStatus) >= time.Second {
			lastStatus = st.Epoch
			if verbose {
				sim.LogStatus()
			}
			for _, station := range sc.Stations {
				m, err := radar.MeasureState(st, station.Name, sc.Vehicle.Name)
				if err != nil {
					log.Fatal(err)
				}
				logger.Log("level", "info", "subsys", "radar", "date", st.Epoch.Format(dateFormat), "station", station.Name, "visible", m.Visible, "ρ(km)", m.Range, "ρDot(km/s)", m.RangeRate)
			}
		}
	}
	if stateChan != nil {
		close(stateChan)
		wg.Wait()
	}

	// HUD
	st := sim.Snapshot()
	vehicle, err := st.Body(sc.Vehicle.Name)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s after %d ticks (%s), %d collision(s)\n", st.Epoch.Format(dateFormat), st.Tick, st.Epoch.Sub(sc.Config.Epoch), sim.Collisions())
	fmt.Printf("%s\n\taltitude: %.3f km\n\tspeed: %.3f km/s (%.0f km/h)\n", vehicle.Name, vehicle.Altitude, vehicle.Speed, vehicle.Speed*3600)
	for _, station := range sc.Stations {
		dist, err := st.DistanceBetween(vehicle.Name, station.Name)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("\tdistance to %s: %.3f km\n", station.Name, dist)
	}
	pred, err := sim.Predict(vehicle.Name, shuttlesim.DefaultPredictionHorizon, shuttlesim.DefaultPredictionStep)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\tcoasting: %s\n", pred)
	orbit, err := sim.Orbit(vehicle.Name)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\torbit: %s\n", orbit)
}

// parseControl parses a control input formatted as x,y,z.
func parseControl(s string) (shuttlesim.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return shuttlesim.Vector3{}, fmt.Errorf("expected three components, got %d", len(parts))
	}
	vals := make([]float64, 3)
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return shuttlesim.Vector3{}, err
		}
		vals[i] = val
	}
	return shuttlesim.NewVector3(vals), nil
}
