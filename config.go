package shuttlesim

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable holding the directory of the scenario files.
const ConfigEnv = "SHUTTLESIM_CONFIG"

// Scenario is everything needed to start a simulation.
type Scenario struct {
	Primary  PrimaryBody
	Config   Config
	Vehicle  *MovableBody
	Stations []*MovableBody
	Export   ExportConfig
}

// Bodies returns the vehicle followed by the stations.
func (sc Scenario) Bodies() []*MovableBody {
	bodies := make([]*MovableBody, 0, 1+len(sc.Stations))
	if sc.Vehicle != nil {
		bodies = append(bodies, sc.Vehicle)
	}
	return append(bodies, sc.Stations...)
}

// Simulation returns a new simulation of this scenario.
func (sc Scenario) Simulation() *Simulation {
	return NewSimulation(sc.Config, sc.Primary, sc.Bodies()...)
}

// DefaultScenario returns the shuttle and ISS about the Earth.
func DefaultScenario() Scenario {
	return Scenario{
		Primary:  Earth,
		Config:   DefaultConfig(),
		Vehicle:  NewVehicle("Shuttle", Earth),
		Stations: []*MovableBody{NewStation("ISS", Earth, Earth.Radius+StationAltitude, 0)},
	}
}

// LoadScenario reads the provided TOML scenario. If the name has no extension, the scenario is
// looked up in the directory set in $SHUTTLESIM_CONFIG and then in the current directory.
func LoadScenario(name string) (Scenario, error) {
	v := viper.New()
	if filepath.Ext(name) != "" {
		v.SetConfigFile(name)
	} else {
		v.SetConfigName(name)
		v.SetConfigType("toml")
		if confPath := os.Getenv(ConfigEnv); confPath != "" {
			v.AddConfigPath(confPath)
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		return Scenario{}, fmt.Errorf("could not read scenario %s: %s", name, err)
	}
	return ScenarioFromViper(v)
}

// ScenarioFromViper builds the scenario from an already loaded configuration.
// Missing keys take the values of DefaultScenario.
func ScenarioFromViper(v *viper.Viper) (Scenario, error) {
	sc := DefaultScenario()

	// Primary body
	if v.IsSet("primary.name") {
		primary, err := PrimaryBodyFromString(v.GetString("primary.name"))
		if err != nil {
			return sc, err
		}
		sc.Primary = primary
	}
	if v.IsSet("primary.radius") {
		sc.Primary.Radius = v.GetFloat64("primary.radius")
	}
	if v.IsSet("primary.gm") {
		sc.Primary.μ = v.GetFloat64("primary.gm")
	}
	if sc.Primary.Radius <= 0 || sc.Primary.μ < 0 {
		return sc, fmt.Errorf("invalid primary %s: radius=%f km GM=%f km^3/s^2", sc.Primary.Name, sc.Primary.Radius, sc.Primary.μ)
	}

	// Physics
	conf := &sc.Config
	if v.IsSet("mission.name") {
		conf.Name = v.GetString("mission.name")
	}
	if v.IsSet("mission.epoch") {
		conf.Epoch = readJDEorTime(v, "mission.epoch")
	}
	v.SetDefault("physics.max_step", conf.MaxStep)
	v.SetDefault("physics.time_scale", conf.TimeScale)
	v.SetDefault("physics.acceleration_scale", conf.AccelerationScale)
	v.SetDefault("physics.reset_offset", conf.ResetOffset)
	conf.MaxStep = v.GetFloat64("physics.max_step")
	conf.TimeScale = v.GetFloat64("physics.time_scale")
	conf.AccelerationScale = v.GetFloat64("physics.acceleration_scale")
	conf.ResetOffset = v.GetFloat64("physics.reset_offset")
	conf.Reorthogonalize = v.GetBool("physics.reorthogonalize")
	if conf.MaxStep <= 0 {
		return sc, fmt.Errorf("physics.max_step must be positive (got %f)", conf.MaxStep)
	}
	if conf.TimeScale <= 0 {
		return sc, fmt.Errorf("physics.time_scale must be positive (got %f)", conf.TimeScale)
	}
	if conf.ResetOffset <= 0 {
		return sc, fmt.Errorf("physics.reset_offset must be positive (got %f km)", conf.ResetOffset)
	}

	// Atmosphere
	if v.GetBool("atmosphere.disabled") {
		conf.Atmosphere = Atmosphere{}
	} else {
		v.SetDefault("atmosphere.ceiling", conf.Atmosphere.Ceiling)
		v.SetDefault("atmosphere.scale_height", conf.Atmosphere.ScaleHeight)
		v.SetDefault("atmosphere.coefficient", conf.Atmosphere.Coefficient)
		conf.Atmosphere = Atmosphere{
			Ceiling:     v.GetFloat64("atmosphere.ceiling"),
			ScaleHeight: v.GetFloat64("atmosphere.scale_height"),
			Coefficient: v.GetFloat64("atmosphere.coefficient"),
		}
	}
	if err := conf.Atmosphere.Validate(); err != nil {
		return sc, err
	}

	// Vehicle, always rebuilt as the primary may have changed.
	v.SetDefault("vehicle.name", "Shuttle")
	sc.Vehicle = NewVehicle(v.GetString("vehicle.name"), sc.Primary)
	if v.IsSet("vehicle.position") {
		sc.Vehicle.Position = readVector(v, "vehicle.position")
	}
	if v.IsSet("vehicle.velocity") {
		sc.Vehicle.Velocity = readVector(v, "vehicle.velocity")
	}
	if v.IsSet("vehicle.thrust_power") {
		sc.Vehicle.ThrustPower = v.GetFloat64("vehicle.thrust_power")
	}

	// Stations
	if v.IsSet("stations.0") {
		sc.Stations = nil
	} else {
		sc.Stations = []*MovableBody{NewStation("ISS", sc.Primary, sc.Primary.Radius+StationAltitude, 0)}
	}
	for stNo := 0; v.IsSet(fmt.Sprintf("stations.%d", stNo)); stNo++ {
		key := fmt.Sprintf("stations.%d", stNo)
		v.SetDefault(key+".name", fmt.Sprintf("station-%d", stNo))
		v.SetDefault(key+".altitude", StationAltitude)
		altitude := v.GetFloat64(key + ".altitude")
		if altitude <= 0 {
			return sc, fmt.Errorf("%s.altitude must be positive (got %f km)", key, altitude)
		}
		angle := v.GetFloat64(key + ".angle")
		sc.Stations = append(sc.Stations, NewStation(v.GetString(key+".name"), sc.Primary, sc.Primary.Radius+altitude, Deg2rad(angle)))
	}

	if err := uniqueNames(sc.Bodies()); err != nil {
		return sc, err
	}

	// Export
	sc.Export = ExportConfig{
		Filename:  v.GetString("export.filename"),
		Directory: v.GetString("export.directory"),
		AsCSV:     v.GetBool("export.csv"),
		AsXYZV:    v.GetBool("export.xyzv"),
		Every:     v.GetDuration("export.every"),
	}
	if !sc.Export.IsUseless() && sc.Export.Filename == "" {
		sc.Export.Filename = conf.Name
	}
	return sc, nil
}

// uniqueNames returns an error if two bodies share a name.
func uniqueNames(bodies []*MovableBody) error {
	seen := make(map[string]bool, len(bodies))
	for _, b := range bodies {
		if seen[b.Name] {
			return fmt.Errorf("duplicate body name `%s`", b.Name)
		}
		seen[b.Name] = true
	}
	return nil
}

// readVector reads a {x, y, z} table.
func readVector(v *viper.Viper, key string) Vector3 {
	return Vector3{v.GetFloat64(key + ".x"), v.GetFloat64(key + ".y"), v.GetFloat64(key + ".z")}
}

// readJDEorTime reads either a Julian date or a date.
func readJDEorTime(v *viper.Viper, key string) (dt time.Time) {
	jde := v.GetFloat64(key)
	if jde == 0 {
		dt = v.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return dt.UTC()
}
