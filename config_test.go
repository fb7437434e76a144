package shuttlesim

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "iss.toml"))
	require.NoError(t, err)

	assert.True(t, sc.Primary.Equals(Earth))
	assert.Equal(t, "rendezvous", sc.Config.Name)
	assert.WithinDuration(t, time.Date(2015, 7, 20, 0, 0, 0, 0, time.UTC), sc.Config.Epoch, time.Millisecond)
	assert.Equal(t, 0.05, sc.Config.MaxStep)
	assert.Equal(t, 2.0, sc.Config.TimeScale)
	assert.Equal(t, DefaultAccelerationScale, sc.Config.AccelerationScale)
	assert.Equal(t, 458.0, sc.Config.ResetOffset)
	assert.True(t, sc.Config.Reorthogonalize)
	assert.Equal(t, Atmosphere{120, 7.5, 0.002}, sc.Config.Atmosphere)

	require.NotNil(t, sc.Vehicle)
	assert.Equal(t, "Atlantis", sc.Vehicle.Name)
	assert.Equal(t, Vector3{6829, 0, 0}, sc.Vehicle.Position)
	assert.Equal(t, Vector3{0, 7.6, 0}, sc.Vehicle.Velocity)
	assert.Equal(t, 0.1, sc.Vehicle.ThrustPower)

	require.Len(t, sc.Stations, 2)
	iss, tiangong := sc.Stations[0], sc.Stations[1]
	assert.Equal(t, "ISS", iss.Name)
	assert.InDelta(t, 0, iss.Position.X, 1e-9)
	assert.InDelta(t, Earth.Radius+408, iss.Position.Z, 1e-9)
	assert.Equal(t, "Tiangong", tiangong.Name)
	assert.InDelta(t, Earth.Radius+390, tiangong.Position.X, 1e-9)

	assert.Equal(t, ExportConfig{Filename: "rdv", Directory: "./output", AsCSV: true, AsXYZV: true, Every: time.Second}, sc.Export)
	assert.Len(t, sc.Bodies(), 3)
}

func TestLoadScenarioDefaults(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "mars.toml"))
	require.NoError(t, err)

	assert.True(t, sc.Primary.Equals(Mars))
	assert.WithinDuration(t, time.Date(2018, 11, 26, 19, 52, 59, 0, time.UTC), sc.Config.Epoch, time.Millisecond)
	assert.Equal(t, DefaultMaxStep, sc.Config.MaxStep)
	assert.Equal(t, 1.0, sc.Config.TimeScale)
	assert.False(t, sc.Config.Atmosphere.Active(0))
	assert.True(t, sc.Export.IsUseless())

	// The default vehicle and station are built about the configured primary.
	exp := Mars.Radius + StationAltitude + 50
	assert.Equal(t, Vector3{exp, exp, 0}, sc.Vehicle.Position)
	require.Len(t, sc.Stations, 1)
	assert.InDelta(t, Mars.CircularSpeed(Mars.Radius+StationAltitude), sc.Stations[0].Speed(), 1e-12)
}

func TestLoadScenarioFromEnv(t *testing.T) {
	t.Setenv(ConfigEnv, "testdata")
	sc, err := LoadScenario("iss")
	require.NoError(t, err)
	assert.Equal(t, "rendezvous", sc.Config.Name)

	_, err = LoadScenario("does-not-exist")
	assert.Error(t, err)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "invalid.toml"))
	assert.Error(t, err, "Vesta is not a known primary")

	for key, value := range map[string]interface{}{
		"physics.max_step":        0.0,
		"physics.time_scale":      -1.0,
		"physics.reset_offset":    0.0,
		"atmosphere.scale_height": -8.0,
		"primary.radius":          -1.0,
		"stations.0.altitude":     -10.0,
	} {
		v := viper.New()
		v.Set(key, value)
		_, err := ScenarioFromViper(v)
		assert.Error(t, err, "%s=%v should be rejected", key, value)
	}
}

func TestDefaultScenario(t *testing.T) {
	sc, err := ScenarioFromViper(viper.New())
	require.NoError(t, err)
	def := DefaultScenario()
	assert.Equal(t, def.Config.MaxStep, sc.Config.MaxStep)
	assert.Equal(t, def.Vehicle.Position, sc.Vehicle.Position)
	require.Len(t, sc.Stations, 1)
	assert.Equal(t, def.Stations[0].Position, sc.Stations[0].Position)

	sim := sc.Simulation()
	st := sim.Snapshot()
	require.Len(t, st.Bodies, 2)
	assert.Equal(t, "Shuttle", st.Bodies[0].Name)
	assert.Equal(t, "ISS", st.Bodies[1].Name)
	d, err := st.DistanceBetween("Shuttle", "ISS")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(d))
	assert.True(t, d > 0)
}

func TestLoadScenarioZeroTimeScale(t *testing.T) {
	v := viper.New()
	v.Set("physics.time_scale", 0.0)
	_, err := ScenarioFromViper(v)
	assert.Error(t, err, "a scenario cannot start paused")
}

func TestLoadScenarioDuplicateNames(t *testing.T) {
	v := viper.New()
	v.Set("stations.0.name", "Shuttle")
	_, err := ScenarioFromViper(v)
	assert.Error(t, err, "the station has the name of the vehicle")

	v = viper.New()
	v.Set("stations.0.name", "ISS")
	v.Set("stations.1.name", "ISS")
	_, err = ScenarioFromViper(v)
	assert.Error(t, err, "two stations share a name")

	v = viper.New()
	v.Set("stations.0.name", "ISS")
	v.Set("stations.1.name", "Tiangong")
	sc, err := ScenarioFromViper(v)
	require.NoError(t, err)
	assert.Len(t, sc.Stations, 2)
}
