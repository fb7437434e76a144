package shuttlesim

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runExport simulates the default scenario for the provided number of ticks and exports every snapshot.
func runExport(t *testing.T, conf ExportConfig, ticks int) []State {
	sc := DefaultScenario()
	sim := sc.Simulation()
	stateChan := make(chan State)
	done := make(chan error)
	go func() {
		done <- StreamStates(conf, stateChan)
	}()
	var states []State
	for i := 0; i < ticks; i++ {
		st := sim.Snapshot()
		states = append(states, st)
		stateChan <- st
		sim.Step(0.1, Vector3{})
	}
	close(stateChan)
	require.NoError(t, <-done)
	return states
}

func TestExportXYZVRoundTrip(t *testing.T) {
	conf := ExportConfig{Filename: "rdv", Directory: filepath.Join(t.TempDir(), "out"), AsXYZV: true}
	states := runExport(t, conf, 20)

	for _, name := range []string{"Shuttle", "ISS"} {
		data, err := os.ReadFile(conf.XYZVPath(name))
		require.NoError(t, err)
		records, err := ParseInterpolatedStates(string(data))
		require.NoError(t, err)
		require.Len(t, records, len(states))
		for i, rec := range records {
			exp, err := states[i].Body(name)
			require.NoError(t, err)
			assert.InDelta(t, julian.TimeToJD(states[i].Epoch), rec.JD, 1e-8)
			assert.InDelta(t, 0, rec.DT().Sub(states[i].Epoch).Seconds(), 1e-3)
			assert.True(t, rec.Position.Equals(exp.Position, 1e-6), "%s #%d: %s != %s", name, i, rec.Position, exp.Position)
			assert.True(t, rec.Velocity.Equals(exp.Velocity, 1e-6), "%s #%d: %s != %s", name, i, rec.Velocity, exp.Velocity)
		}
	}
	_, err := os.Stat(conf.CSVPath())
	assert.True(t, os.IsNotExist(err), "CSV export was not requested")

	data, err := os.ReadFile(conf.CatalogPath())
	require.NoError(t, err)
	var catalog CgCatalog
	require.NoError(t, json.Unmarshal(data, &catalog))
	require.Len(t, catalog.Items, 2)
	for _, item := range catalog.Items {
		assert.NoError(t, item.Trajectory.Validate())
		assert.Equal(t, "Earth", item.Center)
		assert.FileExists(t, filepath.Join(conf.Directory, item.Trajectory.Source))
	}
}

func TestExportCSV(t *testing.T) {
	conf := ExportConfig{Filename: "rdv", Directory: t.TempDir(), AsCSV: true, Every: time.Second}
	states := runExport(t, conf, 25)

	f, err := os.Open(conf.CSVPath())
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, CSVHeader, records[0])
	// Snapshots at 0, 1 and 2 seconds, with two bodies each.
	require.Len(t, records, 1+3*2)
	assert.Equal(t, []string{states[10].Epoch.Format(time.RFC3339Nano), "10", "Shuttle"}, records[3][:3])
	assert.Equal(t, "ISS", records[4][2])
	assert.Equal(t, "20", records[6][1])
}

func TestExportUseless(t *testing.T) {
	assert.True(t, ExportConfig{Filename: "nothing"}.IsUseless())
	assert.False(t, ExportConfig{AsCSV: true}.IsUseless())
	assert.False(t, ExportConfig{AsXYZV: true}.IsUseless())
}

func TestExportErrorDrainsChannel(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	// The directory cannot be created under a regular file.
	conf := ExportConfig{Filename: "rdv", Directory: filepath.Join(blocker, "out"), AsCSV: true}
	stateChan := make(chan State)
	done := make(chan error)
	go func() {
		done <- StreamStates(conf, stateChan)
	}()
	sim := DefaultScenario().Simulation()
	for i := 0; i < 5; i++ {
		stateChan <- sim.Snapshot()
	}
	close(stateChan)
	assert.Error(t, <-done)
}

func TestParseInterpolatedStatesErrors(t *testing.T) {
	_, err := ParseInterpolatedStates("# header\n2451545.0 1 2 3 4 5")
	assert.Error(t, err)
	_, err = ParseInterpolatedStates("2451545.0 1 2 3 4 5 six")
	assert.Error(t, err)
	states, err := ParseInterpolatedStates("# only comments\n")
	assert.NoError(t, err)
	assert.Empty(t, states)
}

func TestExportDuplicateNames(t *testing.T) {
	conf := ExportConfig{Filename: "dup", Directory: t.TempDir(), AsXYZV: true}
	sim := NewSimulation(DefaultConfig(), Earth, NewVehicle("Shuttle", Earth), NewStation("Shuttle", Earth, Earth.Radius+StationAltitude, 0))
	stateChan := make(chan State)
	done := make(chan error)
	go func() {
		done <- StreamStates(conf, stateChan)
	}()
	for i := 0; i < 3; i++ {
		stateChan <- sim.Snapshot()
		sim.Step(0.1, Vector3{})
	}
	close(stateChan)
	assert.Error(t, <-done)
}
