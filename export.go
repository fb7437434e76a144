package shuttlesim

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// CgCatalog definition.
type CgCatalog struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Items   []*CgItems `json:"items"`
	Require []string   `json:"require,omitempty"`
}

func (c *CgCatalog) String() string {
	return c.Name + "(" + c.Version + ")"
}

// CgItems definition.
type CgItems struct {
	Class           string            `json:"class"`
	Name            string            `json:"name"`
	StartTime       string            `json:"startTime"`
	EndTime         string            `json:"endTime"`
	Center          string            `json:"center"`
	TrajectoryFrame string            `json:"trajectoryFrame"`
	Trajectory      *CgTrajectory     `json:"trajectory,omitempty"`
	Label           *CgLabel          `json:"label,omitempty"`
	TrajectoryPlot  *CgTrajectoryPlot `json:"trajectoryPlot,omitempty"`
}

// CgTrajectory definition.
type CgTrajectory struct {
	Type   string `json:"type,omitempty"`
	Source string `json:"source,omitempty"`
}

// Validate validates a CgTrajectory.
func (t *CgTrajectory) Validate() error {
	if t.Type != "InterpolatedStates" || !strings.HasSuffix(t.Source, "xyzv") {
		return errors.New("only InterpolatedStates are supported as trajectory types")
	}
	return nil
}

// CgLabel definition.
type CgLabel struct {
	Color    []float64 `json:"color,omitempty"`
	FadeSize int       `json:"fadeSize,omitempty"`
	ShowText bool      `json:"showText,omitempty"`
}

// CgTrajectoryPlot definition.
type CgTrajectoryPlot struct {
	Color       []float64 `json:"color,omitempty"`
	LineWidth   int       `json:"lineWidth,omitempty"`
	Duration    string    `json:"duration,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Fade        int       `json:"fade,omitempty"`
	SampleCount int       `json:"sampleCount,omitempty"`
}

// CgInterpolatedState is one record of an xyzv file.
type CgInterpolatedState struct {
	JD       float64
	Position Vector3
	Velocity Vector3
}

// FromText initializes from text.
// The `record` parameter must be an array of seven items.
func (i *CgInterpolatedState) FromText(record []string) error {
	if len(record) != 7 {
		return fmt.Errorf("expected 7 fields, got %d", len(record))
	}
	vals := make([]float64, 7)
	for j, field := range record {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return err
		}
		vals[j] = val
	}
	i.JD = vals[0]
	i.Position = NewVector3(vals[1:4])
	i.Velocity = NewVector3(vals[4:7])
	return nil
}

// ToText converts to text for written output.
func (i *CgInterpolatedState) ToText() string {
	return fmt.Sprintf("%.8f %f %f %f %f %f %f", i.JD, i.Position.X, i.Position.Y, i.Position.Z, i.Velocity.X, i.Velocity.Y, i.Velocity.Z)
}

// DT returns the date of this record.
func (i *CgInterpolatedState) DT() time.Time {
	return julian.JDToTime(i.JD).UTC()
}

// ParseInterpolatedStates takes a string and converts that into a CgInterpolatedState.
func ParseInterpolatedStates(s string) ([]*CgInterpolatedState, error) {
	var states = []*CgInterpolatedState{}
	r := csv.NewReader(strings.NewReader(s))
	r.Comma = ' '
	r.Comment = '#'
	for {
		record, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		state := CgInterpolatedState{}
		if err := state.FromText(record); err != nil {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("line %d: %s", line, err)
		}
		states = append(states, &state)
	}
	return states, nil
}

// CSVHeader lists the columns of the CSV export.
var CSVHeader = []string{"epoch", "tick", "body", "x", "y", "z", "vx", "vy", "vz", "speed", "altitude"}

// ExportConfig configures the exporting of the simulation.
type ExportConfig struct {
	Filename  string
	Directory string
	AsCSV     bool
	AsXYZV    bool          // One xyzv file per body plus a catalog referencing them
	Every     time.Duration // Minimum simulated time between two exported snapshots
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsXYZV && !c.AsCSV
}

// CSVPath returns the path of the CSV export.
func (c ExportConfig) CSVPath() string {
	return filepath.Join(c.Directory, c.Filename+".csv")
}

// XYZVPath returns the path of the xyzv export of the provided body.
func (c ExportConfig) XYZVPath(body string) string {
	return filepath.Join(c.Directory, xyzvName(c.Filename, body))
}

// CatalogPath returns the path of the catalog listing the xyzv exports.
func (c ExportConfig) CatalogPath() string {
	return filepath.Join(c.Directory, fmt.Sprintf("catalog-%s.json", c.Filename))
}

func xyzvName(filename, body string) string {
	return fmt.Sprintf("%s-%s.xyzv", filename, strings.Replace(body, " ", "_", -1))
}

// exporter writes the snapshots to disk.
type exporter struct {
	conf        ExportConfig
	csvFile     *os.File
	csv         *csv.Writer
	xyzv        map[string]*os.File
	items       []*CgItems
	first, prev *State
}

// StreamStates streams the output of the channel to the configured files until the channel is closed.
// The channel is always drained, even after an error, so the producer never blocks.
func StreamStates(conf ExportConfig, stateChan <-chan State) error {
	e := &exporter{conf: conf, xyzv: make(map[string]*os.File)}
	var err error
	for state := range stateChan {
		if err != nil {
			continue
		}
		err = e.write(state)
	}
	if cErr := e.close(); err == nil {
		err = cErr
	}
	return err
}

func (e *exporter) write(state State) error {
	if e.prev == nil {
		if err := e.open(state); err != nil {
			return err
		}
		e.first = &state
	} else if state.Epoch.Sub(e.prev.Epoch) < e.conf.Every {
		return nil
	}
	e.prev = &state
	epoch := state.Epoch.UTC()
	for _, b := range state.Bodies {
		if e.conf.AsXYZV {
			f, ok := e.xyzv[b.Name]
			if !ok {
				return fmt.Errorf("body %s appeared after the first snapshot", b.Name)
			}
			asTxt := CgInterpolatedState{JD: julian.TimeToJD(epoch), Position: b.Position, Velocity: b.Velocity}
			if _, err := f.WriteString("\n" + asTxt.ToText()); err != nil {
				return err
			}
		}
		if e.conf.AsCSV {
			record := []string{epoch.Format(time.RFC3339Nano), strconv.FormatUint(state.Tick, 10), b.Name}
			for _, val := range []float64{b.Position.X, b.Position.Y, b.Position.Z, b.Velocity.X, b.Velocity.Y, b.Velocity.Z, b.Speed, b.Altitude} {
				record = append(record, strconv.FormatFloat(val, 'f', 6, 64))
			}
			if err := e.csv.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

// open creates all the files from the first snapshot.
func (e *exporter) open(state State) error {
	if e.conf.Directory != "" {
		if err := os.MkdirAll(e.conf.Directory, 0755); err != nil {
			return err
		}
	}
	if e.conf.AsCSV {
		f, err := os.Create(e.conf.CSVPath())
		if err != nil {
			return err
		}
		e.csvFile = f
		e.csv = csv.NewWriter(f)
		if err := e.csv.Write(CSVHeader); err != nil {
			return err
		}
	}
	if !e.conf.AsXYZV {
		return nil
	}
	color := []float64{0.6, 1, 1}
	for _, b := range state.Bodies {
		if _, dup := e.xyzv[b.Name]; dup {
			return fmt.Errorf("duplicate body name `%s` in the xyzv export", b.Name)
		}
		f, err := os.Create(e.conf.XYZVPath(b.Name))
		if err != nil {
			return err
		}
		e.xyzv[b.Name] = f
		// Header
		if _, err := f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Body: %s (%s) about %s
# Records are <jd> <x> <y> <z> <vel x> <vel y> <vel z>
#   Time is a Julian date
#   Position in km
#   Velocity in km/sec
#   Simulation time start (UTC): %s`, time.Now().UTC(), b.Name, b.Policy, state.Primary.Name, state.Epoch.UTC())); err != nil {
			return err
		}
		traj := CgTrajectory{Type: "InterpolatedStates", Source: xyzvName(e.conf.Filename, b.Name)}
		label := CgLabel{Color: color, FadeSize: 1000000, ShowText: true}
		plot := CgTrajectoryPlot{Color: color, LineWidth: 1, Lead: "0 d", SampleCount: 10}
		e.items = append(e.items, &CgItems{Class: "spacecraft", Name: b.Name, StartTime: state.Epoch.UTC().String(), Center: state.Primary.Name, TrajectoryFrame: "ICRF", Trajectory: &traj, Label: &label, TrajectoryPlot: &plot})
		// Change the color for the next body.
		next := make([]float64, 3)
		for i := 0; i < 3; i++ {
			next[i] = color[i] - 0.2
			if next[i] < 0 {
				next[i]++
			}
		}
		color = next
	}
	return nil
}

// close writes the end of simulation time, the catalog, and closes all the files.
func (e *exporter) close() (err error) {
	keep := func(cErr error) {
		if err == nil {
			err = cErr
		}
	}
	var end string
	if e.prev != nil {
		end = e.prev.Epoch.UTC().String()
	}
	if e.csvFile != nil {
		e.csv.Flush()
		keep(e.csv.Error())
		keep(e.csvFile.Close())
	}
	for _, f := range e.xyzv {
		_, wErr := f.WriteString(fmt.Sprintf("\n# Simulation time end (UTC): %s\n", end))
		keep(wErr)
		keep(f.Close())
	}
	if !e.conf.AsXYZV || e.first == nil {
		return
	}
	duration := e.prev.Epoch.Sub(e.first.Epoch)
	for _, item := range e.items {
		item.EndTime = end
		item.TrajectoryPlot.Duration = fmt.Sprintf("%d s", int(duration.Seconds())+1)
	}
	c := CgCatalog{Version: "1.0", Name: e.conf.Filename, Items: e.items}
	marsh, mErr := json.MarshalIndent(c, "", "  ")
	if mErr != nil {
		keep(mErr)
		return
	}
	keep(os.WriteFile(e.conf.CatalogPath(), marsh, 0644))
	return
}
