package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/grain"
	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	outlinesFile = "outlines.csv"
	boundaryFile = "boundary.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type SpecSummary struct {
	Length       float64 `json:"length_m"`
	Density      float64 `json:"density_kg_m3"`
	A            float64 `json:"a"`
	N            float64 `json:"n"`
	Isp          float64 `json:"isp_s"`
	OxidizerFlow float64 `json:"oxidizer_flow_kg_s"`
	Scale        float64 `json:"scale_m"`
	OuterArea    float64 `json:"outer_area_m2"`
}

func Summarize(spec *grain.Spec) SpecSummary {
	return SpecSummary{
		Length:       spec.Length,
		Density:      spec.Density,
		A:            spec.A,
		N:            spec.N,
		Isp:          spec.Isp,
		OxidizerFlow: spec.OxidizerFlow,
		Scale:        spec.Scale,
		OuterArea:    spec.ToArea(spec.OuterArea()),
	}
}

type RunMetadata struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Timestamp           time.Time          `json:"timestamp"`
	Status              string             `json:"status"`
	Phase               sim.Phase          `json:"-"`
	FailedStep          int                `json:"failed_step,omitempty"`
	ErrorKind           string             `json:"error_kind,omitempty"`
	Reason              string             `json:"reason,omitempty"`
	FireTime            float64            `json:"fire_time"`
	IterationsPerSecond float64            `json:"iterations_per_second"`
	Snapshots           int                `json:"snapshots"`
	Spec                SpecSummary        `json:"spec"`
	Metrics             map[string]float64 `json:"metrics"`
}

// OutlineRow is one vertex of a recorded port outline.
type OutlineRow struct {
	Step int     `csv:"step"`
	Ring int     `csv:"ring"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
}

// Save writes a run directory and returns its ID.
func (s *Store) Save(name string, spec *grain.Spec, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(name, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:                  runID,
		Name:                name,
		Timestamp:           now,
		Status:              result.Status.String(),
		Phase:               result.Status,
		FireTime:            cfg.FireTime,
		IterationsPerSecond: cfg.IterationsPerSecond,
		Snapshots:           len(result.Series),
		Spec:                Summarize(spec),
		Metrics:             result.Metrics,
	}
	if result.Err != nil {
		meta.FailedStep = result.FailedStep
		meta.Reason = result.Err.Error()
		var stepErr *sim.StepError
		if errors.As(result.Err, &stepErr) {
			meta.ErrorKind = stepErr.Kind()
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, seriesFile), result.Series); err != nil {
		return "", fmt.Errorf("writing series: %w", err)
	}

	if len(result.Outlines) > 0 {
		rows := make([]OutlineRow, 0)
		for _, o := range result.Outlines {
			rows = appendRows(rows, o.Step, o.Rings)
		}
		if err := writeCSV(filepath.Join(runDir, outlinesFile), rows); err != nil {
			return "", fmt.Errorf("writing outlines: %w", err)
		}
		if err := writeCSV(filepath.Join(runDir, boundaryFile), appendRows(nil, 0, spec.Outer)); err != nil {
			return "", fmt.Errorf("writing boundary: %w", err)
		}
	}

	return runID, nil
}

func appendRows(rows []OutlineRow, step int, p geom.Polygon) []OutlineRow {
	for ri, ring := range p {
		for _, pt := range ring {
			rows = append(rows, OutlineRow{Step: step, Ring: ri, X: pt.X, Y: pt.Y})
		}
	}
	return rows
}

func (s *Store) newRunDir(name string, now time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	for i := 0; ; i++ {
		runID := base
		if i > 0 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(rows, f)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	meta.Phase, err = sim.ParsePhase(meta.Status)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSeries(runID string) ([]propulsion.State, error) {
	var series []propulsion.State
	if err := readCSV(filepath.Join(s.baseDir, runID, seriesFile), &series); err != nil {
		return nil, err
	}
	return series, nil
}

// LoadOutlines returns the recorded outlines grouped by step. Runs saved
// without outlines yield an empty map.
func (s *Store) LoadOutlines(runID string) (map[int][]OutlineRow, error) {
	var rows []OutlineRow
	err := readCSV(filepath.Join(s.baseDir, runID, outlinesFile), &rows)
	if os.IsNotExist(err) {
		return map[int][]OutlineRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make(map[int][]OutlineRow)
	for _, r := range rows {
		out[r.Step] = append(out[r.Step], r)
	}
	return out, nil
}

// LoadBoundary returns the outer boundary saved alongside the outlines, or
// nil when the run recorded none.
func (s *Store) LoadBoundary(runID string) (geom.Polygon, error) {
	var rows []OutlineRow
	err := readCSV(filepath.Join(s.baseDir, runID, boundaryFile), &rows)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Polygon(rows), nil
}

// Polygon rebuilds the rings of one step from its rows.
func Polygon(rows []OutlineRow) geom.Polygon {
	var p geom.Polygon
	ring := -1
	for _, r := range rows {
		if r.Ring != ring {
			p = append(p, nil)
			ring = r.Ring
		}
		p[len(p)-1] = append(p[len(p)-1], r2.Vec{X: r.X, Y: r.Y})
	}
	return p
}

// Contours returns the recorded outlines ordered by step.
func Contours(outlines map[int][]OutlineRow) ([]int, []geom.Polygon) {
	steps := make([]int, 0, len(outlines))
	for step := range outlines {
		steps = append(steps, step)
	}
	sort.Ints(steps)
	polys := make([]geom.Polygon, len(steps))
	for i, step := range steps {
		polys[i] = Polygon(outlines[step])
	}
	return steps, polys
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil
		}
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
