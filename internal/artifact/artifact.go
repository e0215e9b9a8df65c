// Package artifact persists the outputs of one pipeline run into a
// timestamped directory and uploads them to object storage.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/jonboulle/clockwork"
	"gopkg.in/yaml.v3"

	"github.com/zhiweigu2000/flight-delay-prediction/internal/config"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/domain"
	"github.com/zhiweigu2000/flight-delay-prediction/internal/model"
)

// File names inside a run directory.
const (
	ConfigFile     = "config.yaml"
	VocabularyFile = "vocabulary.yaml"
	DataFile       = "data.csv"
	TrainFile      = "train.csv"
	TestFile       = "test.csv"
)

// ModelFile returns the bundle file name of family.
func ModelFile(f model.Family) string { return string(f) + "_model_object.gob" }

// ScoresFile returns the scores file name of family.
func ScoresFile(f model.Family) string { return "scores_" + string(f) + ".csv" }

// MetricsFile returns the metrics file name of family.
func MetricsFile(f model.Family) string { return "metrics_" + string(f) + ".yaml" }

// IOError reports an artifact that could not be written or read.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s artifact %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Sink creates run directories under a root.
type Sink struct {
	root   string
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewSink creates a Sink. A nil clock uses real time.
func NewSink(root string, clock clockwork.Clock, logger *slog.Logger) *Sink {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sink{root: root, clock: clock, logger: logger}
}

// Run is one run directory.
type Run struct {
	ID     string
	Dir    string
	logger *slog.Logger
}

// NewRun creates <root>/<unix seconds>. If that directory already exists the
// timestamp is bumped until an unused name is found.
func (s *Sink) NewRun() (*Run, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, &IOError{Op: "create", Path: s.root, Err: err}
	}
	ts := s.clock.Now().Unix()
	for {
		id := strconv.FormatInt(ts, 10)
		dir := filepath.Join(s.root, id)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			s.logger.Info("run directory created", "dir", dir)
			return &Run{ID: id, Dir: dir, logger: s.logger}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, &IOError{Op: "create", Path: dir, Err: err}
		}
		ts++
	}
}

// Path returns the path of name inside the run directory.
func (r *Run) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

func (r *Run) write(name string, data []byte) error {
	p := r.Path(name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return &IOError{Op: "write", Path: p, Err: err}
	}
	r.logger.Debug("artifact written", "path", p, "bytes", len(data))
	return nil
}

// WriteConfig snapshots the resolved configuration.
func (r *Run) WriteConfig(cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return &IOError{Op: "encode", Path: r.Path(ConfigFile), Err: err}
	}
	return r.write(ConfigFile, data)
}

// WriteModel persists a trained bundle.
func (r *Run) WriteModel(b *model.Bundle) error {
	var buf bytes.Buffer
	if err := model.Save(&buf, b); err != nil {
		return &IOError{Op: "encode", Path: r.Path(ModelFile(b.Family)), Err: err}
	}
	return r.write(ModelFile(b.Family), buf.Bytes())
}

// WriteScores writes a two-column test,pred CSV. Values use the shortest
// representation that parses back to the same float64.
func (r *Run) WriteScores(f model.Family, pairs domain.ScoredPairs) error {
	name := ScoresFile(f)
	if len(pairs.Actual) != len(pairs.Predicted) {
		return &IOError{Op: "encode", Path: r.Path(name), Err: errors.New("actual and predicted lengths differ")}
	}
	df := dataframe.New(
		series.New(formatFloats(pairs.Actual), series.String, "test"),
		series.New(formatFloats(pairs.Predicted), series.String, "pred"),
	)
	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return &IOError{Op: "encode", Path: r.Path(name), Err: err}
	}
	return r.write(name, buf.Bytes())
}

// WriteMetrics writes the metrics record as YAML.
func (r *Run) WriteMetrics(f model.Family, m domain.Metrics) error {
	return r.writeYAML(MetricsFile(f), m)
}

// WriteVocabulary writes the category vocabulary shared by the run's bundles.
func (r *Run) WriteVocabulary(v domain.Vocabulary) error {
	return r.writeYAML(VocabularyFile, v)
}

// WriteFrame writes df as CSV under name.
func (r *Run) WriteFrame(name string, df dataframe.DataFrame) error {
	var buf bytes.Buffer
	if err := df.WriteCSV(&buf); err != nil {
		return &IOError{Op: "encode", Path: r.Path(name), Err: err}
	}
	return r.write(name, buf.Bytes())
}

func (r *Run) writeYAML(name string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return &IOError{Op: "encode", Path: r.Path(name), Err: err}
	}
	return r.write(name, data)
}

func formatFloats(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return out
}
