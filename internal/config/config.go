package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when no -config flag is given.
const DefaultPath = "config/default-config.yaml"

// Config holds the run configuration document shared by the pipeline, the
// scheduler, and the prediction service.
type Config struct {
	RunConfig   RunConfig   `yaml:"run_config"`
	AWS         AWS         `yaml:"aws"`
	Storage     Storage     `yaml:"storage"`
	TrainModel  TrainModel  `yaml:"train_model"`
	ScoreModel  ScoreModel  `yaml:"score_model"`
	ColumnOrder ColumnOrder `yaml:"column_order"`
	Predict     Predict     `yaml:"predict"`
	Notify      Notify      `yaml:"notify"`
	Metrics     Metrics     `yaml:"metrics"`
	Server      Server      `yaml:"server"`
}

type RunConfig struct {
	// Output is the root directory that receives one subdirectory per run.
	Output string `yaml:"output"`
	// Input is an optional local data file that replaces the object-store read.
	Input     string `yaml:"input,omitempty"`
	SaveData  bool   `yaml:"save_data"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Schedule  string `yaml:"schedule,omitempty"`
}

type AWS struct {
	BucketName string `yaml:"bucket_name"`
	Upload     bool   `yaml:"upload"`
	Region     string `yaml:"region"`
	DataKey    string `yaml:"data_key"`
	Prefix     string `yaml:"prefix"`
	PCRKey     string `yaml:"pcr_key"`
	RFKey      string `yaml:"rf_key"`
	GBKey      string `yaml:"gb_key"`
}

// Storage selects the object store backend: "s3" or "local".
type Storage struct {
	Backend   string `yaml:"backend"`
	LocalRoot string `yaml:"local_root,omitempty"`
}

// Params is a per-family hyperparameter map. Values keep the YAML scalar type
// so the trainer can reject non-integer counts.
type Params map[string]any

type TrainModel struct {
	Features    []string `yaml:"features"`
	Response    string   `yaml:"response"`
	TestSize    float64  `yaml:"test_size"`
	RandomState int64    `yaml:"random_state"`
	PCR         Params   `yaml:"PCR,omitempty"`
	RF          Params   `yaml:"RF,omitempty"`
	GBM         Params   `yaml:"GBM,omitempty"`
}

type ScoreModel struct {
	Features []string `yaml:"features"`
	Response string   `yaml:"response"`
}

type ColumnOrder struct {
	NumFeatures []string `yaml:"num_features"`
}

// NumericField is one numeric input of the prediction form.
type NumericField struct {
	Name    string  `yaml:"name" json:"name"`
	Default float64 `yaml:"default" json:"default"`
}

// AirportType maps a display name to the category value used in training data.
type AirportType struct {
	Display string `yaml:"display" json:"display"`
	Value   string `yaml:"value" json:"value"`
}

type Predict struct {
	Numeric      []NumericField `yaml:"numeric"`
	Airlines     []string       `yaml:"airlines"`
	AirportTypes []AirportType  `yaml:"airport_types"`
	DefaultDate  string         `yaml:"default_date"`
}

type Notify struct {
	Kafka KafkaNotify `yaml:"kafka"`
}

type KafkaNotify struct {
	Brokers []string `yaml:"brokers,omitempty"`
	Topic   string   `yaml:"topic,omitempty"`
}

// Enabled reports whether run summaries should be published.
func (k KafkaNotify) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type Metrics struct {
	Pushgateway string `yaml:"pushgateway,omitempty"`
	Job         string `yaml:"job"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoadError reports a configuration document that could not be read,
// parsed, or validated.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the YAML document at path on top of the defaults, applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return cfg, nil
}

// Decode parses a configuration document from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.fillScoreModel()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders the resolved configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// ModelKeys maps model identifiers to their object keys.
func (c *Config) ModelKeys() map[string]string {
	return map[string]string{
		"pcr": c.AWS.PCRKey,
		"rf":  c.AWS.RFKey,
		"gbm": c.AWS.GBKey,
	}
}

func (c *Config) fillScoreModel() {
	if len(c.ScoreModel.Features) == 0 {
		c.ScoreModel.Features = slices.Clone(c.TrainModel.Features)
	}
	if c.ScoreModel.Response == "" {
		c.ScoreModel.Response = c.TrainModel.Response
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.TrainModel.Response == "" {
		return errors.New("train_model.response is required")
	}
	if err := checkFeatures("train_model", c.TrainModel.Features, c.TrainModel.Response); err != nil {
		return err
	}
	if err := checkFeatures("score_model", c.ScoreModel.Features, c.ScoreModel.Response); err != nil {
		return err
	}
	if c.RunConfig.Output == "" {
		return errors.New("run_config.output is required")
	}
	switch c.RunConfig.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("run_config.log_format must be json or text, got %q", c.RunConfig.LogFormat)
	}
	switch c.Storage.Backend {
	case "s3":
	case "local":
		if c.Storage.LocalRoot == "" {
			return errors.New("storage.local_root is required for the local backend")
		}
	default:
		return fmt.Errorf("storage.backend must be s3 or local, got %q", c.Storage.Backend)
	}
	if c.AWS.Upload && c.AWS.BucketName == "" {
		return errors.New("aws.upload is true but aws.bucket_name is not set")
	}
	for i, at := range c.Predict.AirportTypes {
		if at.Display == "" || at.Value == "" {
			return fmt.Errorf("predict.airport_types[%d] needs display and value", i)
		}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	return nil
}

func checkFeatures(section string, features []string, response string) error {
	if len(features) == 0 {
		return fmt.Errorf("%s.features must list at least one column", section)
	}
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if f == response {
			return fmt.Errorf("%s.features must not include the response column %q", section, response)
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%s.features lists %q twice", section, f)
		}
		seen[f] = struct{}{}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.RunConfig.LogLevel = envOrDefault("LOG_LEVEL", cfg.RunConfig.LogLevel)
	cfg.RunConfig.LogFormat = envOrDefault("LOG_FORMAT", cfg.RunConfig.LogFormat)
	cfg.Server.Addr = envOrDefault("HTTP_ADDR", cfg.Server.Addr)

	if s := os.Getenv("SHUTDOWN_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return errors.New("invalid SHUTDOWN_TIMEOUT")
		}
		cfg.Server.ShutdownTimeout = d
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
