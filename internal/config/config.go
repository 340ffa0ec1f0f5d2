// Package config loads clustering runs from YAML and validates them.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/TrevorS/fuzzydbscan"
)

// ErrInvalid is returned when a run or request fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Run describes one clustering run as read from a YAML file.
type Run struct {
	EpsMin      float64  `yaml:"eps_min" json:"eps_min" validate:"gte=0"`
	EpsMax      float64  `yaml:"eps_max" json:"eps_max" validate:"gte=0,gtefield=EpsMin"`
	PtsMin      float64  `yaml:"pts_min" json:"pts_min" validate:"gte=0"`
	PtsMax      float64  `yaml:"pts_max" json:"pts_max" validate:"gte=0,gtefield=PtsMin"`
	ExcludeSelf bool     `yaml:"exclude_self" json:"exclude_self"`
	Metric      string   `yaml:"metric" json:"metric" validate:"oneof=euclidean manhattan chebyshev minkowski cosine"`
	MinkowskiP  float64  `yaml:"minkowski_p" json:"minkowski_p" validate:"gte=1"`
	Algorithm   string   `yaml:"algorithm" json:"algorithm" validate:"oneof=auto brute kdtree balltree"`
	LeafSize    int      `yaml:"leaf_size" json:"leaf_size" validate:"gte=1"`
	Workers     int      `yaml:"workers" json:"workers" validate:"gte=0"`
	Fields      []string `yaml:"fields" json:"fields" validate:"omitempty,dive,required"`
	Format      string   `yaml:"format" json:"format" validate:"omitempty,oneof=csv json"`
	LogLevel    string   `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns a Run with every optional field set. The four thresholds
// are zero.
func Default() Run {
	return Run{
		Metric:     "euclidean",
		MinkowskiP: 2,
		Algorithm:  string(fuzzydbscan.AlgorithmAuto),
		LeafSize:   40,
		LogLevel:   "info",
	}
}

// Load reads a YAML run file over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return Run{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode is Load for an open reader. An empty document yields the defaults.
func Decode(r io.Reader) (Run, error) {
	run := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&run); err != nil && !errors.Is(err, io.EOF) {
		return Run{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// MetricValue resolves the run's metric name.
func (r Run) MetricValue() fuzzydbscan.DistanceMetric {
	switch r.Metric {
	case "manhattan":
		return fuzzydbscan.ManhattanMetric{}
	case "chebyshev":
		return fuzzydbscan.ChebyshevMetric{}
	case "minkowski":
		return fuzzydbscan.MinkowskiMetric{P: r.MinkowskiP}
	case "cosine":
		return fuzzydbscan.CosineMetric{}
	default:
		return fuzzydbscan.EuclideanMetric{}
	}
}

// Clustering converts the run into a library Config.
func (r Run) Clustering(logger *zap.Logger) fuzzydbscan.Config {
	cfg := fuzzydbscan.DefaultConfig()
	cfg.EpsMin, cfg.EpsMax = r.EpsMin, r.EpsMax
	cfg.PtsMin, cfg.PtsMax = r.PtsMin, r.PtsMax
	cfg.ExcludeSelf = r.ExcludeSelf
	cfg.Metric = r.MetricValue()
	cfg.Algorithm = fuzzydbscan.Algorithm(r.Algorithm)
	cfg.LeafSize = r.LeafSize
	cfg.Workers = r.Workers
	cfg.Logger = logger
	return cfg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"yaml", "json"} {
			if name, _, _ := strings.Cut(fld.Tag.Get(key), ","); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Validate checks s against its validate tags. Field errors are reported
// together, by their serialized names.
func Validate(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("config: %v: %w", err, ErrInvalid)
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("config: %s: %w", strings.Join(msgs, "; "), ErrInvalid)
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, snakeCase(e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", field, snakeCase(e.Param()))
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, snakeCase(e.Param()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// snakeCase turns a Go field name such as EpsMin into eps_min.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
