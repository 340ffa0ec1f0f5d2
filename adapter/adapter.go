// Package adapter converts between loosely typed host data and the
// fuzzydbscan API: decoded JSON records in, serializable assignment
// records out.
package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/TrevorS/fuzzydbscan"
)

// ErrInvalidRecord is returned when a record lacks a coordinate field or
// holds a value that is not a finite number.
var ErrInvalidRecord = errors.New("invalid record")

// DefaultFields are the coordinate fields read by Coerce when none are given.
var DefaultFields = []string{"x", "y"}

// Point2D is a planar point with Euclidean distance.
type Point2D struct {
	X, Y float64
}

// Distance implements fuzzydbscan.Point.
func (p Point2D) Distance(o Point2D) float64 {
	return math.Hypot(o.X-p.X, o.Y-p.Y)
}

// Coerce extracts the named numeric fields from each record, in order.
// Values may be any Go numeric type, json.Number, or a numeric string.
func Coerce(records []map[string]any, fields ...string) ([][]float64, error) {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	out := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(fields))
		for k, f := range fields {
			raw, ok := rec[f]
			if !ok {
				return nil, fmt.Errorf("adapter: record %d: missing field %q: %w", i, f, ErrInvalidRecord)
			}
			v, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("adapter: record %d: field %q: %v: %w", i, f, err, ErrInvalidRecord)
			}
			row[k] = v
		}
		out[i] = row
	}
	return out, nil
}

func toFloat(raw any) (float64, error) {
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, err
		}
		v = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		v = f
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite: %v", v)
	}
	return v, nil
}

// Record is the serialized form of one assignment. Cluster is nil for noise.
type Record struct {
	ID       int     `json:"id"`
	Cluster  *int    `json:"cluster"`
	Category string  `json:"category"`
	Label    float64 `json:"label"`
}

// Encode converts every assignment of res into a Record, preserving order.
func Encode(res *fuzzydbscan.Result) []Record {
	out := make([]Record, len(res.Assignments))
	for i, a := range res.Assignments {
		rec := Record{ID: a.Index, Category: a.Category.String(), Label: a.Label}
		if a.Cluster != fuzzydbscan.NoCluster {
			c := a.Cluster
			rec.Cluster = &c
		}
		out[i] = rec
	}
	return out
}

// Output is the document written for one clustering run, by the CLI and
// the HTTP API alike.
type Output struct {
	RunID       string   `json:"run_id"`
	Clusters    int      `json:"clusters"`
	Assignments []Record `json:"assignments"`
}

// NewOutput encodes res under the given run id.
func NewOutput(runID string, res *fuzzydbscan.Result) Output {
	return Output{RunID: runID, Clusters: res.NumClusters, Assignments: Encode(res)}
}
