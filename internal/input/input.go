// Package input reads point sets from CSV or JSON, optionally compressed
// with gzip, zstd or lz4.
package input

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/TrevorS/fuzzydbscan/adapter"
)

// Format is an input encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned when no format is given and none can be
// inferred from the file name.
var ErrUnknownFormat = errors.New("unknown input format")

// ErrMalformed is returned for input that does not parse as points.
var ErrMalformed = errors.New("malformed input")

var compressedExts = []string{".gz", ".zst", ".lz4"}

// FormatFromName infers the format from a file extension, ignoring a
// trailing compression extension.
func FormatFromName(name string) (Format, error) {
	for _, ext := range compressedExts {
		if strings.HasSuffix(name, ext) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("input: %q: %w", name, ErrUnknownFormat)
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Decompress sniffs the stream header and returns a reader over the
// decompressed bytes. Uncompressed input passes through unchanged.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("input: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("input: gzip: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("input: zstd: %w", err)
		}
		return readCloser{zr, func() error { zr.Close(); return nil }}, nil
	case bytes.HasPrefix(head, lz4Magic):
		return io.NopCloser(lz4.NewReader(br)), nil
	default:
		return io.NopCloser(br), nil
	}
}

// Load reads points from path, or from stdin when path is "-". An empty
// format is inferred from the file name.
func Load(path string, format Format, fields []string, stdin io.Reader) ([][]float64, error) {
	if format == "" {
		if path == "-" {
			return nil, fmt.Errorf("input: stdin needs an explicit format: %w", ErrUnknownFormat)
		}
		f, err := FormatFromName(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	src := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		defer f.Close()
		src = f
	}

	r, err := Decompress(src)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Read(r, format, fields)
}

// Read parses points in the given format. fields selects the coordinate
// keys of JSON object records and is ignored otherwise.
func Read(r io.Reader, format Format, fields []string) ([][]float64, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatJSON:
		return ReadJSON(r, fields)
	}
	return nil, fmt.Errorf("input: %q: %w", format, ErrUnknownFormat)
}

// ReadCSV parses one point per row. A first row whose first cell is not a
// number is treated as a header. Lines starting with '#' are skipped.
// NaN and infinite cells are rejected.
func ReadCSV(r io.Reader) ([][]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var points [][]float64
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("input: csv: %v: %w", err, ErrMalformed)
		}
		if row == 0 && !isNumber(rec[0]) {
			continue
		}
		pt := make([]float64, len(rec))
		for k, cell := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("input: csv row %d column %d: %q is not a number: %w", row+1, k+1, cell, ErrMalformed)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("input: csv row %d column %d: %q is not finite: %w", row+1, k+1, cell, ErrMalformed)
			}
			pt[k] = v
		}
		points = append(points, pt)
	}
	return points, nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// ReadJSON parses either an array of numeric arrays or an array of objects.
// Objects are converted with adapter.Coerce using fields.
func ReadJSON(r io.Reader, fields []string) ([][]float64, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("input: json: %v: %w", err, ErrMalformed)
	}
	if len(raw) == 0 {
		return [][]float64{}, nil
	}

	if first := bytes.TrimSpace(raw[0]); len(first) > 0 && first[0] == '{' {
		records := make([]map[string]any, len(raw))
		for i, msg := range raw {
			dec := json.NewDecoder(bytes.NewReader(msg))
			dec.UseNumber()
			if err := dec.Decode(&records[i]); err != nil {
				return nil, fmt.Errorf("input: json record %d: %v: %w", i, err, ErrMalformed)
			}
		}
		points, err := adapter.Coerce(records, fields...)
		if err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
		return points, nil
	}

	points := make([][]float64, len(raw))
	for i, msg := range raw {
		if err := json.Unmarshal(msg, &points[i]); err != nil {
			return nil, fmt.Errorf("input: json point %d: %v: %w", i, err, ErrMalformed)
		}
	}
	return points, nil
}
