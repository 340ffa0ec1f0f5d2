// Package cli implements the fuzzydbscan command.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TrevorS/fuzzydbscan"
	"github.com/TrevorS/fuzzydbscan/adapter"
	"github.com/TrevorS/fuzzydbscan/internal/config"
	"github.com/TrevorS/fuzzydbscan/internal/input"
	"github.com/TrevorS/fuzzydbscan/internal/server"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: fuzzydbscan <command> [flags]

commands:
  cluster   cluster a point file and write JSON assignments
  serve     serve the HTTP API

Run "fuzzydbscan <command> -h" for the flags of a command.
`

var errUsage = errors.New("usage")

// Env carries the process streams so commands can run in tests.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Main runs the command named by args[0] and returns the exit status.
func Main(ctx context.Context, args []string, env Env) int {
	if len(args) == 0 {
		fmt.Fprint(env.Stderr, usage)
		return exitUsage
	}

	var err error
	switch args[0] {
	case "cluster":
		err = runCluster(ctx, args[1:], env)
	case "serve":
		err = runServe(ctx, args[1:], env)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(env.Stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(env.Stderr, "fuzzydbscan: unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		fmt.Fprintf(env.Stderr, "fuzzydbscan: %v\n", err)
		return exitError
	}
}

// newLogger writes JSON lines to w at the named level.
func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

type clusterFlags struct {
	configPath string
	in, out    string
	format     string
	fields     string
	logLevel   string

	epsMin, epsMax float64
	ptsMin, ptsMax float64
	excludeSelf    bool
	metric         string
	minkowskiP     float64
	algorithm      string
	leafSize       int
	workers        int
}

func (f *clusterFlags) register(fs *flag.FlagSet) {
	def := config.Default()
	fs.StringVar(&f.configPath, "config", "", "YAML run file")
	fs.StringVar(&f.in, "in", "-", "input file, or - for stdin")
	fs.StringVar(&f.out, "out", "-", "output file, or - for stdout")
	fs.StringVar(&f.format, "format", "", "input format: csv or json (default from file name)")
	fs.StringVar(&f.fields, "fields", "", "comma-separated coordinate fields of JSON records (default x,y)")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "debug, info, warn or error")
	fs.Float64Var(&f.epsMin, "eps-min", def.EpsMin, "distance at or below which a neighbor counts fully")
	fs.Float64Var(&f.epsMax, "eps-max", def.EpsMax, "distance at or beyond which a neighbor does not count")
	fs.Float64Var(&f.ptsMin, "pts-min", def.PtsMin, "density at or below which a point is not core")
	fs.Float64Var(&f.ptsMax, "pts-max", def.PtsMax, "density at or above which a point is fully core")
	fs.BoolVar(&f.excludeSelf, "exclude-self", def.ExcludeSelf, "do not count a point in its own density")
	fs.StringVar(&f.metric, "metric", def.Metric, "euclidean, manhattan, chebyshev, minkowski or cosine")
	fs.Float64Var(&f.minkowskiP, "minkowski-p", def.MinkowskiP, "exponent of the minkowski metric")
	fs.StringVar(&f.algorithm, "algorithm", def.Algorithm, "auto, brute, kdtree or balltree")
	fs.IntVar(&f.leafSize, "leaf-size", def.LeafSize, "spatial tree leaf size")
	fs.IntVar(&f.workers, "workers", def.Workers, "worker goroutines (0: GOMAXPROCS)")
}

// apply copies every explicitly set flag over run.
func (f *clusterFlags) apply(fs *flag.FlagSet, run *config.Run) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "format":
			run.Format = f.format
		case "fields":
			run.Fields = splitFields(f.fields)
		case "log-level":
			run.LogLevel = f.logLevel
		case "eps-min":
			run.EpsMin = f.epsMin
		case "eps-max":
			run.EpsMax = f.epsMax
		case "pts-min":
			run.PtsMin = f.ptsMin
		case "pts-max":
			run.PtsMax = f.ptsMax
		case "exclude-self":
			run.ExcludeSelf = f.excludeSelf
		case "metric":
			run.Metric = f.metric
		case "minkowski-p":
			run.MinkowskiP = f.minkowskiP
		case "algorithm":
			run.Algorithm = f.algorithm
		case "leaf-size":
			run.LeafSize = f.leafSize
		case "workers":
			run.Workers = f.workers
		}
	})
}

func splitFields(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%v: %w", err, errUsage)
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return errUsage
	}
	return nil
}

func runCluster(_ context.Context, args []string, env Env) error {
	fs := flag.NewFlagSet("cluster", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var f clusterFlags
	f.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	run := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return err
		}
		run = loaded
	}
	f.apply(fs, &run)
	if err := config.Validate(run); err != nil {
		return err
	}

	logger, err := newLogger(env.Stderr, run.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	points, err := input.Load(f.in, input.Format(run.Format), run.Fields, env.Stdin)
	if err != nil {
		return err
	}

	res, err := fuzzydbscan.ClusterVectors(points, run.Clustering(logger))
	if err != nil {
		return err
	}
	logger.Info("clustered",
		zap.String("in", f.in),
		zap.Int("points", res.NumPoints()),
		zap.Int("clusters", res.NumClusters),
		zap.Int("noise", res.Count(fuzzydbscan.Noise)),
	)

	return writeOutput(f.out, env.Stdout, adapter.NewOutput(runID, res))
}

func writeOutput(path string, stdout io.Writer, out adapter.Output) (err error) {
	w := stdout
	if path != "-" {
		file, cerr := os.Create(path)
		if cerr != nil {
			return fmt.Errorf("output: %w", cerr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("output: %w", cerr)
			}
		}()
		w = file
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

func runServe(ctx context.Context, args []string, env Env) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	addr := fs.String("addr", ":8080", "listen address")
	logLevel := fs.String("log-level", config.Default().LogLevel, "debug, info, warn or error")
	maxBody := fs.Int64("max-body", 32<<20, "maximum request body in bytes")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *maxBody <= 0 {
		fmt.Fprintf(env.Stderr, "invalid -max-body %d\n", *maxBody)
		return errUsage
	}

	logger, err := newLogger(env.Stderr, *logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return server.New(logger, server.WithMaxBodyBytes(*maxBody)).ListenAndServe(ctx, *addr)
}
