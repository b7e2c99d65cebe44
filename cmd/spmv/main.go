// Command spmv benchmarks sparse matrix × dense vector multiplication on a
// Matrix Market file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/hupe1980/spmv"
	"github.com/hupe1980/spmv/blobstore"
	minioblob "github.com/hupe1980/spmv/blobstore/minio"
	s3blob "github.com/hupe1980/spmv/blobstore/s3"
	"github.com/hupe1980/spmv/codec"
	"github.com/hupe1980/spmv/history"
	"github.com/hupe1980/spmv/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	input      string
	threads    int
	warmup     int
	runs       int
	verbose    bool
	quiet      bool
	output     string
	format     string
	policy     string
	seed       uint64
	configFile string
	history    string
	help       bool
	version    bool
}

func newFlagSet(stderr io.Writer, f *flags) *flag.FlagSet {
	fs := flag.NewFlagSet("spmv", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.input, "i", "", "Input file containing the sparse matrix in Matrix Market format (required)")
	fs.IntVar(&f.threads, "t", 0, "Number of threads to use, 0 = GOMAXPROCS")
	fs.IntVar(&f.warmup, "w", 5, "Number of warm-up runs before benchmarking")
	fs.IntVar(&f.runs, "r", 10, "Number of benchmark runs")
	fs.BoolVar(&f.verbose, "v", false, "Enable DEBUG logging level")
	fs.BoolVar(&f.quiet, "q", false, "Enable only ERROR logging level")
	fs.StringVar(&f.output, "o", "", "Write the report to this file, - for stdout")
	fs.StringVar(&f.format, "format", "", "Report format: go-json, json, yaml (default from -o extension)")
	fs.StringVar(&f.policy, "policy", "", "Row scheduling: static[,chunk], dynamic[,chunk], guided[,min]")
	fs.Uint64Var(&f.seed, "seed", 0, "Seed of the input vector, 0 = random")
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	fs.StringVar(&f.history, "history", "", "Append the run to this sqlite history database")
	fs.BoolVar(&f.help, "h", false, "Show this help message")
	fs.BoolVar(&f.version, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "spmv - sparse matrix x dense vector benchmark\n\n")
		fmt.Fprintf(stderr, "Usage: spmv -i <matrix_file> [-t num_threads] [-w warmup] [-r runs] [-v | -q]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  spmv -i matrix.mtx -t 8 -r 50\n")
		fmt.Fprintf(stderr, "  spmv -i matrix.mtx.zst -policy dynamic,64 -o results/matrix.json\n")
		fmt.Fprintf(stderr, "  spmv -config spmv.yaml\n")
		fmt.Fprintf(stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(stderr, "  SPMV_INPUT, SPMV_THREADS, SPMV_POLICY, SPMV_WARMUP, SPMV_RUNS, SPMV_SEED\n")
		fmt.Fprintf(stderr, "  SPMV_OUTPUT, SPMV_FORMAT, SPMV_HISTORY, SPMV_LOG_LEVEL, SPMV_LOG_FORMAT\n")
		fmt.Fprintf(stderr, "  SPMV_S3_BUCKET, SPMV_S3_PREFIX, SPMV_S3_REGION\n")
		fmt.Fprintf(stderr, "  SPMV_MINIO_ENDPOINT, SPMV_MINIO_BUCKET, SPMV_MINIO_ACCESS_KEY, SPMV_MINIO_SECRET_KEY\n")
	}
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f flags
	fs := newFlagSet(stderr, &f)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if f.help {
		fs.Usage()
		return exitOK
	}
	if f.version {
		fmt.Fprintf(stdout, "spmv version %s (commit: %s)\n", version, commit)
		return exitOK
	}
	if f.verbose && f.quiet {
		fmt.Fprintln(stderr, "Error: Options -v (verbose) and -q (quiet) cannot be used together.")
		return exitUsage
	}

	cfg, err := config.Load(f.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFail
	}
	applyFlags(fs, &f, cfg)

	if cfg.Input == "" {
		fmt.Fprintln(stderr, "Error: Input matrix file (-i) is required.")
		fs.Usage()
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	logger := newLogger(stderr, cfg.Log)
	rc := spmv.NewResourceController(cfg.Limits.Resource())

	policy, err := spmv.ParsePolicy(cfg.Policy)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	opts := []spmv.Option{
		spmv.WithThreads(cfg.Threads),
		spmv.WithPolicy(policy),
		spmv.WithWarmup(cfg.Warmup),
		spmv.WithRuns(cfg.Runs),
		spmv.WithSeed(cfg.Seed),
		spmv.WithRange(cfg.RandMin, cfg.RandMax),
		spmv.WithLogger(logger),
		spmv.WithResourceController(rc),
	}
	if cfg.ArenaCapacity > 0 {
		opts = append(opts, spmv.WithArenaCapacity(int(cfg.ArenaCapacity)))
	}
	if !cfg.ExpandSymmetric {
		opts = append(opts, spmv.WithoutSymmetricExpansion())
	}

	report, err := spmv.Run(ctx, cfg.Input, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", spmv.LastErrorDetail())
		return exitFail
	}
	fmt.Fprintln(stdout, report.String())

	c := pickCodec(cfg.Output)
	if cfg.Output.Path == "-" {
		data, err := report.Encode(c)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFail
		}
		fmt.Fprintln(stdout, string(data))
	}

	sinks, err := buildSinks(ctx, cfg.Output)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFail
	}
	if len(sinks) > 0 {
		if err := spmv.Publish(ctx, report, c, sinks, spmv.WithLogger(logger), spmv.WithResourceController(rc)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFail
		}
	}

	if cfg.History != "" {
		if err := appendHistory(ctx, stderr, cfg.History, report); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFail
		}
	}
	return exitOK
}

// applyFlags lets explicitly set flags win over file and environment.
func applyFlags(fs *flag.FlagSet, f *flags, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "i":
			cfg.Input = f.input
		case "t":
			cfg.Threads = f.threads
		case "w":
			cfg.Warmup = f.warmup
		case "r":
			cfg.Runs = f.runs
		case "o":
			cfg.Output.Path = f.output
			if c, ok := codec.ByExtension(f.output); ok && !isSet(fs, "format") {
				cfg.Output.Format = c.Name()
			}
		case "format":
			cfg.Output.Format = f.format
		case "policy":
			cfg.Policy = f.policy
		case "seed":
			cfg.Seed = f.seed
		case "history":
			cfg.History = f.history
		case "v":
			cfg.Log.Level = "debug"
		case "q":
			cfg.Log.Level = "error"
		}
	})
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

func newLogger(w io.Writer, cfg config.LogConfig) *spmv.Logger {
	level, _ := spmv.ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return spmv.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return spmv.NewLogger(slog.NewTextHandler(w, opts))
}

func pickCodec(out config.OutputConfig) codec.Codec {
	if c, ok := codec.ByName(out.Format); ok {
		return c
	}
	return codec.Default
}

func buildSinks(ctx context.Context, out config.OutputConfig) ([]spmv.Sink, error) {
	var sinks []spmv.Sink

	if out.Path != "" && out.Path != "-" {
		sinks = append(sinks, spmv.Sink{
			Name:   "file",
			Store:  blobstore.NewLocalStore(filepath.Dir(out.Path)),
			Object: filepath.Base(out.Path),
		})
	}

	if out.S3.Enabled() {
		var loadOpts []func(*awsconfig.LoadOptions) error
		if out.S3.Region != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(out.S3.Region))
		}
		store, err := s3blob.New(ctx, out.S3.Bucket, out.S3.Prefix, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		sinks = append(sinks, spmv.Sink{Name: "s3", Store: store})
	}

	if out.MinIO.Enabled() {
		m := out.MinIO
		store, err := minioblob.Dial(m.Endpoint, m.AccessKey, m.SecretKey, m.Secure, m.Bucket, m.Prefix)
		if err != nil {
			return nil, fmt.Errorf("minio sink: %w", err)
		}
		sinks = append(sinks, spmv.Sink{Name: "minio", Store: store})
	}

	return sinks, nil
}

func appendHistory(ctx context.Context, w io.Writer, path string, report *spmv.Report) error {
	h, err := history.Open(path)
	if err != nil {
		return err
	}
	defer h.Close()

	rec := report.Record()
	if err := h.Append(ctx, rec); err != nil {
		return err
	}

	recent, err := h.List(ctx, history.Query{Fingerprint: rec.Fingerprint, Threads: rec.Threads, Policy: rec.Policy, Limit: 2})
	if err != nil || len(recent) < 2 {
		return err
	}
	prev := recent[1]
	if prev.Mean > 0 {
		delta := float64(report.Mean-prev.Mean) / float64(prev.Mean) * 100
		fmt.Fprintf(w, "previous run %s: mean=%dus (%s%%)\n", prev.RunID, prev.Mean, strconv.FormatFloat(delta, 'f', 1, 64))
	}
	return nil
}
