package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/spmv"
	"github.com/hupe1980/spmv/codec"
	"github.com/hupe1980/spmv/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrix = `%%MatrixMarket matrix coordinate real general
2 2 3
1 1 1.5
2 1 -2
2 2 4
`

func writeMatrix(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.mtx")
	require.NoError(t, os.WriteFile(path, []byte(matrix), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "Usage: spmv -i <matrix_file>")

	code, stdout, _ := runCLI(t, "-version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "spmv version")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"missing input", nil, "Input matrix file (-i) is required."},
		{"verbose and quiet", []string{"-i", "x.mtx", "-v", "-q"}, "-v (verbose) and -q (quiet) cannot be used together"},
		{"zero runs", []string{"-i", "x.mtx", "-r", "0"}, "runs must be >= 1"},
		{"negative warmup", []string{"-i", "x.mtx", "-w", "-1"}, "warmup must be >= 0"},
		{"negative threads", []string{"-i", "x.mtx", "-t", "-1"}, "threads must be >= 0"},
		{"bad policy", []string{"-i", "x.mtx", "-policy", "fifo"}, "invalid policy"},
		{"unknown flag", []string{"-x"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, tt.msg)
		})
	}
}

func TestRun_MissingFile(t *testing.T) {
	code, _, stderr := runCLI(t, "-q", "-i", filepath.Join(t.TempDir(), "absent.mtx"))
	assert.Equal(t, exitFail, code)
	assert.Contains(t, stderr, "Error: ")
	assert.Contains(t, stderr, "absent.mtx")
}

func TestRun_WritesReport(t *testing.T) {
	in := writeMatrix(t)
	out := filepath.Join(t.TempDir(), "results", "m.yaml")
	db := filepath.Join(t.TempDir(), "runs.db")

	code, stdout, stderr := runCLI(t, "-q", "-i", in, "-t", "2", "-w", "0", "-r", "3",
		"-policy", "guided,1", "-seed", "9", "-o", out, "-history", db)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "2x2 nnz=3 threads=2 policy=guided,1 runs=3")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	report, err := spmv.DecodeReport(codec.YAML{}, data)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Runs)
	assert.Len(t, report.Samples, 3)
	assert.Equal(t, uint64(9), report.Seed)

	h, err := history.Open(db)
	require.NoError(t, err)
	defer h.Close()
	rec, err := h.Get(context.Background(), report.RunID)
	require.NoError(t, err)
	assert.Equal(t, report.Samples, rec.Samples)
}

func TestRun_Stdout(t *testing.T) {
	in := writeMatrix(t)
	code, stdout, _ := runCLI(t, "-q", "-i", in, "-r", "1", "-o", "-", "-format", "json")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, `"samples"`)
	assert.Contains(t, stdout, `"mean"`)
}

func TestRun_ConfigFile(t *testing.T) {
	in := writeMatrix(t)
	cfgPath := filepath.Join(t.TempDir(), "spmv.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input: "+in+"\nruns: 2\nwarmup: 0\nlog:\n  level: error\n"), 0o600))

	code, stdout, stderr := runCLI(t, "-config", cfgPath, "-r", "4")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "runs=4", "flags override the file")
}

func TestRun_VerboseLogs(t *testing.T) {
	in := writeMatrix(t)
	code, _, stderr := runCLI(t, "-v", "-i", in, "-r", "1")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "matrix loaded")
	assert.Contains(t, stderr, "level=DEBUG")
}
