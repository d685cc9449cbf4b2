package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/schemoor/dataset"
	"github.com/weiihann/schemoor/harness"
	"github.com/weiihann/schemoor/history"
	"github.com/weiihann/schemoor/report"
	"github.com/weiihann/schemoor/variant"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)

	err := root.Execute()

	return out.String(), err
}

func TestListSelectsGroup(t *testing.T) {
	out, err := execute(t, "list", "--group", "minimum")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)

	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "minimum/"), line)
	}
}

func TestListVerbose(t *testing.T) {
	out, err := execute(t, "list", "-v", "--group", "boolean", "--mode", "raw")
	require.NoError(t, err)

	impls := variant.Registered()
	require.NotEmpty(t, impls)

	assert.Contains(t, out, "CONVENTION")
	assert.Contains(t, out, "boolean/"+impls[0].Variants[0].Name()+"/raw")
	assert.NotContains(t, out, "/compiled")
	assert.NotContains(t, out, "unavailable:")
}

func TestListModeGlob(t *testing.T) {
	out, err := execute(t, "list", "--group", "boolean", "--mode", "comp*")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	for _, id := range lines {
		assert.True(t, strings.HasSuffix(id, "/compiled"), id)
	}

	_, err = execute(t, "list", "--mode", "jit")
	require.Error(t, err)
}

func TestWriteUnavailable(t *testing.T) {
	var buf bytes.Buffer
	writeUnavailable(&buf, map[string]error{
		"zeta":  errors.New("built with nozeta"),
		"alpha": errors.New("native library missing"),
	})

	assert.Equal(t, "\n"+
		"unavailable: alpha (native library missing)\n"+
		"unavailable: zeta (built with nozeta)\n", buf.String())

	buf.Reset()
	writeUnavailable(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestListGenerated(t *testing.T) {
	out, err := execute(t, "list", "--generate", "20", "--group", dataset.Generated)
	require.NoError(t, err)
	assert.Contains(t, out, "generated/")
}

func TestCheckAgrees(t *testing.T) {
	out, err := execute(t, "check", "--generate", "50", "--distribution", "uniform")
	require.NoError(t, err)

	assert.Contains(t, out, "## Outcome Agreement")
	assert.NotContains(t, out, "MISMATCH")

	for _, g := range []string{"boolean", "minimum", "small", "big", "generated"} {
		assert.Contains(t, out, "| "+g+" | ")
	}
}

func TestRunJSON(t *testing.T) {
	out, err := execute(t, "run", "--json",
		"--group", "boolean,minimum",
		"--iterations", "2", "--rounds", "2", "--warmup-rounds", "0",
	)
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, 2, doc.Config.Iterations)
	require.NotEmpty(t, doc.Results)

	for _, r := range doc.Results {
		assert.Contains(t, []string{"boolean", "minimum"}, r.Group)
		assert.True(t, r.Valid, r.ID)
		assert.Equal(t, 4, r.Calls())
	}
}

func TestRunRecordAndCompare(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	args := []string{"run", "--group", "boolean", "--mode", "compiled",
		"--iterations", "1", "--rounds", "3", "--warmup-rounds", "0",
		"--history", db, "--record"}

	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "## Benchmark Results")

	_, err = execute(t, "compare", "--history", db)
	require.Error(t, err, "one recorded run is not enough to compare")

	_, err = execute(t, args...)
	require.NoError(t, err)

	out, err = execute(t, "compare", "--history", db)
	require.NoError(t, err)
	assert.Contains(t, out, "## Comparison against prev")
	assert.Contains(t, out, "boolean/")

	out, err = execute(t, "compare", "--history", db, "--against", "avg", "--n", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "## Comparison against avg")
}

// seedHistory records one run per median, oldest first, each with ten
// samples spread 4% around its median.
func seedHistory(t *testing.T, db string, medians ...float64) {
	t.Helper()

	store, err := history.Open(db)
	require.NoError(t, err)
	defer store.Close()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, median := range medians {
		var samples []float64
		for _, k := range []float64{-4, -3, -2, -1, 0, 0, 1, 2, 3, 4} {
			samples = append(samples, median*(1+k/100))
		}

		r := &harness.Result{
			ID:         "small/jsonschema-v5/validate/compiled",
			Group:      "small",
			Variant:    "jsonschema-v5/validate",
			Mode:       "compiled",
			Valid:      true,
			Iterations: 1,
			Rounds:     len(samples),
			MinNs:      samples[0],
			MaxNs:      samples[len(samples)-1],
			MedianNs:   median,
			SamplesNs:  samples,
		}

		run := history.NewRun(start.Add(time.Duration(i)*time.Minute), harness.DefaultConfig(),
			[]*harness.Result{r})
		require.NoError(t, store.Record(context.Background(), run))
	}
}

func TestCompareFailAbove(t *testing.T) {
	tests := []struct {
		name    string
		medians []float64
		wantErr bool
	}{
		{"significant slowdown", []float64{1000, 1500}, true},
		{"slowdown below threshold", []float64{1000, 1030}, false},
		{"noise", []float64{1000, 1010}, false},
		{"speedup", []float64{1500, 1000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := filepath.Join(t.TempDir(), "history.db")
			seedHistory(t, db, tt.medians...)

			out, err := execute(t, "compare", "--history", db, "--fail-above", "5")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "regressed by 50.0%")
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out, "small/jsonschema-v5/validate/compiled")
		})
	}
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemoor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
iterations: 1
rounds: 1
warmup_rounds: 0
groups: [minimum]
modes: [raw]
`), 0o644))

	out, err := execute(t, "--config", path, "run", "--json")
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.NotEmpty(t, doc.Results)

	for _, r := range doc.Results {
		assert.Equal(t, "minimum", r.Group)
		assert.Equal(t, "raw", r.Mode)
	}
}

func TestFatalStartupErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing fixtures", []string{"list", "--fixtures", filepath.Join(t.TempDir(), "none")}},
		{"bad mode", []string{"list", "--mode", "jit"}},
		{"bad log level", []string{"--log-level", "loud", "list"}},
		{"zero rounds", []string{"run", "--rounds", "0"}},
		{"record without history", []string{"run", "--record"}},
		{"nothing selected", []string{"run", "--group", "nope"}},
		{"compare without history", []string{"compare"}},
		{"bad baseline", []string{"compare", "--history", "x.db", "--against", "best"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = newLogger("info", "xml", &buf)
	require.Error(t, err)
}
