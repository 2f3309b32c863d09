package local

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lequangloc/benchexec/internal/config"
	"github.com/lequangloc/benchexec/internal/model"
	"github.com/lequangloc/benchexec/internal/output"
	"github.com/lequangloc/benchexec/internal/result"
	"github.com/lequangloc/benchexec/internal/tool"
)

// shAdapter runs a fixed shell script for every task, which keeps the
// tests independent of any real verification tool.
type shAdapter struct {
	script string
}

func (a *shAdapter) Executable() (string, error) { return "/bin/sh", nil }
func (a *shAdapter) Name() string                { return "sh" }
func (a *shAdapter) Version(string) string       { return "" }

func (a *shAdapter) Cmdline(executable string, options []string, tasks []string, propertyFile string, limits tool.Limits) ([]string, error) {
	return []string{executable, "-c", a.script}, nil
}

func (a *shAdapter) DetermineResult(returnCode, returnSignal int, output []string, isTimeout bool) string {
	if isTimeout {
		return "timeout"
	}
	if strings.Contains(strings.Join(output, "\n"), "TRUE") {
		return result.TrueProp
	}
	if returnCode != 0 {
		return fmt.Sprintf("error (%d)", returnCode)
	}
	return result.Unknown
}

func (a *shAdapter) ProgramFiles(executable string) []string { return []string{executable} }

func newBenchmark(t *testing.T, adapter tool.Adapter, timeLimit int, tasks ...string) *model.Benchmark {
	t.Helper()
	outputBase := filepath.Join(t.TempDir(), "test.26-08-25_1430")
	runs := make([]*model.Run, len(tasks))
	for i, task := range tasks {
		runs[i] = &model.Run{Task: task}
	}
	return &model.Benchmark{
		Name:         "test",
		ToolName:     adapter.Name(),
		Tool:         adapter,
		StartTime:    time.Date(2026, 8, 25, 14, 30, 0, 0, time.Local),
		Limits:       tool.Limits{TimeSeconds: timeLimit},
		NumOfThreads: 2,
		RunSets: []*model.RunSet{
			{Name: "default", FullName: "test.default", Runs: runs},
		},
		OutputBase: outputBase,
		LogFolder:  outputBase + ".logfiles" + string(os.PathSeparator),
	}
}

func runBenchmark(t *testing.T, b *model.Benchmark) (int, []map[string]any) {
	t.Helper()
	e := New()
	cfg := &config.Config{MaxLogfileSize: config.DefaultMaxLogfileSize}
	assert.NoError(t, e.Init(cfg, b))

	handler, err := output.NewHandler(b, e.SystemInfo())
	assert.NoError(t, err)

	rc, err := e.ExecuteBenchmark(b, handler)
	assert.NoError(t, err)

	data, err := os.ReadFile(b.OutputBase + ".results.default.json")
	assert.NoError(t, err)
	var m struct {
		Results []map[string]any `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(data, &m))
	return rc, m.Results
}

func TestExecuteBenchmarkClassifiesOutput(t *testing.T) {
	b := newBenchmark(t, &shAdapter{script: "echo TRUE"}, 0, "a.c", "b.c")

	rc, results := runBenchmark(t, b)
	assert.Zero(t, rc)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, result.TrueProp, r["verdict"])
	}
}

func TestExecuteBenchmarkNonZeroExit(t *testing.T) {
	b := newBenchmark(t, &shAdapter{script: "echo failing; exit 3"}, 0, "a.c")

	rc, results := runBenchmark(t, b)
	assert.Zero(t, rc, "a failing run is a result, not an executor failure")
	assert.Len(t, results, 1)
	assert.Equal(t, "error (3)", results[0]["verdict"])
	assert.Equal(t, float64(3), results[0]["exitCode"])
}

func TestExecuteBenchmarkTimeout(t *testing.T) {
	b := newBenchmark(t, &shAdapter{script: "sleep 5; echo TRUE"}, 1, "a.c")

	rc, results := runBenchmark(t, b)
	assert.Zero(t, rc)
	assert.Len(t, results, 1)
	assert.Equal(t, "timeout", results[0]["verdict"])
	assert.Equal(t, true, results[0]["timeout"])
}

func TestExecuteBenchmarkWritesLogFiles(t *testing.T) {
	b := newBenchmark(t, &shAdapter{script: "echo TRUE"}, 0, "a.c")

	_, results := runBenchmark(t, b)
	logFile := results[0]["logFile"].(string)
	data, err := os.ReadFile(logFile)
	assert.NoError(t, err)
	// first line is the executed command, then the captured output
	assert.Contains(t, string(data), "/bin/sh -c")
	assert.Contains(t, string(data), "TRUE")
}

func TestDisabledLogfileSizeCapKeepsOutput(t *testing.T) {
	b := newBenchmark(t, &shAdapter{script: "echo TRUE"}, 0, "a.c")

	e := New()
	assert.NoError(t, e.Init(&config.Config{MaxLogfileSize: 0}, b))
	handler, err := output.NewHandler(b, e.SystemInfo())
	assert.NoError(t, err)

	rc, err := e.ExecuteBenchmark(b, handler)
	assert.NoError(t, err)
	assert.Zero(t, rc)

	data, err := os.ReadFile(handler.LogFile(b.RunSets[0], b.RunSets[0].Runs[0]))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "TRUE")
	assert.NotContains(t, string(data), "truncated")
}

func TestStopPreventsNewRuns(t *testing.T) {
	b := newBenchmark(t, &shAdapter{script: "echo TRUE"}, 0, "a.c")

	e := New()
	assert.NoError(t, e.Init(&config.Config{MaxLogfileSize: 20}, b))
	handler, err := output.NewHandler(b, e.SystemInfo())
	assert.NoError(t, err)

	e.Stop()
	e.Stop() // idempotent

	rc, err := e.ExecuteBenchmark(b, handler)
	assert.NoError(t, err)
	assert.NotZero(t, rc)
}

func TestInitResolvesExecutable(t *testing.T) {
	b := newBenchmark(t, &shAdapter{script: "true"}, 0, "a.c")
	e := New()
	assert.NoError(t, e.Init(&config.Config{MaxLogfileSize: 20}, b))
	assert.Equal(t, "/bin/sh", b.Executable)
}
