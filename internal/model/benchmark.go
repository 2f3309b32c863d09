// Package model holds the in-memory representation of a parsed
// benchmark definition: the tool to run, the run sets derived from the
// run definitions and task sets, and the declared resource limits.
package model

import (
	"time"

	"github.com/lequangloc/benchexec/internal/tool"
)

// Run is one execution of one tool on one input file. It is transient;
// it exists only for the duration of one execution and its result.
type Run struct {
	// Task is the input file of this run.
	Task string
}

// RunSet is a group of runs produced by applying one run definition
// across the selected task sets.
type RunSet struct {
	// Name is the run definition name; FullName prepends the
	// benchmark name for display and result-file naming.
	Name     string
	FullName string

	// Options are extra command-line options for the tool.
	Options []string

	PropertyFile string

	Runs []*Run
}

// Benchmark is one parsed benchmark definition. It owns its run sets
// and is immutable after construction, except for Executable and
// Version which the executor fills in during Init.
type Benchmark struct {
	Name     string
	ToolName string
	Tool     tool.Adapter

	// Executable and Version are resolved by the executor before any
	// run starts.
	Executable string
	Version    string

	StartTime    time.Time
	Limits       tool.Limits
	NumOfThreads int

	RunSets []*RunSet

	// OutputBase is the prefix of all result files of this benchmark;
	// LogFolder is the directory that receives the per-run logs. The
	// log folder must not exist before execution starts.
	OutputBase string
	LogFolder  string
}

// RunResult is the raw and classified outcome of one run.
type RunResult struct {
	Task     string
	Cmdline  []string
	ExitCode int
	Signal   int
	WallTime time.Duration
	Timeout  bool
	Verdict  string
	LogFile  string
}
