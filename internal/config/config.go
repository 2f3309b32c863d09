package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultOutputPath is the result prefix used when -o is not given.
const DefaultOutputPath = "results/"

// DefaultMaxLogfileSize is the per-run log size cap in MB.
const DefaultMaxLogfileSize = 20

// Config is the immutable snapshot of the parsed command-line options.
// It is created once at startup and never mutated afterwards, so it is
// safe to share across goroutines.
type Config struct {
	// Files lists the benchmark-definition files, in execution order.
	Files []string

	// SelectedRunDefinitions and SelectedTaskSets filter the benchmark
	// model; empty means "all".
	SelectedRunDefinitions []string
	SelectedTaskSets       []string

	// Name overrides the benchmark name derived from the file name.
	Name string

	// OutputPath is the prefix for all generated result files. If it
	// names a directory it always ends with a path separator.
	OutputPath string

	// Limits. Zero means "use the value from the benchmark
	// definition", -1 disables the limit.
	TimeLimit   int // seconds per run
	MemoryLimit int // MB per run
	CoreLimit   int // CPU cores per run

	// NumOfThreads bounds how many runs execute in parallel.
	NumOfThreads int

	// MaxLogfileSize caps each run's log file, in MB. Zero or a
	// negative value disables the cap.
	MaxLogfileSize int

	Commit        bool
	CommitMessage string

	// StartTime is the declared start of the benchmark; the zero value
	// means "use the wall clock when the benchmark is built".
	StartTime time.Time

	Debug bool
}

// startTimeLayout is the accepted format of --startTime.
const startTimeLayout = "2006-01-02 15:04"

// ParseStartTime parses a timestamp in the "YYYY-MM-DD HH:MM" format.
func ParseStartTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(startTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: expected format %q", s, startTimeLayout)
	}
	return t, nil
}

// NormalizeOutputPath cleans path and, when it names an existing
// directory, appends a path separator so it can be used as a plain
// string prefix for result files.
func NormalizeOutputPath(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Clean(path) + string(os.PathSeparator)
	}
	return path
}

// ExpandArgsFiles replaces every "@file" argument with the
// whitespace-separated arguments read from that file. Expansion is not
// recursive.
func ExpandArgsFiles(args []string) ([]string, error) {
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.HasPrefix(arg, "@") {
			expanded = append(expanded, arg)
			continue
		}
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("reading arguments from %s: %w", arg[1:], err)
		}
		expanded = append(expanded, strings.Fields(string(data))...)
	}
	return expanded, nil
}
