// Package core drives the execution of whole benchmarks: it validates
// the configuration, builds the benchmark model for each definition
// file, delegates the actual runs to an executor and persists the
// results.
package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lequangloc/benchexec/internal/config"
	"github.com/lequangloc/benchexec/internal/local"
	"github.com/lequangloc/benchexec/internal/model"
	"github.com/lequangloc/benchexec/internal/output"
	"github.com/lequangloc/benchexec/internal/vcs"
)

// Executor runs all runs of one benchmark. The default implementation
// executes on the local machine; a delegating implementation (for
// example one that ships runs to a cluster) can replace it without
// touching anything else.
type Executor interface {
	Init(cfg *config.Config, benchmark *model.Benchmark) error
	ExecuteBenchmark(benchmark *model.Benchmark, handler *output.Handler) (int, error)
	SystemInfo() output.SystemInfo
	Stop()
}

// ErrOutputExists is returned when a benchmark's log folder already
// exists. This aborts the whole invocation; silently overwriting
// previous results is never acceptable.
var ErrOutputExists = errors.New("output directory already exists, will not overwrite existing results")

// BenchExec executes a batch of benchmark-definition files
// sequentially. The interrupted flag is the only mutable state shared
// with the asynchronous signal path; the executor is published through
// an atomic pointer so that Stop can forward to it at any time.
type BenchExec struct {
	cfg      *config.Config
	executor atomic.Pointer[Executor]

	// NewExecutor creates the executor to use; tests and delegating
	// deployments override it.
	NewExecutor func() Executor

	interrupted atomic.Bool
}

func New(cfg *config.Config) *BenchExec {
	return &BenchExec{
		cfg:         cfg,
		NewExecutor: func() Executor { return local.New() },
	}
}

// Start validates the configuration and executes every benchmark file
// in the order given. The returned code is the logical OR of the
// per-file codes, so a partial failure stays visible to the shell. A
// non-nil error means execution was aborted.
func (b *BenchExec) Start() (int, error) {
	var missing []string
	for _, file := range b.cfg.Files {
		info, err := os.Stat(file)
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, file)
		}
	}
	if len(missing) > 0 {
		return 1, fmt.Errorf("benchmark files do not exist: %s", strings.Join(missing, ", "))
	}

	executor := b.NewExecutor()
	b.executor.Store(&executor)

	returnCode := 0
	for _, file := range b.cfg.Files {
		if b.interrupted.Load() {
			log.Infof("Skipping benchmark %s after interrupt", file)
			break
		}
		log.Debugf("Benchmark %s is started.", file)
		rc, err := b.executeBenchmark(file, executor)
		returnCode |= rc
		if err != nil {
			return returnCode | 1, err
		}
		log.Debugf("Benchmark %s is done.", file)
	}

	log.Debug("I think my job is done. Have a nice day!")
	return returnCode, nil
}

func (b *BenchExec) executeBenchmark(file string, executor Executor) (returnCode int, err error) {
	startTime := b.cfg.StartTime
	if startTime.IsZero() {
		startTime = time.Now()
	}

	benchmark, err := model.Load(file, b.cfg, startTime)
	if err != nil {
		return 1, err
	}

	// We refuse to overwrite existing results. This is a hard stop for
	// the whole invocation, not a per-benchmark skip.
	if _, statErr := os.Stat(benchmark.LogFolder); statErr == nil {
		return 1, fmt.Errorf("%w: %s", ErrOutputExists, benchmark.LogFolder)
	}

	if err := executor.Init(b.cfg, benchmark); err != nil {
		return 1, err
	}

	handler, err := output.NewHandler(benchmark, executor.SystemInfo())
	if err != nil {
		return 1, err
	}

	log.Debugf("Benchmarking %s consisting of %d run sets.", file, len(benchmark.RunSets))

	returnCode, err = func() (int, error) {
		// Remove the log folder if it ended up empty, on every exit
		// path. Failure (folder non-empty, already gone) is irrelevant.
		defer os.Remove(benchmark.LogFolder)
		return executor.ExecuteBenchmark(benchmark, handler)
	}()
	if err != nil {
		return returnCode, err
	}

	if b.cfg.Commit && !b.interrupted.Load() {
		message := b.cfg.CommitMessage + "\n\n" + handler.Description()
		if err := vcs.AddFilesToGitRepository(b.cfg.OutputPath, handler.AllCreatedFiles(), message); err != nil {
			log.Warnf("Could not add files to git repository: %v", err)
		}
	}
	return returnCode, nil
}

// Stop records the interrupt and forwards it to the executor. It is
// idempotent, does not block, and only guarantees that no new
// benchmark file will begin; runs in flight are the executor's
// business.
func (b *BenchExec) Stop() {
	b.interrupted.Store(true)
	if executor := b.executor.Load(); executor != nil {
		(*executor).Stop()
	}
}

// Interrupted reports whether Stop has been called.
func (b *BenchExec) Interrupted() bool {
	return b.interrupted.Load()
}
