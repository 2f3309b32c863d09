// Package local executes all runs of a benchmark on the local machine.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lequangloc/benchexec/internal/config"
	"github.com/lequangloc/benchexec/internal/model"
	"github.com/lequangloc/benchexec/internal/output"
	"github.com/lequangloc/benchexec/internal/ui"
)

// Executor runs benchmarks locally with bounded parallelism. Stop()
// cancels its context; runs already in flight are killed via their
// process group, queued runs never start.
type Executor struct {
	cfg    *config.Config
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{ctx: ctx, cancel: cancel}
}

// Init resolves the tool's executable and version before any run
// starts, so a missing tool fails the benchmark early.
func (e *Executor) Init(cfg *config.Config, benchmark *model.Benchmark) error {
	e.cfg = cfg
	executable, err := benchmark.Tool.Executable()
	if err != nil {
		return err
	}
	benchmark.Executable = executable
	benchmark.Version = benchmark.Tool.Version(executable)
	log.Debugf("Using %s %s at %s", benchmark.ToolName, benchmark.Version, executable)
	return nil
}

func (e *Executor) SystemInfo() output.SystemInfo {
	return output.CollectSystemInfo()
}

// Stop is idempotent and safe to call from a signal context.
func (e *Executor) Stop() {
	e.cancel()
}

// ExecuteBenchmark runs every run set of the benchmark and reports the
// results to the handler. The returned code is 0 on success and
// non-zero when execution was stopped before all runs completed.
func (e *Executor) ExecuteBenchmark(benchmark *model.Benchmark, handler *output.Handler) (int, error) {
	names := make([]string, len(benchmark.RunSets))
	totals := make([]int, len(benchmark.RunSets))
	for i, rs := range benchmark.RunSets {
		names[i] = rs.FullName
		totals[i] = len(rs.Runs)
	}
	progress := ui.NewProgress(names, totals)
	progress.Start()
	defer progress.Stop()

	sem := semaphore.NewWeighted(int64(benchmark.NumOfThreads))

	for _, runSet := range benchmark.RunSets {
		if e.ctx.Err() != nil {
			break
		}
		log.Infof("Executing run set %s (%d runs)", runSet.FullName, len(runSet.Runs))

		var g errgroup.Group
		for _, run := range runSet.Runs {
			run := run
			g.Go(func() error {
				if err := sem.Acquire(e.ctx, 1); err != nil {
					return nil // stopped before this run started
				}
				defer sem.Release(1)

				res := e.executeRun(benchmark, runSet, run, handler)
				handler.AddRunResult(runSet, res)
				progress.MarkRunDone(runSet.FullName)
				return nil
			})
		}
		g.Wait()

		if err := handler.FinishRunSet(runSet); err != nil {
			return 1, err
		}
	}

	if e.ctx.Err() != nil {
		return 1, nil
	}
	return 0, nil
}

func (e *Executor) executeRun(benchmark *model.Benchmark, runSet *model.RunSet, run *model.Run, handler *output.Handler) *model.RunResult {
	res := &model.RunResult{Task: run.Task}

	cmdline, err := benchmark.Tool.Cmdline(
		benchmark.Executable, runSet.Options, []string{run.Task}, runSet.PropertyFile, benchmark.Limits)
	if err != nil {
		// classification failure for one run never aborts the benchmark
		res.Verdict = fmt.Sprintf("error (%v)", err)
		return res
	}
	res.Cmdline = cmdline

	runCtx := e.ctx
	if benchmark.Limits.TimeSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(e.ctx, time.Duration(benchmark.Limits.TimeSeconds)*time.Second)
		defer cancel()
	}

	logPath := handler.LogFile(runSet, run)
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		res.Verdict = fmt.Sprintf("error (cannot create log file: %v)", err)
		return res
	}
	defer logFile.Close()
	res.LogFile = logPath

	fmt.Fprintf(logFile, "%s\n\n", shellquote.Join(cmdline...))

	// a non-positive limit disables truncation
	maxBytes := e.cfg.MaxLogfileSize * 1024 * 1024
	if e.cfg.MaxLogfileSize <= 0 {
		maxBytes = int(^uint(0) >> 1)
	}

	var buf bytes.Buffer
	sink := io.MultiWriter(
		&limitedWriter{w: logFile, max: maxBytes},
		&limitedWriter{w: &buf, max: maxBytes},
	)

	log.Debugf("Executing %s", shellquote.Join(cmdline...))

	cmd := exec.CommandContext(runCtx, cmdline[0], cmdline[1:]...)
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// on cancel, kill the whole process group; children inheriting the
	// output pipe must not keep Wait blocked past the limit
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	waitErr := cmd.Run()
	res.WallTime = time.Since(start)

	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			ws := exitErr.Sys().(syscall.WaitStatus)
			if ws.Signaled() {
				res.Signal = int(ws.Signal())
			} else {
				res.ExitCode = ws.ExitStatus()
			}
			killProcessGroup(cmd)
		default:
			res.Verdict = fmt.Sprintf("error (%v)", waitErr)
			return res
		}
	}

	res.Timeout = errors.Is(runCtx.Err(), context.DeadlineExceeded)
	if errors.Is(e.ctx.Err(), context.Canceled) {
		res.Verdict = "aborted by user"
		return res
	}

	lines := strings.Split(buf.String(), "\n")
	res.Verdict = benchmark.Tool.DetermineResult(res.ExitCode, res.Signal, lines, res.Timeout)
	log.Debugf("Run %s finished: %s (exit %d, signal %d, %s)",
		run.Task, res.Verdict, res.ExitCode, res.Signal, res.WallTime.Round(time.Millisecond))
	return res
}

// killProcessGroup reaps children the tool may have spawned; the tool
// process itself was already killed by CommandContext.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	syscall.Kill(-pid, syscall.SIGTERM)
	time.AfterFunc(5*time.Second, func() {
		syscall.Kill(-pid, syscall.SIGKILL)
	})
}

// limitedWriter discards everything past max bytes, noting the
// truncation once.
type limitedWriter struct {
	w         io.Writer
	n         int
	max       int
	truncated bool
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if lw.truncated {
		return len(p), nil
	}
	if lw.n+len(p) > lw.max {
		remaining := lw.max - lw.n
		if remaining > 0 {
			lw.w.Write(p[:remaining])
			lw.n += remaining
		}
		fmt.Fprintf(lw.w, "\n[log truncated at %d bytes]\n", lw.max)
		lw.truncated = true
		return len(p), nil
	}
	n, err := lw.w.Write(p)
	lw.n += n
	return n, err
}
