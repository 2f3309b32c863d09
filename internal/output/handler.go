// Package output collects run results and persists them as files next
// to the per-run logs.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/lequangloc/benchexec/internal/model"
)

// SystemInfo describes the machine the benchmark ran on.
type SystemInfo struct {
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Hostname string `json:"hostname"`
	CPUs     int    `json:"cpus"`
}

// CollectSystemInfo gathers SystemInfo for the local machine.
func CollectSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Hostname: hostname,
		CPUs:     runtime.NumCPU(),
	}
}

func (s SystemInfo) String() string {
	return fmt.Sprintf("%s/%s, host %s, %d CPUs", s.OS, s.Arch, s.Hostname, s.CPUs)
}

// Handler receives results from the executor and writes the result
// files of one benchmark. It is safe for concurrent use.
type Handler struct {
	benchmark *model.Benchmark
	sysInfo   SystemInfo

	mu      sync.Mutex
	created []string
	results map[string][]*model.RunResult
}

// NewHandler creates the benchmark's log folder and returns a handler
// for its results. The caller must have verified beforehand that the
// log folder does not exist yet.
func NewHandler(benchmark *model.Benchmark, sysInfo SystemInfo) (*Handler, error) {
	if err := os.MkdirAll(benchmark.LogFolder, 0o755); err != nil {
		return nil, fmt.Errorf("creating log folder: %w", err)
	}
	return &Handler{
		benchmark: benchmark,
		sysInfo:   sysInfo,
		results:   make(map[string][]*model.RunResult),
	}, nil
}

// LogFile returns the path of the log file for one run of a run set.
func (h *Handler) LogFile(runSet *model.RunSet, run *model.Run) string {
	name := runSet.Name + "." + filepath.Base(run.Task) + ".log"
	return filepath.Join(h.benchmark.LogFolder, name)
}

// AddRunResult records the outcome of one run.
func (h *Handler) AddRunResult(runSet *model.RunSet, res *model.RunResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results[runSet.FullName] = append(h.results[runSet.FullName], res)
	if res.LogFile != "" {
		h.created = append(h.created, res.LogFile)
	}
}

type manifest struct {
	Version   int              `json:"version"`
	Benchmark string           `json:"benchmark"`
	RunSet    string           `json:"runset"`
	Tool      string           `json:"tool"`
	ToolVer   string           `json:"toolVersion,omitempty"`
	StartedAt time.Time        `json:"startedAt"`
	System    SystemInfo       `json:"system"`
	Limits    manifestLimits   `json:"limits"`
	Results   []manifestResult `json:"results"`
}

type manifestLimits struct {
	TimeSeconds int `json:"timeSeconds,omitempty"`
	MemoryMB    int `json:"memoryMb,omitempty"`
	Cores       int `json:"cores,omitempty"`
}

type manifestResult struct {
	Task     string `json:"task"`
	Verdict  string `json:"verdict"`
	ExitCode int    `json:"exitCode"`
	Signal   int    `json:"signal,omitempty"`
	WallTime string `json:"wallTime"`
	Timeout  bool   `json:"timeout,omitempty"`
	LogFile  string `json:"logFile"`
}

// FinishRunSet writes the result file for one completed run set.
func (h *Handler) FinishRunSet(runSet *model.RunSet) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b := h.benchmark
	m := manifest{
		Version:   1,
		Benchmark: b.Name,
		RunSet:    runSet.Name,
		Tool:      b.ToolName,
		ToolVer:   b.Version,
		StartedAt: b.StartTime,
		System:    h.sysInfo,
		Limits: manifestLimits{
			TimeSeconds: b.Limits.TimeSeconds,
			MemoryMB:    b.Limits.MemoryMB,
			Cores:       b.Limits.Cores,
		},
		Results: lo.Map(h.results[runSet.FullName], func(r *model.RunResult, _ int) manifestResult {
			return manifestResult{
				Task:     r.Task,
				Verdict:  r.Verdict,
				ExitCode: r.ExitCode,
				Signal:   r.Signal,
				WallTime: r.WallTime.Round(time.Millisecond).String(),
				Timeout:  r.Timeout,
				LogFile:  r.LogFile,
			}
		}),
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	path := b.OutputBase + ".results." + runSet.Name + ".json"
	if err := AtomicWrite(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results for %s: %w", runSet.FullName, err)
	}
	h.created = append(h.created, path)
	return nil
}

// AllCreatedFiles returns every file this handler has written so far.
func (h *Handler) AllCreatedFiles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.created...)
}

// Description summarizes the benchmark for the commit message.
func (h *Handler) Description() string {
	b := h.benchmark
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tool: %s", b.ToolName)
	if b.Version != "" {
		fmt.Fprintf(&sb, " %s", b.Version)
	}
	fmt.Fprintf(&sb, "\nSystem: %s", h.sysInfo)
	if b.Limits.TimeSeconds > 0 {
		fmt.Fprintf(&sb, "\nTime limit: %ds", b.Limits.TimeSeconds)
	}
	if b.Limits.MemoryMB > 0 {
		fmt.Fprintf(&sb, "\nMemory limit: %dMB", b.Limits.MemoryMB)
	}
	return sb.String()
}
