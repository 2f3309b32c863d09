package tool

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lequangloc/benchexec/internal/result"
)

// Symbiotic instruments and slices C programs before handing them to
// KLEE, so a whole LLVM toolchain has to travel with the executable.
type symbioticAdapter struct{}

func init() {
	register("symbiotic", func() Adapter { return &symbioticAdapter{} })
}

func (s *symbioticAdapter) Executable() (string, error) {
	return FindExecutable("symbiotic")
}

func (s *symbioticAdapter) Name() string { return "symbiotic" }

func (s *symbioticAdapter) Version(executable string) string {
	return VersionFromTool(executable)
}

func (s *symbioticAdapter) Cmdline(executable string, options []string, tasks []string, propertyFile string, limits Limits) ([]string, error) {
	task, err := singleTask(tasks)
	if err != nil {
		return nil, err
	}
	args := append([]string{executable}, options...)
	if propertyFile != "" {
		args = append(args, "--prp="+propertyFile)
	}
	return append(args, task), nil
}

// Timeout wins over any text in the output; the textual markers are
// exact matches on the trimmed output, not substring scans.
func (s *symbioticAdapter) DetermineResult(returnCode, returnSignal int, output []string, isTimeout bool) string {
	if isTimeout {
		return "timeout"
	}

	out := strings.TrimSpace(strings.Join(output, "\n"))
	switch out {
	case "TRUE":
		return result.TrueProp
	case "UNKNOWN":
		return result.Unknown
	case "FALSE":
		return result.FalseReach
	}
	if returnCode != 0 {
		return fmt.Sprintf("Failed with returncode: %d (signal: %d)", returnCode, returnSignal)
	}
	if out == "" {
		return "error (no output)"
	}
	return "error (unknown)"
}

func (s *symbioticAdapter) ProgramFiles(executable string) []string {
	dir := filepath.Dir(executable)
	aux := []string{
		"build-fix.sh",
		"path_to_ml.pl",
		"bin/klee",
		"bin/opt",
		"bin/clang",
		"bin/llvm-link",
		"bin/llvm-slicer",
		"lib.c",
		"lib/libllvmdg.so",
		"lib/LLVMsvc15.so",
		"lib/klee/runtime/kleeRuntimeIntrinsic.bc",
		"lib32/klee/runtime/kleeRuntimeIntrinsic.bc",
	}
	paths := make([]string, 0, len(aux)+1)
	paths = append(paths, executable)
	for _, f := range aux {
		paths = append(paths, filepath.Join(dir, f))
	}
	return paths
}
