package tool

import (
	"fmt"
	"os/exec"
	"strings"
)

// Limits carries the resource limits declared for a benchmark so that
// adapters can reflect them on the command line if the tool supports it.
// Enforcement itself is the executor's job, not the adapter's.
type Limits struct {
	TimeSeconds int
	MemoryMB    int
	Cores       int
}

// Adapter is the capability contract every supported tool implements.
// Instances are stateless; they carry no identity beyond the tool name.
type Adapter interface {
	// Executable locates the binary to run. It fails when the tool is
	// not installed on the search path.
	Executable() (string, error)

	// Name returns the human-readable tool name.
	Name() string

	// Version returns a best-effort version string for the given
	// executable. Tools without a reliable mechanism return "".
	Version(executable string) string

	// Cmdline builds the exact argv for one invocation. It returns an
	// error when given more tasks than the tool supports; most tools
	// accept exactly one task per invocation.
	Cmdline(executable string, options []string, tasks []string, propertyFile string, limits Limits) ([]string, error)

	// DetermineResult classifies the raw outcome of one run into a
	// verdict from the result package or a free-text error string.
	// It is a pure function of its arguments.
	DetermineResult(returnCode, returnSignal int, output []string, isTimeout bool) string

	// ProgramFiles declares auxiliary files and directories that must
	// travel with the executable when runs happen in an isolated or
	// remote environment.
	ProgramFiles(executable string) []string
}

// FindExecutable resolves name on PATH.
func FindExecutable(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("tool not found: could not locate %q on PATH", name)
	}
	return path, nil
}

// VersionFromTool runs "executable --version" and returns the first
// output line, or "" if the tool cannot be queried.
func VersionFromTool(executable string) string {
	out, err := exec.Command(executable, "--version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}

func singleTask(tasks []string) (string, error) {
	if len(tasks) != 1 {
		return "", fmt.Errorf("expected exactly one input file, got %d", len(tasks))
	}
	return tasks[0], nil
}
