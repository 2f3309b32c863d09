package tool

import (
	"path/filepath"
	"strings"

	"github.com/lequangloc/benchexec/internal/result"
)

// AProVE proves termination of programs. It prints YES/NO answers and
// has no usable --version flag.
type aproveAdapter struct{}

func init() {
	register("aprove", func() Adapter { return &aproveAdapter{} })
}

func (a *aproveAdapter) Executable() (string, error) {
	return FindExecutable("AProVE.sh")
}

func (a *aproveAdapter) Name() string { return "AProVE" }

func (a *aproveAdapter) Version(executable string) string { return "" }

func (a *aproveAdapter) Cmdline(executable string, options []string, tasks []string, propertyFile string, limits Limits) ([]string, error) {
	task, err := singleTask(tasks)
	if err != nil {
		return nil, err
	}
	args := append([]string{executable}, options...)
	return append(args, task), nil
}

// Marker order matters: YES before TRUE before FALSE before NO.
func (a *aproveAdapter) DetermineResult(returnCode, returnSignal int, output []string, isTimeout bool) string {
	joined := strings.Join(output, "\n")
	switch {
	case strings.Contains(joined, "YES"):
		return result.TrueProp
	case strings.Contains(joined, "TRUE"):
		return result.TrueProp
	case strings.Contains(joined, "FALSE"):
		return result.FalseTermination
	case strings.Contains(joined, "NO"):
		return result.FalseTermination
	default:
		return result.Unknown
	}
}

func (a *aproveAdapter) ProgramFiles(executable string) []string {
	dir := filepath.Dir(executable)
	return []string{
		executable,
		filepath.Join(dir, "aprove.jar"),
		filepath.Join(dir, "bin"),
		filepath.Join(dir, "newstrategy.strategy"),
	}
}
