package tool

import (
	"strings"

	"github.com/lequangloc/benchexec/internal/result"
)

type forestAdapter struct{}

func init() {
	register("forest", func() Adapter { return &forestAdapter{} })
}

func (f *forestAdapter) Executable() (string, error) {
	return FindExecutable("forest")
}

func (f *forestAdapter) Name() string { return "Forest" }

func (f *forestAdapter) Version(executable string) string {
	return VersionFromTool(executable)
}

func (f *forestAdapter) Cmdline(executable string, options []string, tasks []string, propertyFile string, limits Limits) ([]string, error) {
	task, err := singleTask(tasks)
	if err != nil {
		return nil, err
	}
	args := []string{executable, "-propertyfile", propertyFile}
	args = append(args, options...)
	return append(args, "-svcomp_only_output", task), nil
}

// Each marker toggles the verdict independently, so a later
// more-specific match overrides an earlier generic one.
func (f *forestAdapter) DetermineResult(returnCode, returnSignal int, output []string, isTimeout bool) string {
	joined := strings.Join(output, "\n")
	status := result.Unknown
	if strings.Contains(joined, "TRUE") {
		status = result.TrueProp
	}
	if strings.Contains(joined, "FALSE_REACH") {
		status = result.FalseReach
	}
	if strings.Contains(joined, "FALSE_DEREF") {
		status = result.FalseDeref
	}
	if strings.Contains(joined, "FALSE_FREE") {
		status = result.FalseFree
	}
	return status
}

func (f *forestAdapter) ProgramFiles(executable string) []string {
	return []string{executable}
}
