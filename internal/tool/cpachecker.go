package tool

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lequangloc/benchexec/internal/result"
)

type cpacheckerAdapter struct{}

func init() {
	register("cpachecker", func() Adapter { return &cpacheckerAdapter{} })
}

func (c *cpacheckerAdapter) Executable() (string, error) {
	return FindExecutable("cpa.sh")
}

func (c *cpacheckerAdapter) Name() string { return "CPAchecker" }

func (c *cpacheckerAdapter) Version(executable string) string {
	return VersionFromTool(executable)
}

// CPAchecker accepts several input files in one invocation.
func (c *cpacheckerAdapter) Cmdline(executable string, options []string, tasks []string, propertyFile string, limits Limits) ([]string, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("expected at least one input file")
	}
	args := append([]string{executable}, options...)
	if propertyFile != "" {
		args = append(args, "-spec", propertyFile)
	}
	return append(args, tasks...), nil
}

var propertyViolationRe = regexp.MustCompile(`.* Property violation \(([^:]*)(:.*)?\) found by chosen configuration.*`)

func isOutOfNativeMemory(line string) bool {
	return strings.Contains(line, "std::bad_alloc") || // C++ out of memory exception (MathSAT)
		strings.Contains(line, "Cannot allocate memory") ||
		strings.Contains(line, "Native memory allocation (malloc) failed to allocate") || // JNI
		strings.HasPrefix(line, "out of memory") // CuDD
}

func (c *cpacheckerAdapter) DetermineResult(returnCode, returnSignal int, output []string, isTimeout bool) string {
	// shells set the return code to 128+signal when a signal is received
	if returnSignal == 0 && returnCode > 128 {
		returnSignal = returnCode - 128
	}

	var status string
	switch {
	case returnSignal != 0:
		switch {
		case returnSignal == 6:
			status = "ABORTED"
		case returnSignal == 9 && isTimeout:
			status = "TIMEOUT"
		case returnSignal == 11:
			status = "SEGMENTATION FAULT"
		case returnSignal == 15:
			status = "KILLED"
		default:
			status = fmt.Sprintf("KILLED BY SIGNAL %d", returnSignal)
		}
	case returnCode != 0:
		status = fmt.Sprintf("ERROR (%d)", returnCode)
	}

	undef := false
	for _, line := range output {
		switch {
		case strings.Contains(line, "java.lang.OutOfMemoryError"):
			status = "OUT OF JAVA MEMORY"
		case isOutOfNativeMemory(line):
			status = "OUT OF NATIVE MEMORY"
		case strings.Contains(line, "There is insufficient memory for the Java Runtime Environment to continue.") ||
			strings.Contains(line, "cannot allocate memory for thread-local data: ABORT"):
			status = "OUT OF MEMORY"
		case strings.Contains(line, "SIGSEGV"):
			status = "SEGMENTATION FAULT"
		case (returnCode == 0 || returnCode == 1) &&
			(strings.Contains(line, "Exception") || strings.Contains(line, "java.lang.AssertionError")) &&
			!strings.HasPrefix(line, "cbmc"): // cbmc output is quoted verbatim and may mention exceptions
			if strings.Contains(line, "java.lang.AssertionError") {
				status = "ASSERTION"
			} else {
				status = "EXCEPTION"
			}
		case strings.Contains(line, "Could not reserve enough space for object heap"):
			status = "JAVA HEAP ERROR"
		case strings.HasPrefix(line, "Error: ") && !strings.HasPrefix(status, "ERROR"):
			status = "ERROR"
			switch {
			case strings.Contains(line, "Unsupported C feature (recursion)"):
				status = "ERROR (recursion)"
			case strings.Contains(line, "Unsupported C feature (threads)"):
				status = "ERROR (threads)"
			case strings.Contains(line, "Parsing failed"):
				status = "ERROR (parsing failed)"
			case strings.Contains(line, "Unknown function"):
				status = "ERROR (unknown function)"
			}
		case strings.HasPrefix(line, "Non-target undefined behavior detected."):
			status = "ERROR (undefined behavior)"
			undef = true
		case strings.HasPrefix(line, "Verification result: "):
			rest := strings.TrimSpace(line[len("Verification result: "):])
			var newStatus string
			switch {
			case strings.HasPrefix(rest, "TRUE"):
				newStatus = result.TrueProp
			case strings.HasPrefix(rest, "FALSE"):
				newStatus = result.FalseReach
				if m := propertyViolationRe.FindStringSubmatch(rest); m != nil {
					switch m[1] {
					case "valid-deref", "valid-free", "valid-memtrack":
						newStatus = result.FalseWitness(m[1])
					}
				}
			default:
				if !strings.HasPrefix(status, "ERROR") {
					newStatus = result.Unknown
				}
			}
			if newStatus != "" && status == "" {
				status = newStatus
			}
		}
	}

	if status == "" || undef {
		status = result.Unknown
	}
	return status
}

func (c *cpacheckerAdapter) ProgramFiles(executable string) []string {
	return []string{executable}
}
