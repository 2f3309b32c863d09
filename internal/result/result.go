// Package result defines the canonical verdicts a tool run can produce.
//
// A verdict is either one of the closed set of constants below or a
// free-text error string (for example "timeout" or an exit-code
// description) for runs whose outcome cannot be expressed as a verdict.
package result

const (
	// TrueProp means the checked property holds.
	TrueProp = "true"

	// The false verdicts name the kind of property violation that was
	// found. Tools that cannot distinguish the sub-kinds report the
	// generic reachability or termination verdict instead.
	FalseReach       = "false(reach)"
	FalseDeref       = "false(valid-deref)"
	FalseFree        = "false(valid-free)"
	FalseTermination = "false(termination)"

	// Unknown means the tool ran but could not decide.
	Unknown = "unknown"
)

// StrFalse is the common prefix of all false verdicts.
const StrFalse = "false"

// FalseWitness builds the verdict for a named property violation,
// e.g. FalseWitness("valid-deref") == FalseDeref.
func FalseWitness(property string) string {
	return StrFalse + "(" + property + ")"
}

var canonical = map[string]bool{
	TrueProp:         true,
	FalseReach:       true,
	FalseDeref:       true,
	FalseFree:        true,
	FalseTermination: true,
	Unknown:          true,
}

// IsCanonical reports whether v is a member of the closed verdict
// taxonomy. Error strings like "timeout" are not canonical.
func IsCanonical(v string) bool {
	return canonical[v]
}
