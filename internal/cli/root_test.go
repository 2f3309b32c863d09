package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandFlags(t *testing.T) {
	exitCode := 0
	root := newRootCmd(&exitCode)

	for flag, shorthand := range map[string]string{
		"rundefinition": "r",
		"tasks":         "t",
		"name":          "n",
		"outputpath":    "o",
		"timelimit":     "T",
		"memorylimit":   "M",
		"numOfThreads":  "N",
		"limitCores":    "c",
		"debug":         "d",
	} {
		f := root.Flags().Lookup(flag)
		assert.NotNil(t, f, flag)
		assert.Equal(t, shorthand, f.Shorthand, flag)
	}
	for _, flag := range []string{"maxLogfileSize", "commit", "message", "startTime"} {
		assert.NotNil(t, root.Flags().Lookup(flag), flag)
	}
	assert.Equal(t, "20", root.Flags().Lookup("maxLogfileSize").DefValue)
	assert.Equal(t, "results/", root.Flags().Lookup("outputpath").DefValue)
}

func TestBadStartTimeIsAConfigurationError(t *testing.T) {
	exitCode := 0
	root := newRootCmd(&exitCode)
	root.SetArgs([]string{"nightly.yml", "--startTime", "not-a-time"})

	err := root.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "start time")
}

func TestMissingBenchmarkFileReported(t *testing.T) {
	exitCode := 0
	root := newRootCmd(&exitCode)
	root.SetArgs([]string{"/no/such/nightly.yml"})

	err := root.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "/no/such/nightly.yml")
}
