package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStartTime(t *testing.T) {
	got, err := ParseStartTime("2026-08-25 14:30")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 25, 14, 30, 0, 0, time.Local), got)
}

func TestParseStartTimeRejectsBadFormat(t *testing.T) {
	for _, s := range []string{"2026-08-25", "25.08.2026 14:30", "not a time", ""} {
		_, err := ParseStartTime(s)
		assert.Error(t, err, s)
	}
}

func TestNormalizeOutputPath(t *testing.T) {
	dir := t.TempDir()
	normalized := NormalizeOutputPath(dir)
	assert.Equal(t, dir+string(os.PathSeparator), normalized)

	// non-existing paths are used verbatim as a file prefix
	prefix := filepath.Join(dir, "nightly-")
	assert.Equal(t, prefix, NormalizeOutputPath(prefix))
}

func TestExpandArgsFiles(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	err := os.WriteFile(argsFile, []byte("-T 60\n--debug\n"), 0o644)
	assert.NoError(t, err)

	expanded, err := ExpandArgsFiles([]string{"bench.yml", "@" + argsFile, "-N", "4"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"bench.yml", "-T", "60", "--debug", "-N", "4"}, expanded)
}

func TestExpandArgsFilesMissingFile(t *testing.T) {
	_, err := ExpandArgsFiles([]string{"@/does/not/exist"})
	assert.Error(t, err)
}
