package vcs

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	if err := cmd.Run(); err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, errOut.String())
	}
	return out.String()
}

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.name", "benchexec-test")
	runGit(t, dir, "config", "user.email", "benchexec-test@example.com")
	readme := filepath.Join(dir, "README.md")
	assert.NoError(t, os.WriteFile(readme, []byte("results\n"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "init")
	return dir
}

func TestAddFilesToGitRepository(t *testing.T) {
	dir := initRepo(t)
	resultFile := filepath.Join(dir, "nightly.results.default.json")
	assert.NoError(t, os.WriteFile(resultFile, []byte("{}\n"), 0o644))

	err := AddFilesToGitRepository(dir, []string{resultFile},
		"Results for benchmark run\n\nTool: Forest")
	assert.NoError(t, err)

	subject := strings.TrimSpace(runGit(t, dir, "log", "-1", "--format=%s"))
	assert.Equal(t, "Results for benchmark run", subject)
}

func TestRefusesDirtyRepository(t *testing.T) {
	dir := initRepo(t)
	// uncommitted change to a tracked file
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0o644))

	resultFile := filepath.Join(dir, "results.json")
	assert.NoError(t, os.WriteFile(resultFile, []byte("{}\n"), 0o644))

	err := AddFilesToGitRepository(dir, []string{resultFile}, "msg")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "uncommitted")
}

func TestNotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	file := filepath.Join(dir, "results.json")
	assert.NoError(t, os.WriteFile(file, []byte("{}\n"), 0o644))

	err := AddFilesToGitRepository(dir, []string{file}, "msg")
	assert.Error(t, err)
}

func TestNoFilesIsAnError(t *testing.T) {
	err := AddFilesToGitRepository(t.TempDir(), nil, "msg")
	assert.Error(t, err)
}
