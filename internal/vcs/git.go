// Package vcs persists result files into a git repository.
package vcs

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// AddFilesToGitRepository commits the given files inside the
// repository at outputPath. It refuses to commit when the repository
// already has uncommitted changes, so benchmark results never get
// mixed into unrelated work.
func AddFilesToGitRepository(outputPath string, files []string, message string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to commit")
	}

	if _, err := git(outputPath, "rev-parse", "--is-inside-work-tree"); err != nil {
		return fmt.Errorf("%s is not a git repository: %w", outputPath, err)
	}

	status, err := git(outputPath, "status", "--porcelain", "--untracked-files=no")
	if err != nil {
		return err
	}
	if strings.TrimSpace(status) != "" {
		return fmt.Errorf("git repository %s has uncommitted changes, refusing to commit results", outputPath)
	}

	addArgs := append([]string{"add", "--"}, files...)
	if _, err := git(outputPath, addArgs...); err != nil {
		return err
	}

	commitArgs := append([]string{"commit", "--quiet", "-m", message, "--"}, files...)
	if _, err := git(outputPath, commitArgs...); err != nil {
		return err
	}
	return nil
}

func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %v: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
