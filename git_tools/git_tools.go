// Package git_tools provides utilities for interacting with Git repositories.
package git_tools

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// statusTimeout bounds how long a git invocation may run. IsRepoStatus
// reports a timed-out call as not a repository; StageFiles returns it as
// an error.
const statusTimeout = 3 * time.Second

// Status summarizes a working tree's VCS state, degrading to IsRepo=false
// rather than erroring when git is unavailable or dir isn't a repo.
type Status struct {
	IsRepo     bool
	IsDirty    bool
	DirtyPaths []string
}

// IsRepoStatus runs git status --porcelain against dir and parses the
// result. Any failure (git missing, dir not a repository, timeout) is
// reported as Status{IsRepo: false}, never as an error, since VCS status
// is advisory context and must never block a patch operation.
func IsRepoStatus(ctx context.Context, dir string) Status {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "-C", dir, "status", "--porcelain")
	out, err := cmd.Output()
	if err != nil {
		return Status{IsRepo: false}
	}

	paths := parsePorcelainPaths(string(out))
	return Status{
		IsRepo:     true,
		IsDirty:    len(paths) > 0,
		DirtyPaths: paths,
	}
}

// parsePorcelainPaths extracts the path field from each line of
// `git status --porcelain` output (format: "XY path" or, for renames,
// "XY old -> new").
func parsePorcelainPaths(output string) []string {
	var paths []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}
		path := line[3:]
		if arrow := strings.Index(path, " -> "); arrow != -1 {
			path = path[arrow+4:]
		}
		paths = append(paths, path)
	}
	return paths
}

// StageFiles runs git add -- for the given paths (relative to dir),
// used to auto-stage files an Apply has just written. Unlike
// IsRepoStatus, a failure is returned as an error (with git's output);
// what to do with it is left to the caller.
func StageFiles(ctx context.Context, dir string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	args := append([]string{"-C", dir, "add", "--"}, paths...)
	cmd := exec.CommandContext(ctx, "git", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git add: %w - %s", err, string(out))
	}
	return nil
}
