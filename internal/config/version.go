package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const fallbackVersion = "0.1.0"

var (
	versionOnce     sync.Once
	resolvedVersion string
)

// GetVersion returns the version shown in the page footer and health check.
// APP_VERSION (set by CI/CD) wins; otherwise the VERSION file plus the git
// commit count is used. The git-derived value is resolved once per process.
func GetVersion() string {
	if envVersion := os.Getenv("APP_VERSION"); envVersion != "" {
		return envVersion
	}
	versionOnce.Do(func() {
		resolvedVersion = composeVersion(getBaseVersion(), getGitCommitCount())
	})
	return resolvedVersion
}

func composeVersion(base string, commits int) string {
	if commits > 0 {
		return base + "." + strconv.Itoa(commits)
	}
	return base
}

// getBaseVersion reads the first VERSION file found walking up from the
// working directory, stopping after three levels.
func getBaseVersion() string {
	dir, err := os.Getwd()
	if err != nil {
		return fallbackVersion
	}
	for i := 0; i < 3; i++ {
		if content, err := os.ReadFile(filepath.Join(dir, "VERSION")); err == nil {
			if v := strings.TrimSpace(string(content)); v != "" {
				return v
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return fallbackVersion
}

// getGitCommitCount returns the number of commits reachable from HEAD, or 0
// outside a git checkout.
func getGitCommitCount() int {
	output, err := exec.Command("git", "rev-list", "--count", "HEAD").Output()
	if err != nil {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(output)))
	if err != nil {
		return 0
	}
	return count
}
