// Package version reads database engine version strings.
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// leadingVersion matches the version token engines put first, as in
// "3.45.1" or "16.2 (Debian 16.2-1.pgdg120+2)".
var leadingVersion = regexp.MustCompile(`^v?(\d+(?:\.\d+){0,2})`)

// Parse extracts the leading version of an engine version string.
func Parse(s string) (*semver.Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty version string")
	}

	m := leadingVersion.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid version format: %q", s)
	}
	return semver.NewVersion(m[1])
}

// AtLeast reports whether the engine version string actual satisfies minimum.
func AtLeast(actual, minimum string) (bool, error) {
	have, err := Parse(actual)
	if err != nil {
		return false, err
	}
	want, err := semver.NewVersion(strings.TrimSpace(minimum))
	if err != nil {
		return false, fmt.Errorf("invalid minimum version %q: %w", minimum, err)
	}
	return !have.LessThan(want), nil
}
