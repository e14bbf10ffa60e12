package cli

import (
	"strings"

	"github.com/blang/semver"
)

// Version is the build version, overridden at link time with
// -ldflags "-X github.com/Fepozopo/pixfx/pkg/cli.Version=1.2.3".
var Version = "0.1.0"

// ParseVersion parses a semantic version with an optional leading "v".
func ParseVersion(s string) (semver.Version, error) {
	return semver.Parse(strings.TrimPrefix(strings.TrimSpace(s), "v"))
}
