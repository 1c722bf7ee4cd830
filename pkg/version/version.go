// Package version checks whether the host runtime version is within the
// supported range. The result is advisory: it is logged at startup and
// never gates hook execution.
package version

import (
	"strconv"
	"strings"

	"github.com/sipeed/chatwarden/pkg/logger"
)

// SupportedMajor is the single host major version this pipeline targets.
const SupportedMajor = 4

// MinSupported is the lowest supported host version.
const MinSupported = "4.0.0"

// Parsed holds the components of a semantic version string.
type Parsed struct {
	Major int
	Minor int
	Patch int
}

// Parse splits a semver string, stripping any pre-release suffix after the
// first '-'. Minor and patch default to 0 when absent or unparsable. It
// returns false when the major segment is not an integer.
func Parse(v string) (Parsed, bool) {
	if v == "" {
		return Parsed{}, false
	}
	clean, _, _ := strings.Cut(v, "-")
	parts := strings.Split(clean, ".")

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Parsed{}, false
	}

	p := Parsed{Major: major}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			p.Minor = n
		}
	}
	if len(parts) > 2 {
		if n, err := strconv.Atoi(parts[2]); err == nil {
			p.Patch = n
		}
	}
	return p, true
}

// IsCompatible reports whether the host version is supported. An
// undetectable version ("unknown" or empty) is optimistically treated as
// compatible with a warning; a present but unparsable version is not.
func IsCompatible(v string) bool {
	if v == "" || v == "unknown" {
		logger.WarnC("version", "Unable to determine host version, assuming compatible")
		return true
	}

	parsed, ok := Parse(v)
	if !ok {
		logger.WarnCF("version", "Invalid host version format", map[string]any{"version": v})
		return false
	}

	if parsed.Major != SupportedMajor {
		logger.WarnCF("version", "Incompatible host version detected", map[string]any{
			"version":   v,
			"supported": strconv.Itoa(SupportedMajor) + ".x",
		})
		return false
	}
	return true
}
