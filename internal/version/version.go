package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is set at build time with:
// -ldflags "-X github.com/izzyreal/washboard/internal/version.Version=vX.Y.Z"
var Version = "dev"

func Current() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	return v
}

// Compatible reports whether a watcher built as this version can follow a
// server reporting other. Releases must share a major version; dev builds
// and unparsable versions are given the benefit of the doubt.
func Compatible(other string) bool {
	mine, theirs := canonical(Current()), canonical(other)
	if mine == "" || theirs == "" {
		return true
	}
	return semver.Major(mine) == semver.Major(theirs)
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
