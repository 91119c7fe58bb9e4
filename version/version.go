package version //nolint:revive // package name intentionally matches build-info convention

import (
	"fmt"
	"runtime/debug"
)

//nolint:gochecknoglobals //version information is set at build time
var (
	Repository = "github.com/pitabwire/lingua"
	Version    string
	Commit     string
	Date       string
)

// Current returns the release version, falling back to the module version
// recorded by the Go toolchain and then to "devel".
func Current() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "devel"
}

// String describes the build for humans.
func String() string {
	s := fmt.Sprintf("%s %s", Repository, Current())
	if Commit != "" {
		s += " (" + Commit
		if Date != "" {
			s += ", " + Date
		}
		s += ")"
	}
	return s
}
