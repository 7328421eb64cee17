package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version reports the CLI version: the module version when installed via
// `go install ...@version`, otherwise a development string derived from the
// embedded base version and the VCS state of the build.
func Version() string {
	info, _ := debug.ReadBuildInfo()
	return buildVersion(strings.TrimSpace(embeddedVersion), info)
}

// buildVersion renders "<base>-dev", suffixed with ".<revision>" when the
// build recorded a VCS revision and "+dirty" when the worktree had local
// modifications.
func buildVersion(base string, info *debug.BuildInfo) string {
	if info == nil {
		return base
	}
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		return mv
	}

	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	out := base + "-dev"
	if rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		out += "." + rev
	}
	if dirty {
		out += "+dirty"
	}
	return out
}
