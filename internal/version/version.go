package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

const devVersion = "0.2.0-dev"

var (
	// AppName is the display name of the desktop shell
	AppName = "VeriModel"

	// Version is set by release builds through ldflags
	Version = devVersion

	// Revision is the git commit the binary was built from
	Revision = "HEAD"

	// BuildDate is an RFC3339 timestamp
	BuildDate = ""
)

// fillFromBuildInfo only replaces values that ldflags left at their defaults.
func fillFromBuildInfo(mainVersion string, settings map[string]string) {
	if Version == devVersion || Version == "" {
		if mainVersion != "" && mainVersion != "(devel)" {
			Version = strings.TrimPrefix(mainVersion, "v")
		}
	}

	if Revision == "HEAD" || Revision == "" {
		if rev := settings["vcs.revision"]; rev != "" {
			if settings["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			Revision = rev
		}
	}

	if BuildDate == "" {
		BuildDate = settings["vcs.time"]
	}
}

func readBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	fillFromBuildInfo(info.Main.Version, settings)
}

// Detailed returns `0.2.0 (5e23a4; go1.23.6; linux/amd64; 2025-01-01T00:00:00Z)`
func Detailed() string {
	return fmt.Sprintf("%s (%s; %s; %s/%s; %s)", Version, Revision, runtime.Version(), runtime.GOOS, runtime.GOARCH, BuildDate)
}

// DetailedWithApp prefixes Detailed with AppName.
func DetailedWithApp() string {
	return AppName + " " + Detailed()
}

// UserAgent is sent on every outbound request made by the shell.
func UserAgent() string {
	return fmt.Sprintf("%s-Desktop/%s", AppName, Version)
}

func init() {
	readBuildInfo()
	if BuildDate == "" {
		BuildDate = time.Now().UTC().Format(time.RFC3339)
	}
}
