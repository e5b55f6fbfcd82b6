// Package version carries build metadata of the argbind CLI.
// The variables are set at build time via -ldflags.
package version

import (
	"runtime"
	"strings"

	"github.com/fatih/color"

	"argbind/internal/funcinfo"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Info is the machine readable build description.
type Info struct {
	Version     string `json:"version"`
	WireVersion string `json:"wire_version"`
	GitCommit   string `json:"git_commit,omitempty"`
	GitMessage  string `json:"git_message,omitempty"`
	BuildDate   string `json:"build_date,omitempty"`
	GoVersion   string `json:"go_version"`
}

// Get snapshots the build metadata.
func Get() Info {
	return Info{
		Version:     Version,
		WireVersion: funcinfo.WireVersion,
		GitCommit:   GitCommit,
		GitMessage:  GitMessage,
		BuildDate:   BuildDate,
		GoVersion:   runtime.Version(),
	}
}

// Colored renders Version with each of major, minor and patch in its own
// color. A suffix after "-" or "+" is left plain. Color output follows
// color.NoColor.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2]) + suffix
}
