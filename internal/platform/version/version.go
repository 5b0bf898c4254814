// Package version exposes the build metadata stamped into the binary.
package version

import (
	"fmt"
	"runtime"
)

// Overridden at build time:
//
//	go build -ldflags "-X .../version.Version=v1.2.3 -X .../version.Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata served on the /version endpoint.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String renders a single-line form for startup logs.
func (i Info) String() string {
	return fmt.Sprintf("%s (%s, built %s, %s)", i.Version, i.Commit, i.BuildTime, i.GoVersion)
}
