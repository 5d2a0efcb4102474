package version

import (
	"fmt"
	"runtime/debug"
)

// Set through ldflags at release time:
// -X 'github.com/compozy/foodtour/pkg/version.Version=v1.0.0'
// -X 'github.com/compozy/foodtour/pkg/version.CommitHash=abc123'
// -X 'github.com/compozy/foodtour/pkg/version.BuildDate=2024-01-01T00:00:00Z'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Info is the build information of the running binary.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildDate  string `json:"build_date"`
}

// Get returns the build information. A binary installed with go install has
// no ldflags; its module version and VCS revision are used instead.
func Get() Info {
	info := Info{Version: Version, CommitHash: CommitHash, BuildDate: BuildDate}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.CommitHash == "unknown":
			info.CommitHash = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildDate)
}

// UserAgent is sent with every request to the workflow service.
func UserAgent() string {
	return "foodtour/" + Get().Version
}
