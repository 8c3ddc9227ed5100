// Package version provides build version information embedding.
//
// Version and build metadata are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/streamgate/version.Version=1.0.0"
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
}

// Get returns version information, falling back to the binary's
// embedded VCS metadata when ldflags were not set.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		if info.GitCommit == "" {
			for _, setting := range buildInfo.Settings {
				if setting.Key == "vcs.revision" {
					info.GitCommit = setting.Value
					if len(info.GitCommit) > 7 {
						info.GitCommit = info.GitCommit[:7]
					}
				}
			}
		}
	}

	return info
}

// String returns a short version string.
func (i Info) String() string {
	if i.GitCommit != "" {
		return fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
	}
	return i.Version
}
