// Package build describes the running binary. Values are stamped with
// -ldflags and fall back to the VCS data the Go toolchain embeds.
package build

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/ItsNotGoodName/x-tabstack"
)

var Current = newBuild(commit, date, version, repoURL, readSettings())

type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Version   string    `json:"version,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	Modified  bool      `json:"modified,omitempty"`
	GoVersion string    `json:"go_version,omitempty"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CommitURL string    `json:"commit_url,omitempty"`
}

func (b Build) String() string {
	if b.Commit == "" {
		return b.Version
	}
	short := b.Commit[:min(len(b.Commit), 7)]
	if b.Modified {
		short += "-dirty"
	}
	return fmt.Sprintf("%s (%s)", b.Version, short)
}

type settings struct {
	revision  string
	time      string
	modified  bool
	goVersion string
}

func readSettings() settings {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return settings{}
	}

	s := settings{goVersion: info.GoVersion}
	for _, kv := range info.Settings {
		switch kv.Key {
		case "vcs.revision":
			s.revision = kv.Value
		case "vcs.time":
			s.time = kv.Value
		case "vcs.modified":
			s.modified = kv.Value == "true"
		}
	}
	return s
}

func newBuild(commit, date, version, repoURL string, vcs settings) Build {
	if commit == "" {
		commit = vcs.revision
	}
	if date == "" {
		date = vcs.time
	}
	parsed, _ := time.Parse(time.RFC3339, date)

	b := Build{
		Commit:    commit,
		Version:   version,
		Date:      parsed,
		Modified:  vcs.modified,
		GoVersion: vcs.goVersion,
		RepoURL:   repoURL,
	}
	if repoURL != "" && commit != "" {
		b.CommitURL = repoURL + "/tree/" + commit
	}
	return b
}
