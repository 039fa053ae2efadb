package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withVars(t *testing.T, v, c, b string) {
	t.Helper()
	oldV, oldC, oldB := Version, Commit, BuildTime
	Version, Commit, BuildTime = v, c, b
	t.Cleanup(func() { Version, Commit, BuildTime = oldV, oldC, oldB })
}

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		info        *debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name: "clean checkout",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
					{Key: "vcs.modified", Value: "false"},
				},
			},
			wantVersion: "dev-20260304",
			wantCommit:  "0123456",
		},
		{
			name: "dirty tree",
			info: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion: "",
			wantCommit:  "abc-dirty",
		},
		{
			name:        "module version",
			info:        &debug.BuildInfo{Main: debug.Module{Version: "v0.4.1"}},
			wantVersion: "v0.4.1",
			wantCommit:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVars(t, "", "", "")
			fromBuildInfo(tt.info, true)
			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestFromBuildInfo_KeepsLdflags(t *testing.T) {
	withVars(t, "v1.0.0", "feedbee", "")
	fromBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "v9.9.9"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0000000000"}},
	}, true)

	if Version != "v1.0.0" || Commit != "feedbee" {
		t.Errorf("ldflags values overwritten: %s %s", Version, Commit)
	}
}

func TestFull(t *testing.T) {
	withVars(t, "v1.2.3", "abc1234", "")
	if got := Full(); got != "v1.2.3 (commit: abc1234)" {
		t.Errorf("Full() = %q", got)
	}
}

func TestGet(t *testing.T) {
	withVars(t, "v1.2.3", "abc1234", "2026-01-01T00:00:00Z")
	info := Get()
	if info.Version != "v1.2.3" || info.Commit != "abc1234" {
		t.Errorf("Get() = %+v", info)
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform = %q", info.Platform)
	}
}
