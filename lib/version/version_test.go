// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"
)

func withStamp(t *testing.T, commit, dirty string) {
	t.Helper()
	previousCommit, previousDirty, previousTime := GitCommit, GitDirty, BuildTime
	previousRead := readBuildInfo
	t.Cleanup(func() {
		GitCommit, GitDirty, BuildTime = previousCommit, previousDirty, previousTime
		readBuildInfo = previousRead
	})
	GitCommit, GitDirty, BuildTime = commit, dirty, "unknown"
}

func TestInfoMarksDirtyBuilds(t *testing.T) {
	withStamp(t, "abc1234", "false")
	if got := Info(); !strings.Contains(got, "(abc1234,") {
		t.Errorf("Info() = %q, want commit without dirty marker", got)
	}
	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info() = %q, want dirty marker", got)
	}
}

func TestInfoFallsBackToEmbeddedVCS(t *testing.T) {
	withStamp(t, "unknown", "false")
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		}}, true
	}
	want := "(0123456789ab-dirty, 2026-10-01T12:00:00Z)"
	if got := Info(); !strings.Contains(got, want) {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestInfoWithoutBuildInfo(t *testing.T) {
	withStamp(t, "unknown", "false")
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
	if got := Info(); !strings.Contains(got, "(unknown, unknown)") {
		t.Errorf("Info() = %q", got)
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	got := Full()
	if !strings.Contains(got, "Go: go") || !strings.Contains(got, "Platform: ") {
		t.Errorf("Full() = %q", got)
	}
}

func TestPrint(t *testing.T) {
	var buffer bytes.Buffer
	Print(&buffer, "atlas-io-list", "1.0", false)
	got := buffer.String()
	if !strings.HasPrefix(got, "atlas-io-list "+Info()) || !strings.Contains(got, "record layout: 1.0") {
		t.Errorf("Print wrote %q", got)
	}
	if strings.Contains(got, "Platform:") {
		t.Errorf("short Print included platform: %q", got)
	}

	buffer.Reset()
	Print(&buffer, "atlas-io-list", "1.0", true)
	if !strings.Contains(buffer.String(), "Platform: ") {
		t.Errorf("detailed Print wrote %q", buffer.String())
	}
}
