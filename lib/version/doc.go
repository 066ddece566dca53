// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for atlas-io
// binaries.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit]: short git SHA of the build
//   - [GitDirty]: "true" if there were uncommitted changes
//   - [BuildTime]: UTC timestamp of the build
//   - [Version]: semantic version string (set manually for releases)
//
// When GitCommit is not injected, the VCS stamp the go command embeds
// in the binary is used instead. Test binaries carry neither and
// report "unknown".
//
// [Print] formats them for --version output together with the record
// layout version this build writes.
package version
