// Copyright (c) 2020 Shivaram Lingamneni
// Copyright (c) 2026 The chatfmt Authors
// released under the MIT license

package chat

import "fmt"

const (
	// SemVer is the semantic version of chatfmt.
	SemVer = "0.3.0-unreleased"
)

var (
	// Ver is the full version of chatfmt, reported by the CLI and the preview server.
	Ver = fmt.Sprintf("chatfmt-%s", SemVer)
	// Commit is the full git hash, if available
	Commit string
)

// initialize version strings (these are set in package main via linker flags)
func SetVersionString(version, commit string) {
	Commit = commit
	if version != "" {
		Ver = fmt.Sprintf("chatfmt-%s", version)
	} else if len(Commit) == 40 {
		Ver = fmt.Sprintf("chatfmt-%s-%s", SemVer, Commit[:16])
	}
}
