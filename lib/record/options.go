// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"log/slog"

	"github.com/bureau-foundation/atlasio/lib/config"
)

// ReaderOptions configures item and record readers. Zero values
// select the process-wide defaults.
type ReaderOptions struct {
	// ReferenceDir resolves relative record paths. Default: the
	// working directory.
	ReferenceDir string

	// DisableChecksum skips verification of stored checksums even
	// when the configuration enables it.
	DisableChecksum bool

	// DisableLinks returns link items as stored instead of following
	// them to the item they refer to.
	DisableLinks bool

	// Defaults overrides the process-wide configuration.
	Defaults *config.Defaults

	// Logger receives warnings about unverifiable checksums and debug
	// output. Default: slog.Default().
	Logger *slog.Logger
}

type readerConfig struct {
	referenceDir string
	verify       bool
	followLinks  bool
	logger       *slog.Logger
}

func (o ReaderOptions) resolve() (readerConfig, error) {
	defaults, err := resolveDefaults(o.Defaults)
	if err != nil {
		return readerConfig{}, err
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return readerConfig{
		referenceDir: o.ReferenceDir,
		verify:       defaults.ChecksumRead && !o.DisableChecksum,
		followLinks:  !o.DisableLinks,
		logger:       logger,
	}, nil
}
