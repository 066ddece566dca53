// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"sync"

	"github.com/bureau-foundation/atlasio/lib/config"
)

var loadDefaults = sync.OnceValues(config.Load)

// Defaults returns the process-wide configuration, loaded from the
// environment on first use.
func Defaults() (*config.Defaults, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return defaults, nil
}

func resolveDefaults(explicit *config.Defaults) (*config.Defaults, error) {
	if explicit != nil {
		return explicit, nil
	}
	return Defaults()
}
