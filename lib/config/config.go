// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/atlasio/lib/checksum"
	"github.com/bureau-foundation/atlasio/lib/compression"
)

// Environment variable names.
const (
	EnvConfig         = "ATLAS_IO_CONFIG"
	EnvChecksum       = "ATLAS_IO_CHECKSUM"
	EnvCompression    = "ATLAS_IO_COMPRESSION"
	EnvChecksumRead   = "ATLAS_IO_CHECKSUM_READ"
	EnvChecksumWrite  = "ATLAS_IO_CHECKSUM_WRITE"
	EnvMetadataFormat = "ATLAS_IO_METADATA_FORMAT"
)

// Metadata formats a record head may declare.
const (
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Defaults holds the configuration consumed by record writers and
// readers.
type Defaults struct {
	// ChecksumAlgorithm names the algorithm used for new checksums.
	// Default: xxh64
	ChecksumAlgorithm string `yaml:"checksum_algorithm"`

	// CompressionAlgorithm names the algorithm applied to data
	// sections unless an item overrides it. Default: lz4
	CompressionAlgorithm string `yaml:"compression_algorithm"`

	// ChecksumRead enables verification of stored checksums.
	// Default: true
	ChecksumRead bool `yaml:"checksum_read"`

	// ChecksumWrite enables computing checksums when writing. When
	// false every checksum is recorded as "none:". Default: true
	ChecksumWrite bool `yaml:"checksum_write"`

	// MetadataFormat is the encoding of the metadata section of new
	// records: yaml or cbor. Default: yaml
	MetadataFormat string `yaml:"metadata_format"`
}

// Default returns the compiled-in defaults.
func Default() *Defaults {
	return &Defaults{
		ChecksumAlgorithm:    checksum.Default,
		CompressionAlgorithm: compression.Default,
		ChecksumRead:         true,
		ChecksumWrite:        true,
		MetadataFormat:       FormatYAML,
	}
}

// Load builds the defaults from ATLAS_IO_CONFIG (when set) and the
// process environment. An unset ATLAS_IO_CONFIG is not an error: the
// compiled-in defaults are used as the base.
func Load() (*Defaults, error) {
	path := expandVars(os.Getenv(EnvConfig))
	if path == "" {
		defaults := Default()
		if err := defaults.ApplyEnvironment(os.LookupEnv); err != nil {
			return nil, err
		}
		return defaults, defaults.Validate()
	}
	return LoadFile(path)
}

// LoadFile builds the defaults from the YAML file at path followed by
// environment overrides.
func LoadFile(path string) (*Defaults, error) {
	defaults := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, defaults); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := defaults.ApplyEnvironment(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return defaults, nil
}

// ApplyEnvironment overrides fields from environment variables looked
// up through lookup (os.LookupEnv in production).
func (d *Defaults) ApplyEnvironment(lookup func(string) (string, bool)) error {
	if value, ok := lookup(EnvChecksum); ok && value != "" {
		d.ChecksumAlgorithm = value
	}
	if value, ok := lookup(EnvCompression); ok && value != "" {
		d.CompressionAlgorithm = value
	}
	if value, ok := lookup(EnvMetadataFormat); ok && value != "" {
		d.MetadataFormat = value
	}
	for _, flag := range []struct {
		name   string
		target *bool
	}{
		{EnvChecksumRead, &d.ChecksumRead},
		{EnvChecksumWrite, &d.ChecksumWrite},
	} {
		value, ok := lookup(flag.name)
		if !ok || value == "" {
			continue
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", flag.name, value, err)
		}
		*flag.target = parsed
	}
	return nil
}

// Validate checks that every named algorithm and format is known.
func (d *Defaults) Validate() error {
	var errs []error

	if !checksum.Supported(d.ChecksumAlgorithm) {
		errs = append(errs, fmt.Errorf("unsupported checksum_algorithm %q (supported: %v)",
			d.ChecksumAlgorithm, checksum.Algorithms()))
	}
	if !compression.Supported(d.CompressionAlgorithm) {
		errs = append(errs, fmt.Errorf("unsupported compression_algorithm %q (supported: %v)",
			d.CompressionAlgorithm, compression.Algorithms()))
	}
	if d.MetadataFormat != FormatYAML && d.MetadataFormat != FormatCBOR {
		errs = append(errs, fmt.Errorf("unsupported metadata_format %q (supported: %s, %s)",
			d.MetadataFormat, FormatYAML, FormatCBOR))
	}

	return errors.Join(errs...)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}
