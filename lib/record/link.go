// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

// maxLinkDepth bounds link chains so a cycle of links between records
// fails instead of recursing forever.
const maxLinkDepth = 32

// Link is an Encoder for an item that refers to an item in another
// record. URI has the form accepted by ParseItemURI; a relative path
// is resolved against the directory of the record holding the link.
// A link item has no data section.
type Link struct {
	URI string
}

func (l Link) EncodeMetadata(metadata Metadata) (int, error) {
	if _, err := ParseItemURI(l.URI); err != nil {
		return 0, err
	}
	metadata.Set("link", l.URI)
	return 0, nil
}

func (l Link) EncodeData(*Data) error { return nil }
