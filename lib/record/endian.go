// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

// hostOrder is the byte order writers use for multi-byte fields and
// for the bytes encoders place in data sections. It is a variable so
// tests can produce records as an opposite-endian machine would.
var hostOrder binary.ByteOrder = nativeOrder()

func nativeOrder() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
