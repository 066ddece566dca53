// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import "encoding/binary"

// Data is the raw payload of one item, together with the byte order
// its multi-byte values were encoded in. Encoders append to a Data
// whose order is the writer's; decoders receive a Data whose order is
// the one recorded in the record head, and must honour it.
type Data struct {
	bytes []byte
	order binary.ByteOrder
}

// NewData wraps b. A nil order means the host byte order.
func NewData(b []byte, order binary.ByteOrder) Data {
	if order == nil {
		order = hostOrder
	}
	return Data{bytes: b, order: order}
}

// Write appends p. It never fails.
func (d *Data) Write(p []byte) (int, error) {
	d.bytes = append(d.bytes, p...)
	return len(p), nil
}

// Bytes returns the payload. The slice aliases the Data.
func (d Data) Bytes() []byte { return d.bytes }

// Len returns the payload size in bytes.
func (d Data) Len() int { return len(d.bytes) }

// ByteOrder returns the order multi-byte values are stored in.
func (d Data) ByteOrder() binary.ByteOrder {
	if d.order == nil {
		return hostOrder
	}
	return d.order
}
