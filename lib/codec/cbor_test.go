// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestCBORDeterministic(t *testing.T) {
	doc := NewDocument()
	doc.Set("zeta", map[string]any{"type": "scalar", "b": 1, "a": 2})
	doc.Set("alpha", map[string]any{"type": "string"})

	first, err := Encode(CBOR, doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Encode(CBOR, doc)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("CBOR encoding is not deterministic")
		}
	}
}

func TestCBORNumbersDecodeAsUnsigned(t *testing.T) {
	doc := NewDocument()
	doc.Set("item", map[string]any{"size": 42, "offset": -3})

	data, err := Encode(CBOR, doc)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(CBOR, data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, ok := decoded.Values["item"]["size"].(uint64); !ok || got != 42 {
		t.Errorf("size = %#v, want uint64(42)", decoded.Values["item"]["size"])
	}
	if got, ok := decoded.Values["item"]["offset"].(int64); !ok || got != -3 {
		t.Errorf("offset = %#v, want int64(-3)", decoded.Values["item"]["offset"])
	}
}

func TestCBORRejectsMismatchedKeys(t *testing.T) {
	data, err := encMode.Marshal(cborDocument{
		Keys:  []string{"a", "b"},
		Items: map[string]map[string]any{"a": {}, "c": {}},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := Decode(CBOR, data); err == nil {
		t.Error("expected error for key without item")
	}
}
