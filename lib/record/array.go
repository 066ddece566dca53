// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import "fmt"

// ArrayInterpreter is implemented by types that can present their
// contents as an array, typically by returning Ref over an internal
// buffer. EncoderFor consults it before the built-in adapters.
type ArrayInterpreter interface {
	ArrayView() Encoder
}

// Ref returns an Encoder that stores values as an array. The slice is
// referenced, not copied: its contents at write time are what gets
// stored. Shape defaults to one dimension of len(values); when given,
// its product must equal len(values).
func Ref[T Number](values []T, shape ...int) Encoder {
	return arrayEncoder[T]{values: values, shape: shape}
}

type arrayEncoder[T Number] struct {
	values []T
	shape  []int
}

func (e arrayEncoder[T]) EncodeMetadata(metadata Metadata) (int, error) {
	shape := e.shape
	if len(shape) == 0 {
		shape = []int{len(e.values)}
	}
	if !coversElements(shape, len(e.values)) {
		return 0, fmt.Errorf("%w: shape %v does not cover %d elements", ErrNotEncodable, shape, len(e.values))
	}
	datatype, size := datatypeOf[T]()
	stored := make([]any, len(shape))
	for i, extent := range shape {
		stored[i] = extent
	}
	metadata.Set("type", TypeArray)
	metadata.Set("datatype", datatype)
	metadata.Set("shape", stored)
	return size * len(e.values), nil
}

func (e arrayEncoder[T]) EncodeData(data *Data) error {
	_, size := datatypeOf[T]()
	buffer := make([]byte, size*len(e.values))
	order := data.ByteOrder()
	for i, value := range e.values {
		putNumber(buffer[i*size:], value, order)
	}
	data.Write(buffer)
	return nil
}

// coversElements reports whether shape has non-negative extents whose
// product is exactly count. Partial products never exceed count, so
// extents read from a corrupt record cannot overflow.
func coversElements(shape []int, count int) bool {
	empty := false
	for _, extent := range shape {
		if extent < 0 {
			return false
		}
		if extent == 0 {
			empty = true
		}
	}
	if empty {
		return count == 0
	}
	n := 1
	for _, extent := range shape {
		if n > count/extent {
			return false
		}
		n *= extent
	}
	return n == count
}

// IntoSlice returns a Decoder that replaces *target with the elements
// of an array item, flattened in storage order.
func IntoSlice[T Number](target *[]T) Decoder {
	return DecoderFunc(func(metadata Metadata, data Data) error {
		values, _, err := DecodeArray[T](metadata, data)
		if err != nil {
			return err
		}
		*target = values
		return nil
	})
}

// DecodeArray returns the elements and shape of an array item whose
// datatype is T. It is the building block for decoders of user types
// stored through ArrayInterpreter.
func DecodeArray[T Number](metadata Metadata, data Data) ([]T, []int, error) {
	if metadata.Type() != TypeArray {
		return nil, nil, notDecodablef("item of type %q is not an array", metadata.Type())
	}
	stored := DatatypeSize(metadata.DataType())
	if stored == 0 {
		return nil, nil, invalidRecordf("array has unknown datatype %q", metadata.DataType())
	}
	datatype, size := datatypeOf[T]()
	if metadata.DataType() != datatype {
		return nil, nil, notDecodablef("cannot decode %s array into %s elements", metadata.DataType(), datatype)
	}
	shape := metadata.Shape()
	if shape == nil {
		return nil, nil, invalidRecordf("array metadata has no shape")
	}
	if data.Len()%stored != 0 {
		return nil, nil, invalidRecordf("array data is %d bytes, not a multiple of the %d-byte %s element",
			data.Len(), stored, datatype)
	}
	count := data.Len() / stored
	if !coversElements(shape, count) {
		return nil, nil, invalidRecordf("array shape %v does not match %d stored elements", shape, count)
	}
	values := make([]T, count)
	raw := data.Bytes()
	order := data.ByteOrder()
	for i := range values {
		values[i] = getNumber[T](raw[i*size:], order)
	}
	return values, shape, nil
}
