// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"reflect"
	"sync"
)

// Encoder is the contract every value stored in a record satisfies.
//
// EncodeMetadata fills in the item's metadata and returns the number
// of bytes EncodeData will produce. A size of zero means the item has
// no data section. EncodeData appends exactly that many bytes, in the
// byte order of the Data it is given.
type Encoder interface {
	EncodeMetadata(metadata Metadata) (size int, err error)
	EncodeData(data *Data) error
}

// Decoder receives a stored item. The Data is empty when the item has
// no data section.
type Decoder interface {
	Decode(metadata Metadata, data Data) error
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(metadata Metadata, data Data) error

// Decode calls f.
func (f DecoderFunc) Decode(metadata Metadata, data Data) error {
	return f(metadata, data)
}

var registry = struct {
	sync.RWMutex
	encoders map[reflect.Type]func(any) Encoder
	decoders map[reflect.Type]func(any) Decoder
}{
	encoders: make(map[reflect.Type]func(any) Encoder),
	decoders: make(map[reflect.Type]func(any) Decoder),
}

// RegisterEncoder makes values of type T usable with Writer.SetAny.
// Registering the same type twice replaces the earlier adapter.
func RegisterEncoder[T any](adapt func(T) Encoder) {
	registry.Lock()
	defer registry.Unlock()
	registry.encoders[reflect.TypeFor[T]()] = func(value any) Encoder {
		return adapt(value.(T))
	}
}

// RegisterDecoder makes *T usable as a target of Reader.ReadAny.
func RegisterDecoder[T any](adapt func(*T) Decoder) {
	registry.Lock()
	defer registry.Unlock()
	registry.decoders[reflect.TypeFor[T]()] = func(target any) Decoder {
		return adapt(target.(*T))
	}
}

// EncoderFor resolves value to an Encoder. Resolution order: the value
// itself, a registered adapter for its exact type, an array view, then
// the built-in numeric, string and slice adapters.
func EncoderFor(value any) (Encoder, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: nil value", ErrNotEncodable)
	}
	if encoder, ok := value.(Encoder); ok {
		return encoder, nil
	}
	registry.RLock()
	adapt, ok := registry.encoders[reflect.TypeOf(value)]
	registry.RUnlock()
	if ok {
		return adapt(value), nil
	}
	if interpreter, ok := value.(ArrayInterpreter); ok {
		return interpreter.ArrayView(), nil
	}
	if encoder := builtinEncoder(value); encoder != nil {
		return encoder, nil
	}
	return nil, fmt.Errorf("%w: no encoder for %T", ErrNotEncodable, value)
}

// DecoderFor resolves target, which must be a Decoder or a non-nil
// pointer, to a Decoder.
func DecoderFor(target any) (Decoder, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target", ErrNotEncodable)
	}
	if decoder, ok := target.(Decoder); ok {
		return decoder, nil
	}
	targetType := reflect.TypeOf(target)
	if targetType.Kind() != reflect.Pointer || reflect.ValueOf(target).IsNil() {
		return nil, fmt.Errorf("%w: target %T is not a non-nil pointer", ErrNotEncodable, target)
	}
	registry.RLock()
	adapt, ok := registry.decoders[targetType.Elem()]
	registry.RUnlock()
	if ok {
		return adapt(target), nil
	}
	if decoder := builtinDecoder(target); decoder != nil {
		return decoder, nil
	}
	return nil, fmt.Errorf("%w: no decoder for %T", ErrNotEncodable, target)
}

func builtinEncoder(value any) Encoder {
	switch v := value.(type) {
	case int:
		return Scalar(v)
	case int8:
		return Scalar(v)
	case int16:
		return Scalar(v)
	case int32:
		return Scalar(v)
	case int64:
		return Scalar(v)
	case uint:
		return Scalar(v)
	case uint8:
		return Scalar(v)
	case uint16:
		return Scalar(v)
	case uint32:
		return Scalar(v)
	case uint64:
		return Scalar(v)
	case float32:
		return Scalar(v)
	case float64:
		return Scalar(v)
	case string:
		return String(v)
	case []int:
		return Ref(v)
	case []int8:
		return Ref(v)
	case []int16:
		return Ref(v)
	case []int32:
		return Ref(v)
	case []int64:
		return Ref(v)
	case []uint:
		return Ref(v)
	case []uint8:
		return Ref(v)
	case []uint16:
		return Ref(v)
	case []uint32:
		return Ref(v)
	case []uint64:
		return Ref(v)
	case []float32:
		return Ref(v)
	case []float64:
		return Ref(v)
	default:
		return nil
	}
}

func builtinDecoder(target any) Decoder {
	switch t := target.(type) {
	case *int:
		return Into(t)
	case *int8:
		return Into(t)
	case *int16:
		return Into(t)
	case *int32:
		return Into(t)
	case *int64:
		return Into(t)
	case *uint:
		return Into(t)
	case *uint8:
		return Into(t)
	case *uint16:
		return Into(t)
	case *uint32:
		return Into(t)
	case *uint64:
		return Into(t)
	case *float32:
		return Into(t)
	case *float64:
		return Into(t)
	case *string:
		return IntoString(t)
	case *[]int:
		return IntoSlice(t)
	case *[]int8:
		return IntoSlice(t)
	case *[]int16:
		return IntoSlice(t)
	case *[]int32:
		return IntoSlice(t)
	case *[]int64:
		return IntoSlice(t)
	case *[]uint:
		return IntoSlice(t)
	case *[]uint8:
		return IntoSlice(t)
	case *[]uint16:
		return IntoSlice(t)
	case *[]uint32:
		return IntoSlice(t)
	case *[]uint64:
		return IntoSlice(t)
	case *[]float32:
		return IntoSlice(t)
	case *[]float64:
		return IntoSlice(t)
	default:
		return nil
	}
}
