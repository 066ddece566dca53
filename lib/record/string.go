// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package record

// inlineStringLimit is the longest string also copied into metadata.
const inlineStringLimit = 128

// String returns an Encoder for a UTF-8 string. The bytes are stored
// in a data section; short strings are also kept inline as "value".
func String(s string) Encoder {
	return stringEncoder(s)
}

type stringEncoder string

func (e stringEncoder) EncodeMetadata(metadata Metadata) (int, error) {
	metadata.Set("type", TypeString)
	metadata.Set("length", len(e))
	if len(e) <= inlineStringLimit {
		metadata.Set("value", string(e))
	}
	return len(e), nil
}

func (e stringEncoder) EncodeData(data *Data) error {
	data.Write([]byte(e))
	return nil
}

// IntoString returns a Decoder that stores a string item in target.
func IntoString(target *string) Decoder {
	return stringDecoder{target: target}
}

type stringDecoder struct {
	target *string
}

func (d stringDecoder) Decode(metadata Metadata, data Data) error {
	if metadata.Type() != TypeString {
		return notDecodablef("item of type %q is not a string", metadata.Type())
	}
	length, _ := metadata.GetInt("length")
	if data.Len() > 0 || length == 0 {
		if int64(data.Len()) != length {
			return invalidRecordf("string data is %d bytes, want %d", data.Len(), length)
		}
		*d.target = string(data.Bytes())
		return nil
	}
	if value, ok := metadata.GetString("value"); ok {
		*d.target = value
		return nil
	}
	return invalidRecordf("string data not available")
}
