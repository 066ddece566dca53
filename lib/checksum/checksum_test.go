// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Checksum
	}{
		{"xxh64:0123abcd", Checksum{Algorithm: "xxh64", Digest: "0123abcd"}},
		{"none:", Checksum{Algorithm: "none", Digest: ""}},
		{"none", Checksum{Algorithm: "none"}},
		{"", Checksum{Algorithm: "none"}},
		{"md5:ab:cd", Checksum{Algorithm: "md5", Digest: "ab:cd"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Parse(tt.input)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	if (Checksum{Algorithm: "none", Digest: "abc"}).Available() {
		t.Error("none algorithm should not be available")
	}
	if (Checksum{Algorithm: "xxh64"}).Available() {
		t.Error("empty digest should not be available")
	}
	if !(Checksum{Algorithm: "xxh64", Digest: "00"}).Available() {
		t.Error("xxh64 with digest should be available")
	}
}

func TestComputeEveryAlgorithmFitsField(t *testing.T) {
	buffer := []byte(strings.Repeat("checksummed payload ", 100))
	for _, algorithm := range Algorithms() {
		t.Run(algorithm, func(t *testing.T) {
			result := Compute(buffer, algorithm)
			formatted := result.String()
			if len(formatted) > MaxLength {
				t.Fatalf("%q is %d bytes, exceeds %d", formatted, len(formatted), MaxLength)
			}
			if algorithm == None {
				if formatted != "none:" {
					t.Errorf("Compute(none) = %q, want %q", formatted, "none:")
				}
				return
			}
			if !result.Available() {
				t.Fatalf("Compute(%s) produced unavailable checksum %q", algorithm, formatted)
			}
			if again := Compute(buffer, algorithm); !again.Equal(result) {
				t.Errorf("Compute(%s) not deterministic: %s vs %s", algorithm, result, again)
			}
			if Parse(formatted) != result {
				t.Errorf("Parse(%q) = %+v, want %+v", formatted, Parse(formatted), result)
			}
		})
	}
}

func TestComputeUnknownAlgorithmFallsBack(t *testing.T) {
	result := Compute([]byte("data"), "sha512")
	if result.String() != "none:" {
		t.Errorf("Compute(unknown) = %q, want %q", result.String(), "none:")
	}
	if Supported("sha512") {
		t.Error("sha512 should not be supported")
	}
}

func TestComputeSensitivity(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog")
	for _, algorithm := range Algorithms() {
		if algorithm == None {
			continue
		}
		t.Run(algorithm, func(t *testing.T) {
			flipped := append([]byte(nil), original...)
			flipped[7] ^= 0x01
			if Compute(original, algorithm).Equal(Compute(flipped, algorithm)) {
				t.Errorf("single bit flip not detected by %s", algorithm)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	buffer := []byte("verified buffer")
	stored := Compute(buffer, "blake3")

	verified, err := Verify(buffer, stored)
	if err != nil || !verified {
		t.Fatalf("Verify(matching) = (%v, %v), want (true, nil)", verified, err)
	}

	corrupt := append([]byte(nil), buffer...)
	corrupt[0] ^= 0xff
	verified, err = Verify(corrupt, stored)
	if err == nil || !verified {
		t.Fatalf("Verify(corrupt) = (%v, %v), want (true, error)", verified, err)
	}

	verified, err = Verify(corrupt, Parse("none:"))
	if err != nil || verified {
		t.Errorf("Verify(none) = (%v, %v), want (false, nil)", verified, err)
	}

	verified, err = Verify(corrupt, Checksum{Algorithm: "whirlpool", Digest: "00"})
	if err != nil || verified {
		t.Errorf("Verify(unknown algorithm) = (%v, %v), want (false, nil)", verified, err)
	}
}
