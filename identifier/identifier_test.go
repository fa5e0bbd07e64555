// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package identifier

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ids := []string{
		"sections",
		"rooms/2015",
		"with spaces",
		"100% sure",
		"déjà-vu",
		"a_b", // identifier.Valid rejects this, but Encode/Decode is total regardless
	}

	for _, id := range ids {
		encoded := Encode(id)

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(Encode(%q)) error = %v", id, err)
		}

		if decoded != id {
			t.Errorf("Decode(Encode(%q)) = %q, want %q", id, decoded, id)
		}
	}
}

func TestEncodeIsFilenameSafe(t *testing.T) {
	for _, b := range []byte("a-Z0.9~") {
		if !safe(b) {
			t.Errorf("safe(%q) = false, want true", b)
		}
	}

	for _, id := range []string{"a/b", "a b", "a*b", "déjà"} {
		encoded := Encode(id)
		for i := 0; i < len(encoded); i++ {
			c := encoded[i]
			if c == '%' {
				continue
			}

			if !safe(c) {
				t.Errorf("Encode(%q) = %q contains unsafe byte %q", id, encoded, c)
			}
		}
	}
}

func TestDecodeRejectsMalformedEscapes(t *testing.T) {
	for _, fname := range []string{"%", "%A", "%ZZ", "abc%"} {
		if _, err := Decode(fname); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", fname)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"sections", true},
		{"rooms/2015", true},
		{"", false},
		{"   ", false},
		{"has_underscore", false},
		{"  leading-ws-ok", true},
	}

	for _, tt := range tests {
		if got := Valid(tt.id); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
