package session

import (
	"bytes"
	"testing"
)

// FuzzParse exercises the canonical decoder with arbitrary inputs.
// Goal: no panics, and anything accepted must re-encode to the same bytes.
func FuzzParse(f *testing.F) {
	for _, n := range []int{0, 3, 253, 254, 256} {
		encoded, err := Serialize(testRecord(n))
		if err == nil {
			f.Add(encoded)
			f.Add(encoded[:len(encoded)/2])
		}
	}

	f.Add([]byte{})
	f.Add([]byte{0})
	f.Add([]byte{255, 255, 255})

	f.Fuzz(func(t *testing.T, data []byte) {
		r, err := Parse(data)
		if err != nil {
			return
		}

		out, err := Serialize(r)
		if err != nil {
			t.Fatalf("parsed record does not serialize: %v", err)
		}
		if !bytes.Equal(out, data) {
			t.Fatalf("re-encoded bytes differ from input")
		}
	})
}
