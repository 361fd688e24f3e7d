package structcodec

import (
	"errors"
	"runtime"
	"strings"
	"testing"
)

// Reference strings packed independently of this package: dc 2,
// 149.154.167.51:443 and a zero key for Telethon; keys 00..ff for Pyrogram.
var telethonZeroKey = "1ApWapzMBuw" + strings.Repeat("A", 341) + "="

const (
	pyrogramOldString   = "BAEAAQIDBAUGBwgJCgsMDQ4PEBESExQVFhcYGRobHB0eHyAhIiMkJSYnKCkqKywtLi8wMTIzNDU2Nzg5Ojs8PT4_QEFCQ0RFRkdISUpLTE1OT1BRUlNUVVZXWFlaW1xdXl9gYWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXp7fH1-f4CBgoOEhYaHiImKi4yNjo-QkZKTlJWWl5iZmpucnZ6foKGio6SlpqeoqaqrrK2ur7CxsrO0tba3uLm6u7y9vr_AwcLDxMXGx8jJysvMzc7P0NHS09TV1tfY2drb3N3e3-Dh4uPk5ebn6Onq6-zt7u_w8fLz9PX29_j5-vv8_f7_B1vNFQA"
	pyrogramOld64String = "BQAAAQIDBAUGBwgJCgsMDQ4PEBESExQVFhcYGRobHB0eHyAhIiMkJSYnKCkqKywtLi8wMTIzNDU2Nzg5Ojs8PT4_QEFCQ0RFRkdISUpLTE1OT1BRUlNUVVZXWFlaW1xdXl9gYWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXp7fH1-f4CBgoOEhYaHiImKi4yNjo-QkZKTlJWWl5iZmpucnZ6foKGio6SlpqeoqaqrrK2ur7CxsrO0tba3uLm6u7y9vr_AwcLDxMXGx8jJysvMzc7P0NHS09TV1tfY2drb3N3e3-Dh4uPk5ebn6Onq6-zt7u_w8fLz9PX29_j5-vv8_f7_AAAAASoF8gEB"
	pyrogramString      = "AgAAB_gAAAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8gISIjJCUmJygpKissLS4vMDEyMzQ1Njc4OTo7PD0-P0BBQkNERUZHSElKS0xNTk9QUVJTVFVWV1hZWltcXV5fYGFiY2RlZmdoaWprbG1ub3BxcnN0dXZ3eHl6e3x9fn-AgYKDhIWGh4iJiouMjY6PkJGSk5SVlpeYmZqbnJ2en6ChoqOkpaanqKmqq6ytrq-wsbKztLW2t7i5uru8vb6_wMHCw8TFxsfIycrLzM3Oz9DR0tPU1dbX2Nna29zd3t_g4eLj5OXm5-jp6uvs7e7v8PHy8_T19vf4-fr7_P3-_wAAAAAAC9soAA"
)

func TestTelethonReferenceString(t *testing.T) {
	got, err := DecodeTelethon(telethonZeroKey)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DC != 2 || got.Port != 443 {
		t.Fatalf("unexpected dc/port %d/%d", got.DC, got.Port)
	}
	if string(got.Address) != string([]byte{149, 154, 167, 51}) {
		t.Fatalf("unexpected address %v", got.Address)
	}
	if got.AuthKey != [AuthKeySize]byte{} {
		t.Fatal("expected zero auth key")
	}

	again, err := EncodeTelethon(got)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if again != telethonZeroKey {
		t.Fatalf("re-encoded string differs:\nwant %s\ngot  %s", telethonZeroKey, again)
	}
}

func TestPyrogramReferenceStrings(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		length   int
		variant  Variant
		dc       uint8
		apiID    uint32
		testMode bool
		userID   uint64
		isBot    bool
	}{
		{"old", pyrogramOldString, 351, VariantPyrogramOld, 4, 0, true, 123456789, false},
		{"old-64", pyrogramOld64String, 356, VariantPyrogramOld64, 5, 0, false, 5000000001, true},
		{"default", pyrogramString, 362, VariantPyrogram, 2, 2040, false, 777000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.in) != tt.length {
				t.Fatalf("expected %d characters, got %d", tt.length, len(tt.in))
			}
			p, err := DecodePyrogram(tt.in)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.Variant != tt.variant || p.DC != tt.dc || p.APIID != tt.apiID ||
				p.TestMode != tt.testMode || p.UserID != tt.userID || p.IsBot != tt.isBot {
				t.Fatalf("unexpected fields %+v", p)
			}
			for i, b := range p.AuthKey {
				if b != byte(i) {
					t.Fatalf("auth key byte %d: expected %d, got %d", i, i, b)
				}
			}

			again, err := EncodePyrogram(p)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if again != tt.in {
				t.Fatalf("re-encoded string differs:\nwant %s\ngot  %s", tt.in, again)
			}
		})
	}
}

func TestPyrogramOversizedInputNotDecoded(t *testing.T) {
	in := strings.Repeat("A", 8<<20)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := DecodePyrogram(in)
	runtime.ReadMemStats(&after)

	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 1<<20 {
		t.Fatalf("rejecting an oversized string allocated %d bytes", grew)
	}
}
