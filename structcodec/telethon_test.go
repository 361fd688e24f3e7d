package structcodec

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func telethonFixture(t *testing.T, addr []byte) string {
	t.Helper()
	in := &Telethon{DC: 2, Address: addr, Port: 443}
	for i := range in.AuthKey {
		in.AuthKey[i] = byte(i * 7)
	}
	s, err := EncodeTelethon(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return s
}

func TestTelethonIPv4(t *testing.T) {
	s := telethonFixture(t, []byte{149, 154, 167, 51})
	if len(s) != 353 {
		t.Fatalf("expected 353 characters, got %d", len(s))
	}
	if s[0] != TelethonVersion {
		t.Fatalf("expected version prefix, got %q", s[0])
	}

	got, err := DecodeTelethon(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DC != 2 || got.Port != 443 {
		t.Fatalf("unexpected dc/port %d/%d", got.DC, got.Port)
	}
	if !bytes.Equal(got.Address, []byte{149, 154, 167, 51}) {
		t.Fatalf("unexpected address %v", got.Address)
	}
	if got.AuthKey[1] != 7 || got.AuthKey[255] != 0xF9 {
		t.Fatal("auth key bytes not preserved")
	}
}

func TestTelethonIPv6(t *testing.T) {
	addr := []byte{0x20, 0x01, 0x06, 0x7c, 0x04, 0xe8, 0xf0, 0x02, 0, 0, 0, 0, 0, 0, 0, 0x0a}
	s := telethonFixture(t, addr)

	if v, n := ClassifyTelethon(s); v != VariantTelethon || n != 16 {
		t.Fatalf("expected telethon/16, got %s/%d", v, n)
	}
	got, err := DecodeTelethon(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got.Address, addr) {
		t.Fatalf("unexpected address %v", got.Address)
	}
}

func TestTelethonUnpaddedInput(t *testing.T) {
	s := strings.TrimRight(telethonFixture(t, []byte{1, 2, 3, 4}), "=")
	if _, err := DecodeTelethon(s); err != nil {
		t.Fatalf("decode without padding: %v", err)
	}
}

func TestTelethonRejectsOtherLengths(t *testing.T) {
	s := telethonFixture(t, []byte{1, 2, 3, 4})
	for _, in := range []string{"", "1", s[:200], s + "AAAA", strings.Repeat("A", 361)} {
		if v, _ := ClassifyTelethon(in); v != VariantInvalid {
			t.Fatalf("length %d: expected invalid variant, got %s", len(in), v)
		}
		if _, err := DecodeTelethon(in); !errors.Is(err, ErrDecode) {
			t.Fatalf("length %d: expected ErrDecode, got %v", len(in), err)
		}
	}
}

func TestTelethonRejectsBadAlphabet(t *testing.T) {
	s := []byte(telethonFixture(t, []byte{1, 2, 3, 4}))
	s[10] = '*'
	if _, err := DecodeTelethon(string(s)); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestEncodeTelethonRejectsAddressWidth(t *testing.T) {
	if _, err := EncodeTelethon(&Telethon{Address: []byte{1, 2, 3}}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
