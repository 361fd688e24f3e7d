package structcodec

import (
	"errors"
	"strings"
	"testing"
)

func pyrogramFixture(variant Variant) *Pyrogram {
	p := &Pyrogram{
		Variant:  variant,
		DC:       4,
		TestMode: true,
		UserID:   123456789,
		IsBot:    true,
	}
	if variant == VariantPyrogram {
		p.APIID = 2040
	}
	for i := range p.AuthKey {
		p.AuthKey[i] = byte(255 - i)
	}
	return p
}

func TestPyrogramVariantsByLength(t *testing.T) {
	tests := []struct {
		variant Variant
		length  int
	}{
		{VariantPyrogramOld, StringSize},
		{VariantPyrogramOld64, StringSize64},
		{VariantPyrogram, 362},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			in := pyrogramFixture(tt.variant)
			s, err := EncodePyrogram(in)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if len(s) != tt.length {
				t.Fatalf("expected %d characters, got %d", tt.length, len(s))
			}
			if got := ClassifyPyrogram(s); got != tt.variant {
				t.Fatalf("expected %s, got %s", tt.variant, got)
			}

			out, err := DecodePyrogram(s)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if *out != *in {
				t.Fatalf("decoded struct differs:\nwant %+v\ngot  %+v", in, out)
			}
		})
	}
}

func TestPyrogramPaddedDefaultString(t *testing.T) {
	s, err := EncodePyrogram(pyrogramFixture(VariantPyrogram))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodePyrogram(s + "=="); err != nil {
		t.Fatalf("decode padded: %v", err)
	}
}

func TestPyrogramDefaultLengthMismatch(t *testing.T) {
	for _, in := range []string{"", "garbage", strings.Repeat("A", 400), strings.Repeat("A", 352)} {
		if ClassifyPyrogram(in) != VariantPyrogram {
			t.Fatalf("length %d: expected default variant", len(in))
		}
		if _, err := DecodePyrogram(in); !errors.Is(err, ErrDecode) {
			t.Fatalf("length %d: expected ErrDecode, got %v", len(in), err)
		}
	}
}

func TestEncodePyrogramOldUserIDRange(t *testing.T) {
	p := pyrogramFixture(VariantPyrogramOld)
	p.UserID = 1 << 33
	if _, err := EncodePyrogram(p); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func FuzzDecodeStrings(f *testing.F) {
	f.Add("")
	f.Add(strings.Repeat("A", StringSize))
	f.Add(strings.Repeat("_", StringSize64))
	f.Add("1" + strings.Repeat("-", telethonIPv4Body))

	f.Fuzz(func(t *testing.T, s string) {
		if tl, err := DecodeTelethon(s); err == nil {
			if len(tl.Address) != 4 && len(tl.Address) != 16 {
				t.Fatalf("unexpected address width %d", len(tl.Address))
			}
		}
		if p, err := DecodePyrogram(s); err == nil {
			if p.Variant != ClassifyPyrogram(s) {
				t.Fatalf("decoded variant %s disagrees with classifier", p.Variant)
			}
		}
	})
}
