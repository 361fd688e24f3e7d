package structcodec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode is returned for strings that are not valid base64 or whose
// decoded length does not match the selected layout.
var ErrDecode = errors.New("struct decode failed")

// AuthKeySize is the fixed auth key block size in both families.
const AuthKeySize = 256

// Variant identifies one fixed struct layout.
type Variant uint8

const (
	// VariantInvalid is returned by classifiers for strings no layout can hold.
	VariantInvalid Variant = iota
	// VariantTelethon is `>B{4|16}sH256s` behind a one-character version prefix.
	VariantTelethon
	// VariantPyrogram is the current `>BI?256sQ?` layout carrying api_id.
	VariantPyrogram
	// VariantPyrogramOld is the legacy `>B?256sI?` layout with a 32-bit user id.
	VariantPyrogramOld
	// VariantPyrogramOld64 is the legacy `>B?256sQ?` layout with a 64-bit user id.
	VariantPyrogramOld64
)

func (v Variant) String() string {
	switch v {
	case VariantTelethon:
		return "telethon"
	case VariantPyrogram:
		return "pyrogram"
	case VariantPyrogramOld:
		return "pyrogram-old"
	case VariantPyrogramOld64:
		return "pyrogram-old-64"
	default:
		return "invalid"
	}
}

// decodedSize is the struct size of the variant in bytes; addrLen only matters
// for VariantTelethon.
func (v Variant) decodedSize(addrLen int) int {
	switch v {
	case VariantTelethon:
		return 1 + addrLen + 2 + AuthKeySize
	case VariantPyrogram:
		return 1 + 4 + 1 + AuthKeySize + 8 + 1
	case VariantPyrogramOld:
		return 1 + 1 + AuthKeySize + 4 + 1
	case VariantPyrogramOld64:
		return 1 + 1 + AuthKeySize + 8 + 1
	default:
		return 0
	}
}

// decodeURLBase64 right-pads s with '=' to a multiple of four and decodes it
// with the URL-safe alphabet. The decoded size is checked before any decoding.
func decodeURLBase64(s string, want int) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if n := base64.RawURLEncoding.DecodedLen(len(s)); n != want {
		return nil, fmt.Errorf("%w: %d characters decode to %d bytes, layout needs %d", ErrDecode, len(s), n, want)
	}
	if rem := len(s) % 4; rem != 0 {
		s += strings.Repeat("=", 4-rem)
	}
	data, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(data) != want {
		return nil, fmt.Errorf("%w: decoded %d bytes, layout needs %d", ErrDecode, len(data), want)
	}
	return data, nil
}

func putBool(b bool) byte {
	if b {
		return 1
	}
	return 0
}
