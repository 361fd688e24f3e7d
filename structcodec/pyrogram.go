package structcodec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// Raw string lengths that select the legacy Pyrogram layouts.
const (
	StringSize   = 351
	StringSize64 = 356
)

// Pyrogram is the decoded Pyrogram string-session struct. APIID is only
// present in VariantPyrogram; UserID holds 32 bits in VariantPyrogramOld.
type Pyrogram struct {
	Variant  Variant
	DC       uint8
	APIID    uint32
	TestMode bool
	AuthKey  [AuthKeySize]byte
	UserID   uint64
	IsBot    bool
}

// ClassifyPyrogram selects the layout for s from its raw length.
func ClassifyPyrogram(s string) Variant {
	switch len(s) {
	case StringSize:
		return VariantPyrogramOld
	case StringSize64:
		return VariantPyrogramOld64
	default:
		return VariantPyrogram
	}
}

// DecodePyrogram decodes a Pyrogram string session.
func DecodePyrogram(s string) (*Pyrogram, error) {
	variant := ClassifyPyrogram(s)
	data, err := decodeURLBase64(s, variant.decodedSize(0))
	if err != nil {
		return nil, err
	}

	p := &Pyrogram{Variant: variant, DC: data[0]}
	off := 1
	if variant == VariantPyrogram {
		p.APIID = binary.BigEndian.Uint32(data[off:])
		off += 4
	}
	p.TestMode = data[off] != 0
	off++
	copy(p.AuthKey[:], data[off:off+AuthKeySize])
	off += AuthKeySize
	if variant == VariantPyrogramOld {
		p.UserID = uint64(binary.BigEndian.Uint32(data[off:]))
		off += 4
	} else {
		p.UserID = binary.BigEndian.Uint64(data[off:])
		off += 8
	}
	p.IsBot = data[off] != 0

	return p, nil
}

// EncodePyrogram renders p in its Variant layout without base64 padding, the
// way Pyrogram exports string sessions.
func EncodePyrogram(p *Pyrogram) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: nil pyrogram struct", ErrDecode)
	}
	variant := p.Variant
	switch variant {
	case VariantPyrogram, VariantPyrogramOld, VariantPyrogramOld64:
	default:
		return "", fmt.Errorf("%w: %s is not a pyrogram layout", ErrDecode, variant)
	}
	if variant == VariantPyrogramOld && p.UserID > 1<<32-1 {
		return "", fmt.Errorf("%w: user id %d does not fit the 32-bit layout", ErrDecode, p.UserID)
	}

	buf := make([]byte, 0, variant.decodedSize(0))
	buf = append(buf, p.DC)
	if variant == VariantPyrogram {
		buf = binary.BigEndian.AppendUint32(buf, p.APIID)
	}
	buf = append(buf, putBool(p.TestMode))
	buf = append(buf, p.AuthKey[:]...)
	if variant == VariantPyrogramOld {
		buf = binary.BigEndian.AppendUint32(buf, uint32(p.UserID))
	} else {
		buf = binary.BigEndian.AppendUint64(buf, p.UserID)
	}
	buf = append(buf, putBool(p.IsBot))

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
