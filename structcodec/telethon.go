package structcodec

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// TelethonVersion is the prefix character Telethon writes before the base64 body.
	TelethonVersion = '1'

	telethonIPv4Body = 351
	telethonIPv6Body = 367
)

// Telethon is the decoded Telethon string-session struct.
type Telethon struct {
	DC      uint8
	Address []byte // 4 or 16 bytes
	Port    uint16
	AuthKey [AuthKeySize]byte
}

// ClassifyTelethon selects the layout for s from its length alone and reports
// the address width the body must carry.
func ClassifyTelethon(s string) (Variant, int) {
	if len(s) < 2 {
		return VariantInvalid, 0
	}
	body := strings.TrimRight(s[1:], "=")
	switch len(body) {
	case telethonIPv4Body:
		return VariantTelethon, 4
	case telethonIPv6Body:
		return VariantTelethon, 16
	default:
		return VariantInvalid, 0
	}
}

// DecodeTelethon decodes a Telethon string session.
func DecodeTelethon(s string) (*Telethon, error) {
	variant, addrLen := ClassifyTelethon(s)
	if variant == VariantInvalid {
		return nil, fmt.Errorf("%w: telethon string has unsupported length %d", ErrDecode, len(s))
	}

	data, err := decodeURLBase64(strings.TrimRight(s[1:], "="), variant.decodedSize(addrLen))
	if err != nil {
		return nil, err
	}

	t := &Telethon{
		DC:      data[0],
		Address: append([]byte(nil), data[1:1+addrLen]...),
		Port:    binary.BigEndian.Uint16(data[1+addrLen:]),
	}
	copy(t.AuthKey[:], data[3+addrLen:])
	return t, nil
}

// EncodeTelethon renders t the way Telethon saves string sessions.
func EncodeTelethon(t *Telethon) (string, error) {
	if t == nil || (len(t.Address) != 4 && len(t.Address) != 16) {
		return "", fmt.Errorf("%w: telethon address must be 4 or 16 bytes", ErrDecode)
	}

	buf := make([]byte, 0, VariantTelethon.decodedSize(len(t.Address)))
	buf = append(buf, t.DC)
	buf = append(buf, t.Address...)
	buf = binary.BigEndian.AppendUint16(buf, t.Port)
	buf = append(buf, t.AuthKey[:]...)

	return string(TelethonVersion) + base64.URLEncoding.EncodeToString(buf), nil
}
