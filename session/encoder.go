package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"net/netip"

	"github.com/gotd/td/bin"
)

const (
	sessionTypeTag  uint32 = 2805905614
	reservedWord    uint32 = 0
	formatTag       uint32 = 481674261
	signedFlagWord  int32  = 1
	subFormatTag    uint32 = 1970083510
	capabilityFlags uint32 = 1 | 4

	maxAuthKeyLen = 1<<24 - 1
	headerSize    = 36
)

var (
	// ErrFieldRange is returned when a record field does not fit its 32-bit slot.
	ErrFieldRange = errors.New("session field out of range")
	// ErrAddressNotIPv4 is returned when the endpoint address has no 32-bit form.
	ErrAddressNotIPv4 = errors.New("session endpoint is not an IPv4 address")
	// ErrAuthKeyTooLong is returned when the auth key length does not fit in 24 bits.
	ErrAuthKeyTooLong = errors.New("auth key too long")
	// ErrInvalidLayout is returned by Parse for bytes that are not a canonical session.
	ErrInvalidLayout = errors.New("invalid canonical session layout")
)

// Serialize writes r in the canonical little-endian session layout. The auth
// key is a TL bytes field: short or long length prefix, then zero padding to
// a 4-byte boundary.
func Serialize(r *Record) ([]byte, error) {
	if r == nil {
		return nil, ErrInvalidLayout
	}
	if r.DC < math.MinInt32 || r.DC > math.MaxInt32 {
		return nil, ErrFieldRange
	}
	ip, err := ipv4Word(r.Endpoint.IP)
	if err != nil {
		return nil, err
	}
	if len(r.AuthKey) > maxAuthKeyLen {
		return nil, ErrAuthKeyTooLong
	}

	b := bin.Buffer{Buf: make([]byte, 0, headerSize+4+len(r.AuthKey)+3)}
	b.PutID(sessionTypeTag)
	b.PutID(reservedWord)
	b.PutID(formatTag)
	b.PutInt32(signedFlagWord)
	b.PutID(subFormatTag)
	b.PutUint32(capabilityFlags)
	b.PutInt32(int32(r.DC))
	b.PutUint32(ip)
	b.PutUint32(uint32(r.Endpoint.Port))
	b.PutBytes(r.AuthKey)

	return b.Raw(), nil
}

// Parse decodes a canonical session produced by Serialize. Anything Serialize
// would not emit byte for byte is rejected.
func Parse(data []byte) (*Record, error) {
	b := bin.Buffer{Buf: data}

	var header [9]uint32
	for i := range header {
		v, err := b.Uint32()
		if err != nil {
			return nil, ErrInvalidLayout
		}
		header[i] = v
	}
	if header[0] != sessionTypeTag ||
		header[1] != reservedWord ||
		header[2] != formatTag ||
		header[3] != uint32(signedFlagWord) ||
		header[4] != subFormatTag ||
		header[5] != capabilityFlags {
		return nil, ErrInvalidLayout
	}
	if header[8] > math.MaxUint16 {
		return nil, ErrFieldRange
	}

	key, err := b.Bytes()
	if err != nil || b.Len() != 0 {
		return nil, ErrInvalidLayout
	}

	var ipBytes [4]byte
	binary.BigEndian.PutUint32(ipBytes[:], header[7])

	r := &Record{
		DC: int(int32(header[6])),
		Endpoint: Endpoint{
			IP:   netip.AddrFrom4(ipBytes),
			Port: uint16(header[8]),
		},
		AuthKey: bytes.Clone(key),
	}

	// Non-canonical length prefixes and non-zero padding decode fine in TL;
	// the round trip catches them.
	again, err := Serialize(r)
	if err != nil || !bytes.Equal(again, data) {
		return nil, ErrInvalidLayout
	}
	return r, nil
}

// ipv4Word returns the network-order address reinterpreted as an unsigned integer.
func ipv4Word(ip netip.Addr) (uint32, error) {
	if !ip.IsValid() || !ip.Is4() {
		return 0, ErrAddressNotIPv4
	}
	a := ip.As4()
	return binary.BigEndian.Uint32(a[:]), nil
}
