// Package dc maps Telegram datacenter ids to their default endpoints.
//
// Formats that store only a datacenter id (Pyrogram) rely on a [Resolver] to
// recover the address. [Table] is the built-in static resolver.
package dc

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrUnknownDatacenter is returned for ids the resolver has no entry for.
var ErrUnknownDatacenter = errors.New("unknown datacenter")

const (
	prodPort = 443
	testPort = 80
)

// Resolver returns the default endpoint of a datacenter.
type Resolver interface {
	Resolve(dcID int) (netip.AddrPort, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(dcID int) (netip.AddrPort, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(dcID int) (netip.AddrPort, error) {
	return f(dcID)
}

var (
	prod = map[int]netip.Addr{
		1:   netip.MustParseAddr("149.154.175.53"),
		2:   netip.MustParseAddr("149.154.167.51"),
		3:   netip.MustParseAddr("149.154.175.100"),
		4:   netip.MustParseAddr("149.154.167.91"),
		5:   netip.MustParseAddr("91.108.56.130"),
		203: netip.MustParseAddr("91.105.192.100"),
	}
	prodMedia = map[int]netip.Addr{
		2: netip.MustParseAddr("149.154.167.151"),
		4: netip.MustParseAddr("149.154.164.250"),
	}
	test = map[int]netip.Addr{
		1:   netip.MustParseAddr("149.154.175.10"),
		2:   netip.MustParseAddr("149.154.167.40"),
		3:   netip.MustParseAddr("149.154.175.117"),
		121: netip.MustParseAddr("95.213.217.195"),
	}
)

// Options selects which of the built-in lists a Table reads.
type Options struct {
	TestMode bool
	Media    bool
}

// Table is a static Resolver over the built-in datacenter lists.
type Table struct {
	opts Options
}

// NewTable returns a Table for opts.
func NewTable(opts Options) *Table {
	return &Table{opts: opts}
}

// Default is the production, non-media table the converters use.
func Default() *Table {
	return NewTable(Options{})
}

// Resolve returns the endpoint for dcID.
func (t *Table) Resolve(dcID int) (netip.AddrPort, error) {
	if t.opts.TestMode {
		ip, ok := test[dcID]
		if !ok {
			return netip.AddrPort{}, fmt.Errorf("%w: test dc %d", ErrUnknownDatacenter, dcID)
		}
		return netip.AddrPortFrom(ip, testPort), nil
	}

	if t.opts.Media {
		if ip, ok := prodMedia[dcID]; ok {
			return netip.AddrPortFrom(ip, prodPort), nil
		}
	}
	ip, ok := prod[dcID]
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("%w: dc %d", ErrUnknownDatacenter, dcID)
	}
	return netip.AddrPortFrom(ip, prodPort), nil
}
