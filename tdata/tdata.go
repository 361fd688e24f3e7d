// Package tdata reads Telegram Desktop "tdata" containers.
//
// The container format itself is handled by gotd's session/tdesktop package;
// this package narrows it to the few fields a session conversion needs and
// puts it behind the [Probe] interface so callers can substitute it in tests.
package tdata

import (
	"net/netip"
	"os"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/session/tdesktop"
)

// ErrNotContainer is returned when root is not a readable tdata directory.
var ErrNotContainer = errors.New("not a tdata container")

// ErrNoAccounts is returned when a container holds no authorized account.
var ErrNoAccounts = errors.New("tdata container has no accounts")

// Account is one authorized account of a container.
//
// Addr is the zero value when the container does not record an endpoint for
// the account's main datacenter.
type Account struct {
	DC      int
	Addr    netip.AddrPort
	AuthKey []byte
}

// Probe opens a tdata container. Implementations return an error for anything
// that is not a container and never panic on hostile input.
type Probe interface {
	Open(root string) ([]Account, error)
}

// ProbeFunc adapts a function to [Probe].
type ProbeFunc func(root string) ([]Account, error)

// Open calls f(root).
func (f ProbeFunc) Open(root string) ([]Account, error) {
	return f(root)
}

// Desktop is the [Probe] for real Telegram Desktop containers.
type Desktop struct {
	// Passcode is the local passcode, nil when none is set.
	Passcode []byte
}

// Open reads every account of the container at root.
func (d Desktop) Open(root string) ([]Account, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(ErrNotContainer, err.Error())
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotContainer, "%s is not a directory", root)
	}

	raw, err := tdesktop.Read(root, d.Passcode)
	if err != nil {
		return nil, errors.Wrap(err, "read tdesktop")
	}
	if len(raw) == 0 {
		return nil, ErrNoAccounts
	}

	accounts := make([]Account, 0, len(raw))
	for i, a := range raw {
		data, err := session.TDesktopSession(a)
		if err != nil {
			return nil, errors.Wrapf(err, "account %d", i)
		}
		acc, err := fromData(data)
		if err != nil {
			return nil, errors.Wrapf(err, "account %d", i)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func fromData(data *session.Data) (Account, error) {
	if data == nil {
		return Account{}, errors.New("empty session data")
	}
	acc := Account{
		DC:      data.DC,
		AuthKey: append([]byte(nil), data.AuthKey...),
	}
	if data.Addr == "" {
		return acc, nil
	}
	addr, err := netip.ParseAddrPort(data.Addr)
	if err != nil {
		return Account{}, errors.Wrapf(err, "parse address %q", data.Addr)
	}
	acc.Addr = addr
	return acc, nil
}
