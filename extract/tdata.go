package extract

import (
	"fmt"

	"github.com/MrEthical07/tgsession/dc"
	"github.com/MrEthical07/tgsession/session"
	"github.com/MrEthical07/tgsession/tdata"
)

// TData reads the first account of the container at root. The container's
// own endpoint is used when it records one, otherwise resolver supplies it.
func TData(probe tdata.Probe, resolver dc.Resolver, root string) (*session.Record, error) {
	if probe == nil {
		probe = tdata.Desktop{}
	}
	accounts, err := probe.Open(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, tdata.ErrNoAccounts)
	}

	acc := accounts[0]
	endpoint := session.Endpoint{IP: acc.Addr.Addr(), Port: acc.Addr.Port()}
	if !acc.Addr.IsValid() {
		endpoint, err = resolve(resolver, acc.DC)
		if err != nil {
			return nil, err
		}
	}
	return session.NewRecord(acc.DC, endpoint, acc.AuthKey), nil
}
