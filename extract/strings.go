package extract

import (
	"net/netip"

	"github.com/MrEthical07/tgsession/dc"
	"github.com/MrEthical07/tgsession/session"
	"github.com/MrEthical07/tgsession/structcodec"
)

// TelethonString decodes a Telethon string session. The address is taken
// from the string itself.
func TelethonString(s string) (*session.Record, error) {
	t, err := structcodec.DecodeTelethon(s)
	if err != nil {
		return nil, err
	}

	ip, _ := netip.AddrFromSlice(t.Address)
	return session.NewRecord(int(t.DC), session.Endpoint{IP: ip, Port: t.Port}, t.AuthKey[:]), nil
}

// PyrogramString decodes a Pyrogram string session and resolves its endpoint
// through resolver.
func PyrogramString(s string, resolver dc.Resolver) (*session.Record, error) {
	p, err := structcodec.DecodePyrogram(s)
	if err != nil {
		return nil, err
	}

	endpoint, err := resolve(resolver, int(p.DC))
	if err != nil {
		return nil, err
	}

	r := session.NewRecord(int(p.DC), endpoint, p.AuthKey[:])
	r.TestMode = p.TestMode
	r.IsBot = p.IsBot
	userID := int64(p.UserID)
	r.UserID = &userID
	if p.Variant == structcodec.VariantPyrogram {
		id := p.APIID
		r.APIID = &id
	}
	return r, nil
}
