package session

import "net/netip"

// Endpoint is the network address a session connects to.
type Endpoint struct {
	IP   netip.Addr
	Port uint16
}

// IsValid reports whether the endpoint carries an address.
func (e Endpoint) IsValid() bool {
	return e.IP.IsValid()
}

// Record is the client-agnostic session a converter extracts from one source row
// or one decoded string.
//
// Record instances are created once by an extractor and then treated as immutable.
type Record struct {
	DC       int
	Endpoint Endpoint
	AuthKey  []byte

	TakeoutID *int64
	UserID    *int64
	APIID     *uint32
	IsBot     bool
	TestMode  bool
}

// NewRecord builds a Record that owns a private copy of authKey.
func NewRecord(dc int, endpoint Endpoint, authKey []byte) *Record {
	key := make([]byte, len(authKey))
	copy(key, authKey)
	return &Record{
		DC:       dc,
		Endpoint: endpoint,
		AuthKey:  key,
	}
}
