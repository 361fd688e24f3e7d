package dc

import (
	"errors"
	"net/netip"
	"testing"
)

func TestTableResolve(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		dc   int
		want string
	}{
		{name: "prod dc2", dc: 2, want: "149.154.167.51:443"},
		{name: "prod dc5", dc: 5, want: "91.108.56.130:443"},
		{name: "prod dc203", dc: 203, want: "91.105.192.100:443"},
		{name: "media dc4", opts: Options{Media: true}, dc: 4, want: "149.154.164.250:443"},
		{name: "media falls back to prod", opts: Options{Media: true}, dc: 1, want: "149.154.175.53:443"},
		{name: "test dc2", opts: Options{TestMode: true}, dc: 2, want: "149.154.167.40:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTable(tt.opts).Resolve(tt.dc)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != netip.MustParseAddrPort(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTableUnknownDatacenter(t *testing.T) {
	for _, id := range []int{0, 6, -1, 121} {
		if _, err := Default().Resolve(id); !errors.Is(err, ErrUnknownDatacenter) {
			t.Fatalf("dc %d: expected ErrUnknownDatacenter, got %v", id, err)
		}
	}
	if _, err := NewTable(Options{TestMode: true}).Resolve(4); !errors.Is(err, ErrUnknownDatacenter) {
		t.Fatalf("expected ErrUnknownDatacenter for test dc 4, got %v", err)
	}
}
