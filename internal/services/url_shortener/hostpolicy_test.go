package url_shortener

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostPolicy_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		policy       HostPolicy
		header       string
		wantHost     string
		wantAccepted bool
	}{
		{name: "plain host", header: "sho.rt", wantHost: "sho.rt", wantAccepted: true},
		{name: "host with port", header: "localhost:8080", wantHost: "localhost:8080", wantAccepted: true},
		{name: "ip with port", header: "127.0.0.1:8080", wantHost: "127.0.0.1:8080", wantAccepted: true},
		{name: "ipv6 with port", header: "[::1]:8080", wantHost: "[::1]:8080", wantAccepted: true},
		{name: "lower-cased and trimmed", header: "  Sho.RT ", wantHost: "sho.rt", wantAccepted: true},
		{name: "missing header uses default", header: "", wantHost: "example.com", wantAccepted: true},
		{name: "path injection", header: "evil.com/phish", wantHost: "example.com", wantAccepted: false},
		{name: "userinfo injection", header: "user@evil.com", wantHost: "example.com", wantAccepted: false},
		{name: "bad port", header: "sho.rt:99999", wantHost: "example.com", wantAccepted: false},
		{name: "label too long", header: strings.Repeat("a", 70) + ".com", wantHost: "example.com", wantAccepted: false},
		{
			name:         "custom default",
			policy:       HostPolicy{DefaultHost: "go.example"},
			header:       "bad host",
			wantHost:     "go.example",
			wantAccepted: false,
		},
		{
			name:         "allow-listed",
			policy:       HostPolicy{AllowedHosts: []string{"sho.rt", "s.example"}},
			header:       "s.example",
			wantHost:     "s.example",
			wantAccepted: true,
		},
		{
			name:         "allow-list matches without port",
			policy:       HostPolicy{AllowedHosts: []string{"localhost"}},
			header:       "localhost:8080",
			wantHost:     "localhost:8080",
			wantAccepted: true,
		},
		{
			name:         "not allow-listed",
			policy:       HostPolicy{AllowedHosts: []string{"sho.rt"}},
			header:       "attacker.example",
			wantHost:     "example.com",
			wantAccepted: false,
		},
		{
			name:         "public host overrides header",
			policy:       HostPolicy{PublicHost: "sho.rt"},
			header:       "attacker.example",
			wantHost:     "sho.rt",
			wantAccepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, accepted := tt.policy.Resolve(tt.header)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantAccepted, accepted)
		})
	}
}
