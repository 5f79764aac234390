package url_shortener

import (
	"net"
	"regexp"
	"strconv"
	"strings"
)

const DefaultHost = "example.com"

var hostnamePattern = regexp.MustCompile(`^(?i)[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

// HostPolicy decides which domain goes into a short URL. The Host header is
// client-controlled, so it is only used when it is well formed and, if an
// allow-list is set, listed. PublicHost, when set, overrides the header.
type HostPolicy struct {
	PublicHost   string
	DefaultHost  string
	AllowedHosts []string
}

// Resolve returns the host to embed and whether the caller's header was
// accepted as is. A fixed PublicHost counts as accepted.
func (p HostPolicy) Resolve(header string) (string, bool) {
	if p.PublicHost != "" {
		return p.PublicHost, true
	}

	fallback := p.DefaultHost
	if fallback == "" {
		fallback = DefaultHost
	}

	host := strings.ToLower(strings.TrimSpace(header))
	if host == "" {
		return fallback, true
	}

	if !validHost(host) || !p.allowed(host) {
		return fallback, false
	}
	return host, true
}

func (p HostPolicy) allowed(host string) bool {
	if len(p.AllowedHosts) == 0 {
		return true
	}

	name := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		name = h
	}
	for _, a := range p.AllowedHosts {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == host || a == name {
			return true
		}
	}
	return false
}

func validHost(host string) bool {
	name := host
	if strings.Contains(host, ":") {
		h, port, err := net.SplitHostPort(host)
		if err != nil {
			return false
		}
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return false
		}
		name = h
	}

	if len(name) == 0 || len(name) > 253 {
		return false
	}
	if ip := net.ParseIP(name); ip != nil {
		return true
	}
	return hostnamePattern.MatchString(name)
}
