package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/authflow/pkg/reqid"
)

// TrustedProxies are the peer networks whose X-Forwarded-For is believed.
type TrustedProxies []*net.IPNet

// DefaultTrustedProxies trusts loopback only, which covers the pages
// server calling its own identity API.
func DefaultTrustedProxies() TrustedProxies {
	t, _ := ParseTrustedProxies([]string{"127.0.0.0/8", "::1/128"})
	return t
}

// ParseTrustedProxies accepts CIDRs and bare addresses.
func ParseTrustedProxies(specs []string) (TrustedProxies, error) {
	var out TrustedProxies
	for _, s := range specs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			ip := net.ParseIP(s)
			if ip == nil {
				return nil, fmt.Errorf("middleware: trusted proxy %q is not an address", s)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("middleware: trusted proxy %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Contains reports whether ip falls in any trusted network.
func (t TrustedProxies) Contains(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range t {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// RealIP resolves the client address once per request. The first
// X-Forwarded-For hop is used only when the direct peer is trusted;
// otherwise the header is ignored and the peer address is the client.
func RealIP(trusted TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := peerHost(r)
			if trusted.Contains(net.ParseIP(ip)) {
				if first := firstHop(r.Header.Get(reqid.ForwardedHeader)); first != "" {
					ip = first
				}
			}
			next.ServeHTTP(w, r.WithContext(reqid.WithClientIP(r.Context(), ip)))
		})
	}
}

func firstHop(fwd string) string {
	if fwd == "" {
		return ""
	}
	hop := strings.TrimSpace(strings.Split(fwd, ",")[0])
	if net.ParseIP(hop) == nil {
		return ""
	}
	return hop
}

func peerHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
