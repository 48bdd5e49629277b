package tracking

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const (
	ipv4DisplayBits = 24
	ipv6DisplayBits = 48
)

// NetworkIdentity is what the engine keeps of a client address: a coarse
// prefix for display and a salted hash for exact-match correlation.
type NetworkIdentity struct {
	Truncated string
	Hash      string
}

// ClientIP returns the first X-Forwarded-For entry, falling back to the
// peer address of the connection. The result may be unparseable.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Identify derives both identity values at once.
func Identify(salt, rawIP string) NetworkIdentity {
	return NetworkIdentity{Truncated: TruncateIP(rawIP), Hash: HashIP(salt, rawIP)}
}

// TruncateIP returns the /24 (IPv4) or /48 (IPv6) network of rawIP in CIDR
// notation, or "" when rawIP is not an address.
func TruncateIP(rawIP string) string {
	addr, ok := parseAddr(rawIP)
	if !ok {
		return ""
	}
	bits := ipv6DisplayBits
	if addr.Is4() {
		bits = ipv4DisplayBits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return ""
	}
	return prefix.String()
}

// HashIP returns the hex SHA-256 of "salt:addr", or "" when rawIP is not an
// address. The address is canonicalized first so equal addresses written
// differently hash the same.
func HashIP(salt, rawIP string) string {
	addr, ok := parseAddr(rawIP)
	if !ok {
		return ""
	}
	sum := sha256.Sum256([]byte(salt + ":" + addr.String()))
	return hex.EncodeToString(sum[:])
}

func parseAddr(raw string) (netip.Addr, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		ap, perr := netip.ParseAddrPort(raw)
		if perr != nil {
			return netip.Addr{}, false
		}
		addr = ap.Addr()
	}
	return addr.Unmap().WithZone(""), true
}
