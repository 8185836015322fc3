package helpers

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyHeaders en orden de preferencia.
var proxyHeaders = []string{"X-Forwarded-For", "X-Real-IP", "Client-IP"}

// reservedPrefixes son rangos que nunca identifican a un cliente real.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("::ffff:0:0/96"),
}

// ClientIP resuelve la IP del cliente. Con trustHeaders toma la primera IP
// pública de X-Forwarded-For, X-Real-IP o Client-IP; si no hay, usa RemoteAddr.
func ClientIP(r *http.Request, trustHeaders bool) string {
	if trustHeaders {
		for _, name := range proxyHeaders {
			v := r.Header.Get(name)
			if v == "" {
				continue
			}
			for _, part := range strings.Split(v, ",") {
				if ip, ok := publicIP(strings.TrimSpace(part)); ok {
					return ip
				}
			}
		}
	}
	return remoteIP(r.RemoteAddr)
}

func remoteIP(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func publicIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return "", false
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast() {
		return "", false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return "", false
		}
	}
	return addr.String(), true
}
