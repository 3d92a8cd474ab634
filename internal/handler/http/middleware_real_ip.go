// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/MKhiriev/dealer-auth/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// parseTrustedProxies turns IP addresses and CIDR prefixes into prefixes.
// Invalid entries are logged and skipped.
func parseTrustedProxies(entries []string, log *logger.Logger) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warn().Str("proxy", entry).Msg("invalid trusted proxy skipped")
			continue
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes
}

// withRealIP rewrites RemoteAddr from the forwarding headers, but only for
// connections coming from a trusted proxy. Everyone else is identified by
// the socket address, so the headers cannot change the rate limit key.
func (h *Handler) withRealIP(next http.Handler) http.Handler {
	if len(h.trustedProxies) == 0 {
		return next
	}

	forwarded := middleware.RealIP(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.fromTrustedProxy(r.RemoteAddr) {
			forwarded.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) fromTrustedProxy(remoteAddr string) bool {
	addrPort, err := netip.ParseAddrPort(remoteAddr)
	var addr netip.Addr
	if err == nil {
		addr = addrPort.Addr()
	} else if addr, err = netip.ParseAddr(remoteAddr); err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range h.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
