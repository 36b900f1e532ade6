package helpers

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// BearerToken extrae el token de "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// TrustedProxies son los rangos de proxies cuyos X-Forwarded-For / X-Real-IP
// se aceptan. Vacío: solo cuenta la dirección del peer.
type TrustedProxies []netip.Prefix

func (tp TrustedProxies) trusts(a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range tp {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// ClientIP devuelve la IP del peer. Si el peer es un proxy de confianza,
// recorre X-Forwarded-For de derecha a izquierda y se queda con el primer hop
// que no es de confianza; los hops a la izquierda los controla el cliente.
func (tp TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	addr, err := netip.ParseAddr(peer)
	if err != nil || !tp.trusts(addr) {
		return peer
	}

	client := peer
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				// hop basura: nos quedamos con el último proxy confiable
				return client
			}
			client = hop.Unmap().String()
			if !tp.trusts(hop) {
				return client
			}
		}
		return client
	}
	if xr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xr.Unmap().String()
	}
	return peer
}

// ClientIP es la IP del peer, sin mirar headers de proxy.
func ClientIP(r *http.Request) string {
	return TrustedProxies(nil).ClientIP(r)
}

func remoteHost(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
