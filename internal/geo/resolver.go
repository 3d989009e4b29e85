// Package geo maps an incoming request to a two-letter jurisdiction code.
package geo

import (
	"net"
	"net/http"
	"strings"

	"github.com/zfogg/postcheck/internal/logger"
	"go.uber.org/zap"
)

// Source records where a code came from
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceHeader   Source = "header"
	SourceGeoIP    Source = "geoip"
	SourceNone     Source = "none"
)

// DefaultHeaders are the CDN geolocation headers checked in order
var DefaultHeaders = []string{"CF-IPCountry", "X-Vercel-IP-Country", "X-Country-Code"}

// Resolution is the outcome of Resolve. Code is empty when nothing matched
// and the table default should apply.
type Resolution struct {
	Code   string `json:"code"`
	Source Source `json:"source"`
}

// Locator maps an IP address to an ISO country code
type Locator interface {
	Country(ip net.IP) (string, error)
}

// Resolver picks a jurisdiction code from an explicit value, CDN headers or
// a GeoIP lookup, in that order.
type Resolver struct {
	headers []string
	locator Locator
}

// NewResolver returns a resolver. headers defaults to DefaultHeaders and
// locator may be nil.
func NewResolver(headers []string, locator Locator) *Resolver {
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	return &Resolver{headers: headers, locator: locator}
}

// Resolve never fails. An explicit value is trusted as given (trimmed and
// upper-cased) so an unknown code can still be reported; header and GeoIP
// values must look like ISO codes.
func (res *Resolver) Resolve(explicit string, r *http.Request) Resolution {
	if code := strings.ToUpper(strings.TrimSpace(explicit)); code != "" {
		return Resolution{Code: code, Source: SourceExplicit}
	}
	if r == nil {
		return Resolution{Source: SourceNone}
	}

	for _, h := range res.headers {
		if code, ok := normalize(r.Header.Get(h)); ok {
			return Resolution{Code: code, Source: SourceHeader}
		}
	}

	if res.locator != nil {
		if ip := clientIP(r); ip != nil && ip.IsGlobalUnicast() && !ip.IsPrivate() {
			country, err := res.locator.Country(ip)
			if err != nil {
				logger.Log.Debug("GeoIP lookup failed", zap.String("ip", ip.String()), zap.Error(err))
			} else if code, ok := normalize(country); ok {
				return Resolution{Code: code, Source: SourceGeoIP}
			}
		}
	}

	return Resolution{Source: SourceNone}
}

// normalize accepts two ASCII letters, ignoring Cloudflare's unknown (XX)
// and Tor (T1) markers.
func normalize(v string) (string, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if len(v) != 2 || v == "XX" || v == "T1" {
		return "", false
	}
	for i := 0; i < 2; i++ {
		if v[i] < 'A' || v[i] > 'Z' {
			return "", false
		}
	}
	return v, true
}

func clientIP(r *http.Request) net.IP {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
