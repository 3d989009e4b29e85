package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/postcheck/internal/errors"
	"github.com/zfogg/postcheck/internal/util"
)

// JurisdictionKey is set by handlers once a country code is resolved
const JurisdictionKey = "jurisdiction"

// IdentityConfig controls which request headers may name the caller
type IdentityConfig struct {
	// APIKeys are the accepted X-API-Key values. With none configured the
	// header is ignored; otherwise an unknown key is rejected with 401.
	APIKeys []string
	// TrustUserHeader honours X-User-ID. Only enable it behind a gateway
	// that authenticates users and overwrites the header.
	TrustUserHeader bool
}

// CallerIdentity derives the caller id used for rate limiting and history.
// An X-API-Key is never stored, only a prefix of its digest.
func CallerIdentity(cfg IdentityConfig) gin.HandlerFunc {
	keys := make(map[string]struct{}, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys[util.Digest(k)] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" && len(keys) > 0 {
			digest := util.Digest(key)
			if _, ok := keys[digest]; !ok {
				RecordError("unauthorized", c.FullPath())
				util.AbortWithAPIError(c, errors.Unauthorized("invalid API key"))
				return
			}
			c.Set(util.CallerIDKey, "key:"+digest[:16])
			c.Next()
			return
		}

		if cfg.TrustUserHeader {
			if user := strings.TrimSpace(c.GetHeader("X-User-ID")); user != "" {
				if len(user) > 128 {
					user = user[:128]
				}
				c.Set(util.CallerIDKey, "user:"+user)
				c.Next()
				return
			}
		}

		c.Set(util.CallerIDKey, "ip:"+c.ClientIP())
		c.Next()
	}
}

// TrustProxies sets the peers whose X-Forwarded-For gin believes. An empty
// list trusts none, so ClientIP is the socket peer address.
func TrustProxies(r *gin.Engine, proxies []string) error {
	if len(proxies) == 0 {
		return r.SetTrustedProxies(nil)
	}
	return r.SetTrustedProxies(proxies)
}
