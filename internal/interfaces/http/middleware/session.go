package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lpcheniris/shopify-demo/internal/domain/integration"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/logger"
)

// Session headers set by the embedding app shell
const (
	ShopHeader        = logger.ShopHeader
	AccessTokenHeader = "X-Shopify-Access-Token"
)

// SessionKey is the gin context key of the resolved shop session
const SessionKey = "shop_session"

// Session resolves the shop session of a request from its headers, falling
// back to the configured session. The configured token is only used for the
// configured shop. Requests without a usable session continue and handlers
// decide whether they need one.
func Session(fallback integration.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := integration.Session{
			Shop:        strings.TrimSpace(c.GetHeader(ShopHeader)),
			AccessToken: strings.TrimSpace(c.GetHeader(AccessTokenHeader)),
		}
		if session.Shop == "" {
			session.Shop = fallback.Shop
		}
		if session.AccessToken == "" && strings.EqualFold(session.Shop, fallback.Shop) {
			session.AccessToken = fallback.AccessToken
		}
		c.Set(SessionKey, session)
		c.Next()
	}
}

// GetSession returns the session resolved by Session
func GetSession(c *gin.Context) (integration.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return integration.Session{}, false
	}
	session, ok := v.(integration.Session)
	return session, ok
}
