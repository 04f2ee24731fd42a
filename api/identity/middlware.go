package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-zkmaze/service"
	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextClientClaims is the key used to store token claims in the Gin context.
	ContextClientClaims = "clientClaims"
	// ContextClientID is the key used to store the authenticated client id.
	ContextClientID = "clientID"
)

// Authoriz rejects requests without a valid bearer token and stores the client id of
// the token in the context.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		raw, _ := claims[service.ClaimClientID].(string)
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(ContextClientClaims, claims)
		c.Set(ContextClientID, id)
		c.Next()
	}
}

// ClientID returns the client authenticated by Authoriz.
func ClientID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextClientID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
