package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/queueflow/queueflow-api/internal/model"
)

// ContextClaims is the gin context key holding the caller's token claims.
const ContextClaims = "claims"

// Claims returns the authenticated caller's claims. Routes behind the auth
// middleware can rely on ok being true.
func Claims(c *gin.Context) (*model.TokenClaims, bool) {
	v, exists := c.Get(ContextClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*model.TokenClaims)
	return claims, ok
}
