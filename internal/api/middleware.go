package api

import (
	"log"
	"net/http"
	"strings"

	"datalens/domain/core"
	apperrors "datalens/internal/errors"

	"github.com/gin-gonic/gin"
)

const (
	// OwnerHeader carries the caller identity issued by the session layer.
	OwnerHeader  = "X-Owner-ID"
	ownerKey     = "owner_id"
	defaultOwner = core.OwnerID("default")
)

// OwnerScope resolves the owner every configuration and report is scoped to.
// Requests without the header act as the shared default owner.
func OwnerScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if raw == "" {
			c.Set(ownerKey, defaultOwner)
			c.Next()
			return
		}
		owner, err := core.ParseOwnerID(raw)
		if err != nil || len(raw) > 255 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + OwnerHeader, "code": apperrors.CodeInvalidInput})
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func ownerFrom(c *gin.Context) core.OwnerID {
	if v, ok := c.Get(ownerKey); ok {
		if owner, ok := v.(core.OwnerID); ok {
			return owner
		}
	}
	return defaultOwner
}

// respondError maps an error to its status. Server-side failures hide details.
func respondError(c *gin.Context, err error) {
	code := apperrors.GetCode(err)
	status := apperrors.HTTPStatus(code)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg, "code": code})
}
