package middleware

import (
	"errors"
	"strings"

	"github.com/amoylab/nextcrm/internal/auth/jwt"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// JWTAuthMiddleware validates the bearer token and stores the caller it
// carries on the context
func JWTAuthMiddleware(jwtService *jwt.Service, errs *errorx.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || scheme != "Bearer" || token == "" {
			errs.HandleError(c, errorx.ErrUnauthorized.Clone())
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				errs.HandleError(c, errorx.ErrTokenExpired.Clone())
				return
			}
			errs.HandleError(c, errorx.ErrUnauthorized.Clone())
			return
		}

		c.Set(callerKey, claims.Caller())
		c.Next()
	}
}

// CallerFrom returns the caller stored by JWTAuthMiddleware. A request that
// skipped the middleware gets the zero caller, which has no user id.
func CallerFrom(c *gin.Context) scope.Caller {
	caller, _ := c.Get(callerKey)
	v, _ := caller.(scope.Caller)
	return v
}
