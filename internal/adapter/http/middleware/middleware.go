package middleware

import (
	"net/http"
	"strings"
	"time"

	"billing-engine/internal/core/ports"
	"billing-engine/pkg/apperror"
	"billing-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Context keys set by the auth middlewares below.
const (
	CtxPrincipalID = "principal_id"
	CtxIsStaff     = "is_staff"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(authHeader, "Bearer "), true
}

func validateBearer(c *gin.Context, tokenSvc ports.TokenService) (*ports.TokenClaims, bool) {
	tokenStr, ok := bearerToken(c)
	if !ok {
		response.Error(c, apperror.Unauthorized("missing bearer token"))
		c.Abort()
		return nil, false
	}
	claims, err := tokenSvc.Validate(tokenStr)
	if err != nil {
		response.Error(c, apperror.Unauthorized("invalid or expired token"))
		c.Abort()
		return nil, false
	}
	return claims, true
}

// RequireUser accepts any authenticated principal, merchant or staff
// (the "user" auth tier in the external interfaces table).
func RequireUser(tokenSvc ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, tokenSvc)
		if !ok {
			return
		}
		c.Set(CtxPrincipalID, claims.PrincipalID)
		c.Set(CtxIsStaff, claims.IsStaff)
		c.Next()
	}
}

// RequireMerchant accepts only an authenticated merchant principal.
func RequireMerchant(tokenSvc ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, tokenSvc)
		if !ok {
			return
		}
		if claims.IsStaff {
			response.Error(c, apperror.Unauthorized("merchant credentials required"))
			c.Abort()
			return
		}
		c.Set(CtxPrincipalID, claims.PrincipalID)
		c.Set(CtxIsStaff, false)
		c.Next()
	}
}

// RequireStaff accepts only an authenticated staff principal.
func RequireStaff(tokenSvc ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := validateBearer(c, tokenSvc)
		if !ok {
			return
		}
		if !claims.IsStaff {
			response.Error(c, apperror.Unauthorized("staff credentials required"))
			c.Abort()
			return
		}
		c.Set(CtxPrincipalID, claims.PrincipalID)
		c.Set(CtxIsStaff, true)
		c.Next()
	}
}

// OptionalUser attaches principal claims to the context when a valid
// bearer token is present, but never rejects the request when absent or
// invalid (the "optional" auth tier on POST /pay/{token}).
func OptionalUser(tokenSvc ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			c.Next()
			return
		}
		c.Set(CtxPrincipalID, claims.PrincipalID)
		c.Set(CtxIsStaff, claims.IsStaff)
		c.Next()
	}
}

// RequestLogger logs every HTTP request with its latency and status.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery is a panic recovery middleware matching the engine's
// {exc_type,exc} 500 response shape.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.EngineErrorResponse{
					ExcType: "panic",
					Exc:     "internal server error",
				})
			}
		}()
		c.Next()
	}
}
