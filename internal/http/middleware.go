package http

import (
	"net/http"
	"time"

	"custodia/internal/domain"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// rateLimit keys on client IP, before authentication, one-minute fixed
// window.
func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil || s.cfg.RateLimitPerMin <= 0 {
			return
		}
		decision, err := s.limiter.Allow(c.Request.Context(), c.ClientIP(), s.cfg.RateLimitPerMin, time.Minute)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "rate limiter unavailable"})
			return
		}
		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests"})
			return
		}
	}
}

// requireAction authenticates the caller and checks the role policy for the
// named action, storing the actor for handlers.
func (s *Server) requireAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.auth == nil || s.authz == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "auth misconfigured"})
			return
		}
		actor, err := s.auth.Authenticate(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication failed"})
			return
		}
		allowed, err := s.authz.Allow(c.Request.Context(), actor, action)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Message: "policy evaluation failed"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Code: "FORBIDDEN", Message: "role not permitted for " + action})
			return
		}
		c.Set(actorKey, actor)
	}
}

func currentActor(c *gin.Context) domain.Actor {
	value, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}
	}
	actor, _ := value.(domain.Actor)
	return actor
}
