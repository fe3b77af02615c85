package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userIDKey       = "user_id"
)

// tokenClaims are the claims read from the hosted backend's access tokens
type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var errMissingToken = errors.New("missing bearer token")

// requestIDMiddleware propagates or assigns a request id
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// authMiddleware verifies the bearer token and records the caller's user id.
// The first request of each user in this process also upserts the user row.
func (s *Server) authMiddleware() gin.HandlerFunc {
	secret := []byte(s.config.JWTSecret)

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		claims, err := parseToken(c.GetHeader("Authorization"), secret)
		if err != nil {
			s.logger.Warn("Rejected request", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "unauthorized",
			})
			return
		}

		userID := claims.Subject
		if _, seen := s.knownUsers.Load(userID); !seen && s.services.Users != nil {
			if err := s.services.Users.Ensure(c.Request.Context(), userID, claims.Email); err != nil {
				s.logger.Error("Failed to register user", "user_id", userID, "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
					Success: false,
					Error:   "failed to load user",
				})
				return
			}
			s.knownUsers.Store(userID, struct{}{})
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// parseToken verifies an HS256 "Bearer <jwt>" header value
func parseToken(header string, secret []byte) (*tokenClaims, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is not configured")
	}

	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil, errMissingToken
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// currentUser returns the authenticated user id
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
