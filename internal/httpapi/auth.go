package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ctxUserID  = "user_id"
	ctxIsAdmin = "is_admin"
)

type apiClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.JWTSecret == "" {
			respondError(c, http.StatusServiceUnavailable, "authentication not configured")
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims := &apiClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !parsed.Valid {
			respondError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid subject")
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxIsAdmin, claims.Admin)
		c.Next()
	}
}

func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxIsAdmin) {
			respondError(c, http.StatusForbidden, "admin access required")
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	value, _ := c.Get(ctxUserID)
	userID, _ := value.(uuid.UUID)
	return userID
}
