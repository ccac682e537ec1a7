package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nurseryhub/nursery-api/pkg/jwt"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"go.uber.org/zap"
)

// StaffContextKey is the key used to store the authenticated staff member in context
const StaffContextKey = "staff_member"

var (
	ErrStaffNotFound = errors.New("staff member not found in context")
	ErrInvalidStaff  = errors.New("invalid staff member type")
)

// StaffMember is the authenticated caller of the staff dashboard API
type StaffMember struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	ExpiresAt int64
}

// StaffAuthMiddleware validates the bearer token and requires a staff role
func StaffAuthMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			logger.Warn("Missing staff token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid staff token: %w", err)) //nolint:errcheck
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		if !jwt.IsStaffRole(claims.Role) {
			logger.Warn("Non-staff token rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("role", claims.Role),
			)
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}

		member := &StaffMember{
			UserID: claims.UserID,
			Email:  claims.Email,
			Name:   claims.Name,
			Role:   claims.Role,
		}
		if claims.ExpiresAt != nil {
			member.ExpiresAt = claims.ExpiresAt.Unix()
		}

		c.Set(StaffContextKey, member)
		c.Next()
	}
}

// GetStaffMember extracts the authenticated staff member from context
func GetStaffMember(c *gin.Context) (*StaffMember, error) {
	val, exists := c.Get(StaffContextKey)
	if !exists {
		return nil, ErrStaffNotFound
	}

	member, ok := val.(*StaffMember)
	if !ok {
		return nil, ErrInvalidStaff
	}

	return member, nil
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
