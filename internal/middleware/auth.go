package middleware

import (
	"net/http"

	"readshelf/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// AdminHeader names an admin for session-less callers such as the
// reconcile tool.
const AdminHeader = "X-Admin-Username"

// LoadUser retrieves user from session and sets to context
func LoadUser(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			result := conn.First(&user, userID)
			if result.Error == nil {
				c.Set(CheckUserKey, &user)

				// Fetch Unread Notification Count
				var count int64
				conn.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", user.ID, false).Count(&count)
				c.Set(UnreadCountKey, count)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the logged in user, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "login required"})
			return
		}
		c.Next()
	}
}

// AdminRequired accepts a logged in admin, or a request whose AdminHeader
// names an existing admin.
func AdminRequired(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c).IsAdmin() {
			c.Next()
			return
		}

		if name := c.GetHeader(AdminHeader); name != "" {
			var user models.User
			if err := conn.Where("username = ?", name).First(&user).Error; err == nil && user.IsAdmin() {
				c.Set(CheckUserKey, &user)
				c.Next()
				return
			}
		}

		if CurrentUser(c) == nil && c.GetHeader(AdminHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "login required"})
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "admin only"})
	}
}
