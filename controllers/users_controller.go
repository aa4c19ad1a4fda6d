package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/auth"
)

// GET /admin/users/:id  (role-gated via the route registry)
func GetUser(store auth.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := store.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"name":      user.Name,
			"role":      user.Role,
			"createdAt": user.CreatedAt,
			"updatedAt": user.UpdatedAt,
		})
	}
}
