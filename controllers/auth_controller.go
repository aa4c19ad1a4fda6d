package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/auth"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/dto"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/middleware"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/models"
)

// POST /auth/signup/:role
func SignUp(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := models.ParseRole(c.Param("role"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var body dto.SignupDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pair, err := service.SignUp(c.Request.Context(), body.Email, body.Password, body.Name, role)
		if err != nil {
			respondAuthError(c, err)
			return
		}
		c.JSON(http.StatusCreated, pair)
	}
}

// POST /auth/signin
func SignIn(service *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SigninDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		pair, err := service.SignIn(c.Request.Context(), body.Email, body.Password)
		if err != nil {
			respondAuthError(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

// POST /auth/logout
//
// The bearer token is verified against the access key before its subject id
// is trusted; the unverified context value is not enough for a state change.
func Logout(service *auth.Service, issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := issuer.Verify(token, auth.AccessKey)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		ok, err = service.Logout(c.Request.Context(), claims.UserID)
		if err != nil {
			respondAuthError(c, err)
			return
		}
		c.JSON(http.StatusOK, ok)
	}
}

// POST /auth/refresh
//
// The refresh token itself is the bearer credential. It is verified under the
// refresh key (never the access key) before the subject id is extracted, then
// exchanged and rotated by the service.
func Refresh(service *auth.Service, issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := middleware.BearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := issuer.Verify(token, auth.RefreshKey)
		if err != nil {
			respondAuthError(c, err)
			return
		}

		pair, err := service.RefreshTokens(c.Request.Context(), claims.UserID, token)
		if err != nil {
			respondAuthError(c, err)
			return
		}
		c.JSON(http.StatusOK, pair)
	}
}

// GET /auth/me
//
// Returns the decoded (unverified) claims of the current bearer token. Pure
// convenience; nothing here authorizes anything.
func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusOK, nil)
			return
		}
		c.JSON(http.StatusOK, claims)
	}
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
