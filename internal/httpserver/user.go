package httpserver

import (
	"net/http"
	"time"

	usersvc "food-delivery/internal/service/user"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handlers) signup(c *gin.Context) {
	var req usersvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	u, sess, err := h.deps.UserSvc.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "User not found")
		return
	}
	h.setTokenCookie(c, sess)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created successfully",
		"user":    u,
		"token":   sess.Token,
	})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("email and password required"))
		return
	}
	u, sess, err := h.deps.UserSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "User not found")
		return
	}
	h.setTokenCookie(c, sess)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome back " + u.Fullname,
		"user":    u,
		"token":   sess.Token,
	})
}

func (h *handlers) logout(c *gin.Context) {
	if err := h.deps.UserSvc.Logout(c.Request.Context(), requestToken(c)); err != nil {
		respondError(c, h.logger, err, "User not found")
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully."})
}

func (h *handlers) checkAuth(c *gin.Context) {
	u, err := h.deps.UserSvc.Get(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req usersvc.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, failure("invalid request body"))
		return
	}
	u, err := h.deps.UserSvc.UpdateProfile(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, h.logger, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u, "message": "Profile updated successfully"})
}

func (h *handlers) setTokenCookie(c *gin.Context, sess usersvc.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.deps.UserSvc.TokenTTL().Seconds())
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(tokenCookie, sess.Token, maxAge, "/", "", false, true)
}
