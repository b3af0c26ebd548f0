package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/auth"
	e "silant-backend/internal/errors"
	"silant-backend/internal/form"
	"silant-backend/internal/model"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
}

func renderUser(u model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, IsSuperuser: u.IsSuperuser, IsStaff: u.IsStaff}
}

// Login exchanges a username and password for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, form.BindError(err))
		return
	}

	token, user, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": renderUser(user)})
}

// Register creates a user without any role when signups are open.
func (h *Handler) Register(c *gin.Context) {
	if !h.allowSignups {
		h.fail(c, e.ErrSignupClosed)
		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, form.BindError(err))
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, renderUser(user))
}

// Me describes the caller and the role it was resolved to.
func (h *Handler) Me(c *gin.Context) {
	user, _ := auth.UserFrom(c)
	p := auth.PrincipalFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"user":     renderUser(user),
		"role":     p.Role.String(),
		"party_id": p.PartyID,
	})
}
