package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/form"
	"silant-backend/internal/model"
)

type partyRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=255"`
	UserID      int64  `json:"user_id" binding:"required,gt=0"`
}

func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.store.ListClients(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": clients})
}

// CreateClient links a user to a new client.
func (h *Handler) CreateClient(c *gin.Context) {
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	client := model.Client{Title: req.Title, Description: req.Description, UserID: req.UserID}
	if err := h.store.CreateClient(c.Request.Context(), &client); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (h *Handler) ListServiceCompanies(c *gin.Context) {
	companies, err := h.store.ListServiceCompanies(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": companies})
}

// CreateServiceCompany links a user to a new service company.
func (h *Handler) CreateServiceCompany(c *gin.Context) {
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	company := model.ServiceCompany{Title: req.Title, Description: req.Description, UserID: req.UserID}
	if err := h.store.CreateServiceCompany(c.Request.Context(), &company); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}
