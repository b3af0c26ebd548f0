package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	e "silant-backend/internal/errors"
	"silant-backend/internal/form"
	"silant-backend/internal/model"
)

type referenceRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=255"`
}

// referenceKind resolves the :kind segment; unknown kinds are 404.
func (h *Handler) referenceKind(c *gin.Context) (model.ReferenceKind, bool) {
	kind, ok := model.LookupReferenceKind(c.Param("kind"))
	if !ok {
		h.fail(c, e.ErrNotFound)
	}
	return kind, ok
}

// ListReferenceKinds names the reference tables.
func (h *Handler) ListReferenceKinds(c *gin.Context) {
	kinds := make([]gin.H, len(model.ReferenceKinds))
	for i, k := range model.ReferenceKinds {
		kinds[i] = gin.H{"name": k.Name, "label": k.Label}
	}
	c.JSON(http.StatusOK, gin.H{"items": kinds})
}

func (h *Handler) ListReferences(c *gin.Context) {
	kind, ok := h.referenceKind(c)
	if !ok {
		return
	}
	refs, err := h.store.ListReferences(c.Request.Context(), kind)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": refs})
}

func (h *Handler) GetReference(c *gin.Context) {
	kind, ok := h.referenceKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ref, err := h.store.GetReference(c.Request.Context(), kind, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

func (h *Handler) CreateReference(c *gin.Context) {
	kind, ok := h.referenceKind(c)
	if !ok {
		return
	}
	var req referenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	ref := model.Reference{Title: req.Title, Description: req.Description}
	if err := h.store.CreateReference(c.Request.Context(), kind, &ref); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

func (h *Handler) UpdateReference(c *gin.Context) {
	kind, ok := h.referenceKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req referenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	ref := model.Reference{ID: id, Title: req.Title, Description: req.Description}
	if err := h.store.UpdateReference(c.Request.Context(), kind, &ref); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ref)
}

// DeleteReference removes a reference row. Rows still in use are refused.
func (h *Handler) DeleteReference(c *gin.Context) {
	kind, ok := h.referenceKind(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteReference(c.Request.Context(), kind, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
