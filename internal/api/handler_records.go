package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/auth"
	"silant-backend/internal/events"
	"silant-backend/internal/filter"
	"silant-backend/internal/form"
)

func (h *Handler) ListMaintenance(c *gin.Context) {
	criteria := filter.MaintenanceCriteriaFrom(c.Request.URL.Query())
	page, err := h.store.ListMaintenance(c.Request.Context(), auth.PrincipalFrom(c),
		h.listOptions(c, h.pages.Maintenance, criteria.Scopes()))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(page, renderMaintenance))
}

func (h *Handler) GetMaintenance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.store.GetMaintenance(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, renderMaintenance(m))
}

func (h *Handler) CreateMaintenance(c *gin.Context) {
	ctx := c.Request.Context()
	p := auth.PrincipalFrom(c)

	var in form.MaintenanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	m, err := in.Validate(ctx, h.store, form.Context{Principal: p})
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.CreateMaintenance(ctx, &m); err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.store.GetMaintenance(ctx, p, m.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := renderMaintenance(created)
	h.saved(c, events.Created, events.KindMaintenance, created.ID, body)
	c.Header("Location", "/api/maintenance/"+itoa(created.ID))
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) UpdateMaintenance(c *gin.Context) {
	ctx := c.Request.Context()
	p := auth.PrincipalFrom(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in form.MaintenanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	m, err := in.Validate(ctx, h.store, form.Context{Principal: p})
	if err != nil {
		h.fail(c, err)
		return
	}
	m.ID = id
	if err := h.store.UpdateMaintenance(ctx, p, &m); err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.store.GetMaintenance(ctx, p, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := renderMaintenance(updated)
	h.saved(c, events.Updated, events.KindMaintenance, id, body)
	c.JSON(http.StatusOK, body)
}

func (h *Handler) DeleteMaintenance(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteMaintenance(c.Request.Context(), auth.PrincipalFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	h.saved(c, events.Deleted, events.KindMaintenance, id, nil)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListClaims(c *gin.Context) {
	criteria := filter.ClaimCriteriaFrom(c.Request.URL.Query())
	page, err := h.store.ListClaims(c.Request.Context(), auth.PrincipalFrom(c),
		h.listOptions(c, h.pages.Claims, criteria.Scopes()))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(page, renderClaim))
}

func (h *Handler) GetClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	claim, err := h.store.GetClaim(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, renderClaim(claim))
}

// CreateClaim saves a claim and queues alerts about it.
func (h *Handler) CreateClaim(c *gin.Context) {
	ctx := c.Request.Context()
	p := auth.PrincipalFrom(c)

	var in form.ClaimInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	claim, err := in.Validate(ctx, h.store, form.Context{Principal: p})
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.CreateClaim(ctx, &claim); err != nil {
		h.fail(c, err)
		return
	}
	if h.alerts != nil {
		h.alerts.Dispatch(claim.ID)
	}

	created, err := h.store.GetClaim(ctx, p, claim.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := renderClaim(created)
	h.saved(c, events.Created, events.KindClaim, created.ID, body)
	c.Header("Location", "/api/claims/"+itoa(created.ID))
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) UpdateClaim(c *gin.Context) {
	ctx := c.Request.Context()
	p := auth.PrincipalFrom(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in form.ClaimInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	claim, err := in.Validate(ctx, h.store, form.Context{Principal: p})
	if err != nil {
		h.fail(c, err)
		return
	}
	claim.ID = id
	if err := h.store.UpdateClaim(ctx, p, &claim); err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.store.GetClaim(ctx, p, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := renderClaim(updated)
	h.saved(c, events.Updated, events.KindClaim, id, body)
	c.JSON(http.StatusOK, body)
}

func (h *Handler) DeleteClaim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteClaim(c.Request.Context(), auth.PrincipalFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	h.saved(c, events.Deleted, events.KindClaim, id, nil)
	c.Status(http.StatusNoContent)
}
