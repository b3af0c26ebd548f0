package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"silant-backend/internal/auth"
	"silant-backend/internal/events"
	"silant-backend/internal/filter"
	"silant-backend/internal/form"
)

// ListMachines lists the caller's machines. Anonymous callers may only search
// by serial and see the unit composition of the matches.
func (h *Handler) ListMachines(c *gin.Context) {
	ctx := c.Request.Context()
	p := auth.PrincipalFrom(c)

	if !p.Authenticated() {
		page, err := h.store.SearchMachines(ctx, c.Query("serial"), h.listOptions(c, h.pages.Machines, nil))
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, pageOf(page, renderMachinePreview))
		return
	}

	criteria := filter.MachineCriteriaFrom(c.Request.URL.Query())
	page, err := h.store.ListMachines(ctx, p, h.listOptions(c, h.pages.Machines, criteria.Scopes()))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(page, renderMachine))
}

func (h *Handler) GetMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.store.GetMachine(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, renderMachine(m))
}

func (h *Handler) CreateMachine(c *gin.Context) {
	ctx := c.Request.Context()
	p := auth.PrincipalFrom(c)

	var in form.MachineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, form.BindError(err))
		return
	}
	m, err := in.Validate(ctx, h.store, form.Context{Principal: p})
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.CreateMachine(ctx, &m); err != nil {
		h.fail(c, err)
		return
	}

	created, err := h.store.GetMachine(ctx, p, m.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := renderMachine(created)
	h.saved(c, events.Created, events.KindMachine, created.ID, body)
	c.Header("Location", "/api/machines/"+itoa(created.ID))
	c.JSON(http.StatusCreated, body)
}

// UpdateMachine replaces a machine. Existing maintenance and claims keep the
// service company they were saved with until they are re-saved or resynced.
func (h *Handler) UpdateMachine(c *gin.Context) {
	ctx := c.Request.Context()
	p := auth.PrincipalFrom(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in form.MachineInput
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
	if err := h.store.UpdateMachine(ctx, p, &m); err != nil {
		h.fail(c, err)
		return
	}

	updated, err := h.store.GetMachine(ctx, p, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := renderMachine(updated)
	h.saved(c, events.Updated, events.KindMachine, id, body)
	c.JSON(http.StatusOK, body)
}

func (h *Handler) DeleteMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteMachine(c.Request.Context(), auth.PrincipalFrom(c), id); err != nil {
		h.fail(c, err)
		return
	}
	h.saved(c, events.Deleted, events.KindMachine, id, nil)
	c.Status(http.StatusNoContent)
}

// ResyncMachine re-saves the machine's maintenance and claims so they pick up
// its current service company.
func (h *Handler) ResyncMachine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.store.ResyncMachine(c.Request.Context(), auth.PrincipalFrom(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MachineChoices lists the machines the caller may attach records to.
func (h *Handler) MachineChoices(c *gin.Context) {
	choices, err := form.MachineChoices(c.Request.Context(), h.store.DB(), form.Context{Principal: auth.PrincipalFrom(c)})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": choices})
}
