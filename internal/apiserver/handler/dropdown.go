package handler

import (
	"net/http"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListDropdowns(c *gin.Context) {
	items, err := h.svc.Dropdowns.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpsertDropdown creates or relabels a dropdown code. Admins only.
func (h *Handler) UpsertDropdown(c *gin.Context) {
	if !cnst.Role(caller(c).Role).CanManageUsers() {
		h.fail(c, errorx.Forbidden("manage_dropdowns"))
		return
	}
	var req dto.DropdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	d := &database.Dropdown{
		Category:  req.Category,
		Code:      req.Code,
		Label:     req.Label,
		SortOrder: req.SortOrder,
	}
	if err := h.svc.Dropdowns.Upsert(c.Request.Context(), d); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDropdown(c *gin.Context) {
	if !cnst.Role(caller(c).Role).CanManageUsers() {
		h.fail(c, errorx.Forbidden("manage_dropdowns"))
		return
	}
	if err := h.svc.Dropdowns.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
