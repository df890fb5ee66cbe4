package handler

import (
	"net/http"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAdmissions(c *gin.Context) {
	var filter database.AdmissionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, err)
		return
	}
	adms, total, err := h.svc.Admissions.List(c.Request.Context(), caller(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, adms, total, filter.Page)
}

func (h *Handler) AdmissionStats(c *gin.Context) {
	stats, err := h.svc.Admissions.Stats(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) CreateAdmission(c *gin.Context) {
	var req dto.CreateAdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	adm, err := h.svc.Admissions.Create(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, adm)
}

func (h *Handler) GetAdmission(c *gin.Context) {
	adm, err := h.svc.Admissions.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	found(h, c, "admission", adm)
}

func (h *Handler) UpdateAdmission(c *gin.Context) {
	var req dto.UpdateAdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	adm, err := h.svc.Admissions.Update(c.Request.Context(), caller(c), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, adm)
}

func (h *Handler) DeleteAdmission(c *gin.Context) {
	if err := h.svc.Admissions.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdmissionActivities(c *gin.Context) {
	acts, err := h.svc.Admissions.Activities(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}
