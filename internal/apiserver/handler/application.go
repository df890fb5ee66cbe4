package handler

import (
	"net/http"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListApplications(c *gin.Context) {
	var filter database.ApplicationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, err)
		return
	}
	apps, total, err := h.svc.Applications.List(c.Request.Context(), caller(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, apps, total, filter.Page)
}

func (h *Handler) ApplicationStats(c *gin.Context) {
	stats, err := h.svc.Applications.Stats(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	app, err := h.svc.Applications.Create(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *Handler) GetApplication(c *gin.Context) {
	app, err := h.svc.Applications.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	found(h, c, "application", app)
}

func (h *Handler) UpdateApplication(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	app, err := h.svc.Applications.Update(c.Request.Context(), caller(c), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *Handler) DeleteApplication(c *gin.Context) {
	if err := h.svc.Applications.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ApplicationActivities(c *gin.Context) {
	acts, err := h.svc.Applications.Activities(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}
