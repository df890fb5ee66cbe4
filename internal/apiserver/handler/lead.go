package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/crm/export"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListLeads(c *gin.Context) {
	var filter database.LeadFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, err)
		return
	}
	leads, total, err := h.svc.Leads.List(c.Request.Context(), caller(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, leads, total, filter.Page)
}

func (h *Handler) SearchLeads(c *gin.Context) {
	leads, err := h.svc.Leads.Search(c.Request.Context(), caller(c), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (h *Handler) LeadStats(c *gin.Context) {
	stats, err := h.svc.Leads.Stats(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportLeads streams the filtered leads as an xlsx attachment
func (h *Handler) ExportLeads(c *gin.Context) {
	var filter database.LeadFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.svc.Leads.Export(c.Request.Context(), caller(c), filter, &buf); err != nil {
		h.fail(c, err)
		return
	}
	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *Handler) CreateLead(c *gin.Context) {
	var req dto.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	l, err := h.svc.Leads.Create(c.Request.Context(), caller(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *Handler) GetLead(c *gin.Context) {
	l, err := h.svc.Leads.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	found(h, c, "lead", l)
}

func (h *Handler) UpdateLead(c *gin.Context) {
	var req dto.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	l, err := h.svc.Leads.Update(c.Request.Context(), caller(c), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) DeleteLead(c *gin.Context) {
	if err := h.svc.Leads.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) LeadActivities(c *gin.Context) {
	acts, err := h.svc.Leads.Activities(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}

// ConvertLead turns a lead into a student. The body is optional and its
// fields take precedence over the lead's.
func (h *Handler) ConvertLead(c *gin.Context) {
	var req dto.CreateStudentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.fail(c, err)
			return
		}
	}
	res, err := h.svc.Students.ConvertFromLead(c.Request.Context(), caller(c), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ConvertLeadResponse{
		Student:               res.Student,
		TransferredActivities: res.TransferredActivities,
	})
}
