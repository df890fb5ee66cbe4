package handler

import (
	"net/http"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListStudents(c *gin.Context) {
	var filter database.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.fail(c, err)
		return
	}
	students, total, err := h.svc.Students.List(c.Request.Context(), caller(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondList(c, students, total, filter.Page)
}

func (h *Handler) SearchStudents(c *gin.Context) {
	students, err := h.svc.Students.Search(c.Request.Context(), caller(c), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) StudentStats(c *gin.Context) {
	stats, err := h.svc.Students.Stats(c.Request.Context(), caller(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateStudent adds a student. A payload naming a leadId converts that
// lead instead of creating a bare student.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if req.LeadID != "" {
		res, err := h.svc.Students.ConvertFromLead(ctx, caller(c), "", &req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, res.Student)
		return
	}
	st, err := h.svc.Students.Create(ctx, caller(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) GetStudent(c *gin.Context) {
	st, err := h.svc.Students.Get(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	found(h, c, "student", st)
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, err)
		return
	}
	st, err := h.svc.Students.Update(c.Request.Context(), caller(c), c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.svc.Students.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) StudentActivities(c *gin.Context) {
	acts, err := h.svc.Students.Activities(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}

func (h *Handler) StudentApplications(c *gin.Context) {
	apps, err := h.svc.Applications.ListByStudent(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}
