// Package handler exposes the CRM services over HTTP.
package handler

import (
	"net/http"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/apiserver/middleware"
	"github.com/amoylab/nextcrm/internal/auth/jwt"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/admission"
	"github.com/amoylab/nextcrm/internal/crm/application"
	"github.com/amoylab/nextcrm/internal/crm/dropdown"
	"github.com/amoylab/nextcrm/internal/crm/lead"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/internal/crm/student"
	"github.com/amoylab/nextcrm/internal/crm/user"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services are the domain services the handlers call
type Services struct {
	Users        *user.Service
	Leads        *lead.Service
	Students     *student.Service
	Applications *application.Service
	Admissions   *admission.Service
	Dropdowns    *dropdown.Service
}

type Handler struct {
	svc    Services
	jwt    *jwt.Service
	errs   *errorx.ErrorHandler
	logger *zap.Logger
}

func NewHandler(svc Services, jwtService *jwt.Service, errs *errorx.ErrorHandler, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		jwt:    jwtService,
		errs:   errs,
		logger: logger.Named("apiserver.handler"),
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.errs.HandleError(c, err)
}

func caller(c *gin.Context) scope.Caller {
	return middleware.CallerFrom(c)
}

// found writes v, or a 404 for resource when v is nil
func found[T any](h *Handler, c *gin.Context, resource string, v *T) {
	if v == nil {
		h.fail(c, errorx.NotFoundError(resource, c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, v)
}

// respondList wraps items in the list envelope, echoing the effective page
func respondList[T any](c *gin.Context, items []T, total int64, p database.Page) {
	if items == nil {
		items = []T{}
	}
	page, size := p.Normalize()
	if p.Unbounded {
		page, size = 1, len(items)
	}
	c.JSON(http.StatusOK, dto.ListResponse[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
	})
}

// Healthz reports liveness
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
