package handler

import (
	"fmt"

	"github.com/amoylab/nextcrm/internal/apiserver/middleware"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterOptions configures the engine around the handlers. Metrics may be nil.
type RouterOptions struct {
	CORS        config.CORSConfig
	Metrics     *metrics.Metrics
	MetricsPath string
	// TraceService enables request spans under this service name
	TraceService string
}

// NewRouter builds the gin engine serving the CRM API
func NewRouter(h *Handler, opts RouterOptions) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("failed to register validators: %w", err)
		}
	}

	r := gin.New()
	if opts.TraceService != "" {
		r.Use(otelgin.Middleware(opts.TraceService))
	}
	r.Use(h.errs.RecoveryMiddleware(), h.errs.ErrorMiddleware(), middleware.CORS(opts.CORS))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.Metrics.Handler()))
	}
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	protected := api.Group("", middleware.JWTAuthMiddleware(h.jwt, h.errs))
	protected.GET("/auth/me", h.Me)

	users := protected.Group("/users")
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.PUT("/me/profile", h.CompleteProfile)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.POST("/:id/deactivate", h.DeactivateUser)

	leads := protected.Group("/leads")
	leads.GET("", h.ListLeads)
	leads.POST("", h.CreateLead)
	leads.GET("/search", h.SearchLeads)
	leads.GET("/stats", h.LeadStats)
	leads.GET("/export", h.ExportLeads)
	leads.GET("/:id", h.GetLead)
	leads.PUT("/:id", h.UpdateLead)
	leads.DELETE("/:id", h.DeleteLead)
	leads.GET("/:id/activities", h.LeadActivities)
	leads.POST("/:id/convert", h.ConvertLead)

	students := protected.Group("/students")
	students.GET("", h.ListStudents)
	students.POST("", h.CreateStudent)
	students.GET("/search", h.SearchStudents)
	students.GET("/stats", h.StudentStats)
	students.GET("/:id", h.GetStudent)
	students.PUT("/:id", h.UpdateStudent)
	students.DELETE("/:id", h.DeleteStudent)
	students.GET("/:id/activities", h.StudentActivities)
	students.GET("/:id/applications", h.StudentApplications)

	apps := protected.Group("/applications")
	apps.GET("", h.ListApplications)
	apps.POST("", h.CreateApplication)
	apps.GET("/stats", h.ApplicationStats)
	apps.GET("/:id", h.GetApplication)
	apps.PUT("/:id", h.UpdateApplication)
	apps.DELETE("/:id", h.DeleteApplication)
	apps.GET("/:id/activities", h.ApplicationActivities)

	adms := protected.Group("/admissions")
	adms.GET("", h.ListAdmissions)
	adms.POST("", h.CreateAdmission)
	adms.GET("/stats", h.AdmissionStats)
	adms.GET("/:id", h.GetAdmission)
	adms.PUT("/:id", h.UpdateAdmission)
	adms.DELETE("/:id", h.DeleteAdmission)
	adms.GET("/:id/activities", h.AdmissionActivities)

	dropdowns := protected.Group("/dropdowns")
	dropdowns.GET("", h.ListDropdowns)
	dropdowns.POST("", h.UpsertDropdown)
	dropdowns.DELETE("/:id", h.DeleteDropdown)

	return r, nil
}
