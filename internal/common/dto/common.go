package dto

import (
	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/go-playground/validator/v10"
)

// ListResponse is the envelope of every paginated list
type ListResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

type DropdownRequest struct {
	Category  string `json:"category" binding:"required"`
	Code      string `json:"code" binding:"required"`
	Label     string `json:"label" binding:"required"`
	SortOrder int    `json:"sortOrder"`
}

// ConvertLeadResponse is returned by the conversion endpoint
type ConvertLeadResponse struct {
	Student               *database.Student `json:"student"`
	TransferredActivities int64             `json:"transferredActivities"`
}

// RegisterValidators adds the CRM's enum checks to a validator engine
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("crmrole", func(fl validator.FieldLevel) bool {
		return cnst.Role(fl.Field().String()).IsValid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("decision", func(fl validator.FieldLevel) bool {
		return cnst.Decision(fl.Field().String()).IsValid()
	})
}
