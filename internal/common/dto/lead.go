package dto

import (
	"strings"

	"github.com/amoylab/nextcrm/internal/common/types"
)

// CreateLeadRequest represents a new lead
type CreateLeadRequest struct {
	Name               string           `json:"name" binding:"required"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone"`
	City               string           `json:"city"`
	Country            types.StringList `json:"country"`
	Program            types.StringList `json:"program"`
	Source             string           `json:"source"`
	Status             string           `json:"status"`
	Expectation        string           `json:"expectation"`
	Type               string           `json:"type"`
	StudyLevel         string           `json:"studyLevel"`
	StudyPlan          string           `json:"studyPlan"`
	CounselorID        string           `json:"counselorId"`
	AdmissionOfficerID string           `json:"admissionOfficerId"`
	BranchID           string           `json:"branchId"`
	RegionID           string           `json:"regionId"`
}

// UpdateLeadRequest is a partial lead update; nil fields are left alone
type UpdateLeadRequest struct {
	Name               *string           `json:"name"`
	Email              *string           `json:"email"`
	Phone              *string           `json:"phone"`
	City               *string           `json:"city"`
	Country            *types.StringList `json:"country"`
	Program            *types.StringList `json:"program"`
	Source             *string           `json:"source"`
	Status             *string           `json:"status"`
	Expectation        *string           `json:"expectation"`
	Type               *string           `json:"type"`
	StudyLevel         *string           `json:"studyLevel"`
	StudyPlan          *string           `json:"studyPlan"`
	LostReason         *string           `json:"lostReason"`
	CounselorID        *string           `json:"counselorId"`
	AdmissionOfficerID *string           `json:"admissionOfficerId"`
	BranchID           *string           `json:"branchId"`
	RegionID           *string           `json:"regionId"`
	IsLost             *types.Flag       `json:"isLost"`
}

// Updates returns the column changes the request asks for
func (r *UpdateLeadRequest) Updates() map[string]any {
	u := map[string]any{}
	setString(u, "name", r.Name)
	if r.Email != nil {
		u["email"] = strings.TrimSpace(*r.Email)
	}
	if r.Phone != nil {
		u["phone"] = strings.TrimSpace(*r.Phone)
	}
	setString(u, "city", r.City)
	setList(u, "country", r.Country)
	setList(u, "program", r.Program)
	setString(u, "source", r.Source)
	setString(u, "status", r.Status)
	setString(u, "expectation", r.Expectation)
	setString(u, "type", r.Type)
	setString(u, "study_level", r.StudyLevel)
	setString(u, "study_plan", r.StudyPlan)
	setString(u, "lost_reason", r.LostReason)
	setString(u, "counselor_id", r.CounselorID)
	setString(u, "admission_officer_id", r.AdmissionOfficerID)
	setString(u, "branch_id", r.BranchID)
	setString(u, "region_id", r.RegionID)
	if r.IsLost != nil {
		u["is_lost"] = *r.IsLost
	}
	return u
}

func setString(u map[string]any, column string, v *string) {
	if v != nil {
		u[column] = *v
	}
}

func setList(u map[string]any, column string, v *types.StringList) {
	if v != nil {
		list := *v
		if list == nil {
			list = types.StringList{}
		}
		u[column] = list
	}
}

func setFloat(u map[string]any, column string, v *float64) {
	if v != nil {
		u[column] = *v
	}
}
