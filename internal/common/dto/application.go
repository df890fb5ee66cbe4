package dto

import "github.com/amoylab/nextcrm/internal/common/types"

type CreateApplicationRequest struct {
	StudentID       string `json:"studentId" binding:"required"`
	University      string `json:"university" binding:"required"`
	Program         string `json:"program"`
	CourseType      string `json:"courseType"`
	AppStatus       string `json:"appStatus"`
	CaseStatus      string `json:"caseStatus"`
	Country         string `json:"country"`
	ChannelPartner  string `json:"channelPartner"`
	Intake          string `json:"intake"`
	GoogleDriveLink string `json:"googleDriveLink" binding:"omitempty,url"`
	Notes           string `json:"notes"`
}

type UpdateApplicationRequest struct {
	University      *string `json:"university"`
	Program         *string `json:"program"`
	CourseType      *string `json:"courseType"`
	AppStatus       *string `json:"appStatus"`
	CaseStatus      *string `json:"caseStatus"`
	Country         *string `json:"country"`
	ChannelPartner  *string `json:"channelPartner"`
	Intake          *string `json:"intake"`
	GoogleDriveLink *string `json:"googleDriveLink"`
	Notes           *string `json:"notes"`
}

func (r *UpdateApplicationRequest) Updates() map[string]any {
	u := map[string]any{}
	setString(u, "university", r.University)
	setString(u, "program", r.Program)
	setString(u, "course_type", r.CourseType)
	setString(u, "app_status", r.AppStatus)
	setString(u, "case_status", r.CaseStatus)
	setString(u, "country", r.Country)
	setString(u, "channel_partner", r.ChannelPartner)
	setString(u, "intake", r.Intake)
	setString(u, "google_drive_link", r.GoogleDriveLink)
	setString(u, "notes", r.Notes)
	return u
}

// CreateAdmissionRequest records a decision. University and Program default
// to the application's values; StudentID, when sent, must be the
// application's student.
type CreateAdmissionRequest struct {
	ApplicationID     string     `json:"applicationId" binding:"required"`
	StudentID         string     `json:"studentId"`
	University        string     `json:"university"`
	Program           string     `json:"program"`
	Decision          string     `json:"decision" binding:"omitempty,decision"`
	DecisionDate      string     `json:"decisionDate"`
	ScholarshipAmount float64    `json:"scholarshipAmount" binding:"gte=0"`
	DepositAmount     float64    `json:"depositAmount" binding:"gte=0"`
	DepositPaid       types.Flag `json:"depositPaid"`
	DepositDate       string     `json:"depositDate"`
	TuitionFee        float64    `json:"tuitionFee" binding:"gte=0"`
	VisaStatus        string     `json:"visaStatus"`
	Notes             string     `json:"notes"`
}

type UpdateAdmissionRequest struct {
	University        *string     `json:"university"`
	Program           *string     `json:"program"`
	Decision          *string     `json:"decision" binding:"omitempty,decision"`
	DecisionDate      *string     `json:"decisionDate"`
	ScholarshipAmount *float64    `json:"scholarshipAmount" binding:"omitempty,gte=0"`
	DepositAmount     *float64    `json:"depositAmount" binding:"omitempty,gte=0"`
	DepositPaid       *types.Flag `json:"depositPaid"`
	DepositDate       *string     `json:"depositDate"`
	TuitionFee        *float64    `json:"tuitionFee" binding:"omitempty,gte=0"`
	VisaStatus        *string     `json:"visaStatus"`
	Notes             *string     `json:"notes"`
}

func (r *UpdateAdmissionRequest) Updates() map[string]any {
	u := map[string]any{}
	setString(u, "university", r.University)
	setString(u, "program", r.Program)
	setString(u, "decision", r.Decision)
	setString(u, "decision_date", r.DecisionDate)
	setFloat(u, "scholarship_amount", r.ScholarshipAmount)
	setFloat(u, "deposit_amount", r.DepositAmount)
	if r.DepositPaid != nil {
		u["deposit_paid"] = *r.DepositPaid
	}
	setString(u, "deposit_date", r.DepositDate)
	setFloat(u, "tuition_fee", r.TuitionFee)
	setString(u, "visa_status", r.VisaStatus)
	setString(u, "notes", r.Notes)
	return u
}
