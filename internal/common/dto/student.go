package dto

import "github.com/amoylab/nextcrm/internal/common/types"

// CreateStudentRequest is used both for direct creation and for converting
// a lead, in which case empty fields are filled from the lead.
type CreateStudentRequest struct {
	LeadID               string           `json:"leadId"`
	Name                 string           `json:"name"`
	Email                string           `json:"email" binding:"omitempty,email"`
	Phone                string           `json:"phone"`
	DateOfBirth          string           `json:"dateOfBirth"`
	Gender               string           `json:"gender"`
	Nationality          string           `json:"nationality"`
	Address              string           `json:"address"`
	HighestQualification string           `json:"highestQualification"`
	AcademicScore        string           `json:"academicScore"`
	EnglishTestType      string           `json:"englishTestType"`
	EnglishTestScore     string           `json:"englishTestScore"`
	TargetCountry        types.StringList `json:"targetCountry"`
	TargetProgram        string           `json:"targetProgram"`
	Intake               string           `json:"intake"`
	Notes                string           `json:"notes"`
	CounsellorID         string           `json:"counsellorId"`
	// CounselorID is accepted as an alias of CounsellorID
	CounselorID        string `json:"counselorId"`
	AdmissionOfficerID string `json:"admissionOfficerId"`
	BranchID           string `json:"branchId"`
	RegionID           string `json:"regionId"`
	Partner            string `json:"partner"`
	SubPartner         string `json:"subPartner"`
	Status             string `json:"status"`
}

// Counsellor returns the counsellor id under either spelling
func (r *CreateStudentRequest) Counsellor() string {
	if r.CounsellorID != "" {
		return r.CounsellorID
	}
	return r.CounselorID
}

// UpdateStudentRequest is a partial student update
type UpdateStudentRequest struct {
	Name                 *string           `json:"name"`
	Email                *string           `json:"email" binding:"omitempty,email"`
	Phone                *string           `json:"phone"`
	DateOfBirth          *string           `json:"dateOfBirth"`
	Gender               *string           `json:"gender"`
	Nationality          *string           `json:"nationality"`
	Address              *string           `json:"address"`
	HighestQualification *string           `json:"highestQualification"`
	AcademicScore        *string           `json:"academicScore"`
	EnglishTestType      *string           `json:"englishTestType"`
	EnglishTestScore     *string           `json:"englishTestScore"`
	TargetCountry        *types.StringList `json:"targetCountry"`
	TargetProgram        *string           `json:"targetProgram"`
	Intake               *string           `json:"intake"`
	Notes                *string           `json:"notes"`
	CounsellorID         *string           `json:"counsellorId"`
	CounselorID          *string           `json:"counselorId"`
	AdmissionOfficerID   *string           `json:"admissionOfficerId"`
	BranchID             *string           `json:"branchId"`
	RegionID             *string           `json:"regionId"`
	Partner              *string           `json:"partner"`
	SubPartner           *string           `json:"subPartner"`
	Status               *string           `json:"status"`
}

func (r *UpdateStudentRequest) Updates() map[string]any {
	u := map[string]any{}
	setString(u, "name", r.Name)
	setString(u, "email", r.Email)
	setString(u, "phone", r.Phone)
	setString(u, "date_of_birth", r.DateOfBirth)
	setString(u, "gender", r.Gender)
	setString(u, "nationality", r.Nationality)
	setString(u, "address", r.Address)
	setString(u, "highest_qualification", r.HighestQualification)
	setString(u, "academic_score", r.AcademicScore)
	setString(u, "english_test_type", r.EnglishTestType)
	setString(u, "english_test_score", r.EnglishTestScore)
	setList(u, "target_country", r.TargetCountry)
	setString(u, "target_program", r.TargetProgram)
	setString(u, "intake", r.Intake)
	setString(u, "notes", r.Notes)
	setString(u, "counsellor_id", r.CounselorID)
	setString(u, "counsellor_id", r.CounsellorID)
	setString(u, "admission_officer_id", r.AdmissionOfficerID)
	setString(u, "branch_id", r.BranchID)
	setString(u, "region_id", r.RegionID)
	setString(u, "partner", r.Partner)
	setString(u, "sub_partner", r.SubPartner)
	setString(u, "status", r.Status)
	return u
}
