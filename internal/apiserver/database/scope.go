package database

import (
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"gorm.io/gorm"
)

// scopeColumns maps the ownership fields an entity carries to its columns.
// A field missing from the map means the entity has no such owner.
type scopeColumns map[scope.Field]string

var (
	leadColumns = scopeColumns{
		scope.FieldCounselor:        "counselor_id",
		scope.FieldAdmissionOfficer: "admission_officer_id",
		scope.FieldBranch:           "branch_id",
		scope.FieldRegion:           "region_id",
	}
	studentColumns = scopeColumns{
		scope.FieldCounselor:        "counsellor_id",
		scope.FieldAdmissionOfficer: "admission_officer_id",
		scope.FieldPartner:          "partner",
		scope.FieldSubPartner:       "sub_partner",
		scope.FieldBranch:           "branch_id",
		scope.FieldRegion:           "region_id",
	}
)

const matchNothing = "1 = 0"

// applyScope narrows db to the rows rule lets through
func applyScope(db *gorm.DB, rule scope.Rule, cols scopeColumns) *gorm.DB {
	switch rule.Kind {
	case scope.KindAll:
		return db
	case scope.KindMatch:
		col, ok := cols[rule.Field]
		if !ok || rule.Value == "" {
			return db.Where(matchNothing)
		}
		return db.Where(col+" = ?", rule.Value)
	default:
		return db.Where(matchNothing)
	}
}

// applyStudentScope narrows rows that belong to a student (applications,
// admissions) to those whose student the rule lets through.
func applyStudentScope(db *gorm.DB, rule scope.Rule) *gorm.DB {
	switch rule.Kind {
	case scope.KindAll:
		return db
	case scope.KindMatch:
		col, ok := studentColumns[rule.Field]
		if !ok || rule.Value == "" {
			return db.Where(matchNothing)
		}
		students := db.Session(&gorm.Session{NewDB: true}).
			Model(&Student{}).Select("id").Where(col+" = ?", rule.Value)
		return db.Where("student_id IN (?)", students)
	default:
		return db.Where(matchNothing)
	}
}

// LeadOwners exposes a lead's ownership values for scope.Rule.Allows
func LeadOwners(l *Lead) map[scope.Field]string {
	return map[scope.Field]string{
		scope.FieldCounselor:        l.CounselorID,
		scope.FieldAdmissionOfficer: l.AdmissionOfficerID,
		scope.FieldBranch:           l.BranchID,
		scope.FieldRegion:           l.RegionID,
	}
}

// StudentOwners exposes a student's ownership values for scope.Rule.Allows
func StudentOwners(s *Student) map[scope.Field]string {
	return map[scope.Field]string{
		scope.FieldCounselor:        s.CounsellorID,
		scope.FieldAdmissionOfficer: s.AdmissionOfficerID,
		scope.FieldPartner:          s.Partner,
		scope.FieldSubPartner:       s.SubPartner,
		scope.FieldBranch:           s.BranchID,
		scope.FieldRegion:           s.RegionID,
	}
}
