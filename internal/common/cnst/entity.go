package cnst

// EntityType tags the owner of an activity row
type EntityType string

const (
	EntityLead        EntityType = "lead"
	EntityStudent     EntityType = "student"
	EntityApplication EntityType = "application"
	EntityAdmission   EntityType = "admission"
)

// ActivityType classifies an activity entry
type ActivityType string

const (
	ActivityCreated           ActivityType = "created"
	ActivityUpdated           ActivityType = "updated"
	ActivityDeleted           ActivityType = "deleted"
	ActivityConverted         ActivityType = "converted"
	ActivityStatusChanged     ActivityType = "status_changed"
	ActivityAssigned          ActivityType = "assigned"
	ActivityMarkedLost        ActivityType = "marked_lost"
	ActivityUnmarkedLost      ActivityType = "unmarked_lost"
	ActivityLostReasonUpdated ActivityType = "lost_reason_updated"
)

const (
	LeadStatusNew       = "new"
	StudentStatusActive = "active"
	AppStatusDraft      = "draft"
)

// Decision is the outcome recorded on an admission
type Decision string

const (
	DecisionPending    Decision = "pending"
	DecisionAccepted   Decision = "accepted"
	DecisionRejected   Decision = "rejected"
	DecisionWaitlisted Decision = "waitlisted"
	DecisionDeferred   Decision = "deferred"
)

// IsValid reports whether d is a known decision
func (d Decision) IsValid() bool {
	switch d {
	case DecisionPending, DecisionAccepted, DecisionRejected, DecisionWaitlisted, DecisionDeferred:
		return true
	}
	return false
}

// Dropdown categories used to label coded fields
const (
	DropdownLeadStatus    = "lead_status"
	DropdownLeadSource    = "lead_source"
	DropdownCountry       = "country"
	DropdownProgram       = "program"
	DropdownStudyLevel    = "study_level"
	DropdownStudentStatus = "student_status"
	DropdownAppStatus     = "app_status"
)
