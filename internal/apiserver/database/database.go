package database

import (
	"context"

	"github.com/amoylab/nextcrm/internal/crm/scope"
)

// Database defines the methods for database operations.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn with a context carrying a transaction. Every
	// repository call made with that context joins the transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	LeadRepository
	StudentRepository
	ApplicationRepository
	AdmissionRepository
	ActivityRepository
	UserRepository
	OrgRepository
	DropdownRepository
}

// Find methods return (nil, nil) when the row does not exist or the rule hides it.

type LeadRepository interface {
	CreateLead(ctx context.Context, lead *Lead) error
	FindLeadByID(ctx context.Context, id string, rule scope.Rule) (*Lead, error)
	ListLeads(ctx context.Context, rule scope.Rule, filter LeadFilter) ([]*Lead, int64, error)
	UpdateLead(ctx context.Context, id string, updates map[string]any) error
	DeleteLead(ctx context.Context, id string) error
	// FindLeadByEmail matches case-insensitively and ignores excludeID
	FindLeadByEmail(ctx context.Context, email, excludeID string) (*Lead, error)
	FindLeadByPhone(ctx context.Context, phone, excludeID string) (*Lead, error)
	LeadStats(ctx context.Context, rule scope.Rule) (*LeadStats, error)
}

type StudentRepository interface {
	CreateStudent(ctx context.Context, student *Student) error
	FindStudentByID(ctx context.Context, id string, rule scope.Rule) (*Student, error)
	FindStudentByLeadID(ctx context.Context, leadID string) (*Student, error)
	ListStudents(ctx context.Context, rule scope.Rule, filter StudentFilter) ([]*Student, int64, error)
	UpdateStudent(ctx context.Context, id string, updates map[string]any) error
	DeleteStudent(ctx context.Context, id string) error
	StudentStats(ctx context.Context, rule scope.Rule) (*GroupStats, error)
}

type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app *Application) error
	FindApplicationByID(ctx context.Context, id string, rule scope.Rule) (*Application, error)
	ListApplications(ctx context.Context, rule scope.Rule, filter ApplicationFilter) ([]*Application, int64, error)
	UpdateApplication(ctx context.Context, id string, updates map[string]any) error
	DeleteApplication(ctx context.Context, id string) error
	ApplicationStats(ctx context.Context, rule scope.Rule) (*GroupStats, error)
}

type AdmissionRepository interface {
	CreateAdmission(ctx context.Context, adm *Admission) error
	FindAdmissionByID(ctx context.Context, id string, rule scope.Rule) (*Admission, error)
	ListAdmissions(ctx context.Context, rule scope.Rule, filter AdmissionFilter) ([]*Admission, int64, error)
	UpdateAdmission(ctx context.Context, id string, updates map[string]any) error
	DeleteAdmission(ctx context.Context, id string) error
	AdmissionStats(ctx context.Context, rule scope.Rule) (*GroupStats, error)
}

type ActivityRepository interface {
	CreateActivity(ctx context.Context, activity *Activity) error
	// ListActivities returns an entity's timeline, newest first
	ListActivities(ctx context.Context, entityType, entityID string) ([]*Activity, error)
	RecentActivities(ctx context.Context, limit int) ([]*Activity, error)
	// ReassignActivities re-tags every activity of one entity to another
	ReassignActivities(ctx context.Context, fromType, fromID, toType, toID string) (int64, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) error
	GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error)
}

// OrgRepository covers regions and branches
type OrgRepository interface {
	CreateRegion(ctx context.Context, region *Region) error
	GetRegion(ctx context.Context, id string) (*Region, error)
	ListRegions(ctx context.Context) ([]*Region, error)
	SetRegionManager(ctx context.Context, regionID, userID string) error
	CreateBranch(ctx context.Context, branch *Branch) error
	GetBranch(ctx context.Context, id string) (*Branch, error)
	ListBranches(ctx context.Context, regionID string) ([]*Branch, error)
	SetBranchManager(ctx context.Context, branchID, userID string) error
}

type DropdownRepository interface {
	ListDropdowns(ctx context.Context, category string) ([]*Dropdown, error)
	UpsertDropdown(ctx context.Context, d *Dropdown) error
	// DeleteDropdown returns the removed row so callers can invalidate its category
	DeleteDropdown(ctx context.Context, id string) (*Dropdown, error)
}
