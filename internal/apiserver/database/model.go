package database

import (
	"strings"
	"time"

	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// Region groups branches; ManagerID is the regional head
type Region struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	ManagerID string    `json:"managerId" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Region) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// Branch is an office inside a region; ManagerID is the branch head
type Branch struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	RegionID  string    `json:"regionId" gorm:"type:varchar(36);index"`
	ManagerID string    `json:"managerId" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Branch) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// User is a staff or partner account. Users are deactivated, never deleted.
type User struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email            string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash     string    `json:"-" gorm:"type:varchar(255);not null"`
	FirstName        string    `json:"firstName" gorm:"type:varchar(100)"`
	LastName         string    `json:"lastName" gorm:"type:varchar(100)"`
	Role             cnst.Role `json:"role" gorm:"type:varchar(50);index;not null"`
	BranchID         string    `json:"branchId" gorm:"type:varchar(36);index"`
	RegionID         string    `json:"regionId" gorm:"type:varchar(36);index"`
	Department       string    `json:"department" gorm:"type:varchar(100)"`
	PhoneNumber      string    `json:"phoneNumber" gorm:"type:varchar(50)"`
	ProfileCompleted bool      `json:"profileCompleted"`
	IsActive         bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// FullName joins first and last name, falling back to the email
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Lead is a prospective student before conversion
type Lead struct {
	ID                 string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name               string           `json:"name" gorm:"type:varchar(255);not null"`
	Email              string           `json:"email" gorm:"type:varchar(255);index"`
	Phone              string           `json:"phone" gorm:"type:varchar(50);index"`
	City               string           `json:"city" gorm:"type:varchar(100)"`
	Country            types.StringList `json:"country"`
	Program            types.StringList `json:"program"`
	Source             string           `json:"source" gorm:"type:varchar(100)"`
	Status             string           `json:"status" gorm:"type:varchar(50);index"`
	Expectation        string           `json:"expectation" gorm:"type:text"`
	Type               string           `json:"type" gorm:"type:varchar(50)"`
	StudyLevel         string           `json:"studyLevel" gorm:"type:varchar(100)"`
	StudyPlan          string           `json:"studyPlan" gorm:"type:varchar(100)"`
	LostReason         string           `json:"lostReason" gorm:"type:text"`
	CounselorID        string           `json:"counselorId" gorm:"type:varchar(36);index"`
	AdmissionOfficerID string           `json:"admissionOfficerId" gorm:"type:varchar(36);index"`
	BranchID           string           `json:"branchId" gorm:"type:varchar(36);index"`
	RegionID           string           `json:"regionId" gorm:"type:varchar(36);index"`
	CreatedBy          string           `json:"createdBy" gorm:"type:varchar(36)"`
	UpdatedBy          string           `json:"updatedBy" gorm:"type:varchar(36)"`
	IsConverted        types.Flag       `json:"isConverted" gorm:"not null;default:false"`
	IsLost             types.Flag       `json:"isLost" gorm:"not null;default:false"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`

	Labels map[string]string `json:"labels,omitempty" gorm:"-"`
}

func (l *Lead) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// Student is a converted lead or a directly created student record
type Student struct {
	ID                   string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	LeadID               string           `json:"leadId" gorm:"type:varchar(36);index"`
	Name                 string           `json:"name" gorm:"type:varchar(255);not null"`
	Email                string           `json:"email" gorm:"type:varchar(255);index"`
	Phone                string           `json:"phone" gorm:"type:varchar(50)"`
	DateOfBirth          string           `json:"dateOfBirth" gorm:"type:varchar(10)"`
	Gender               string           `json:"gender" gorm:"type:varchar(20)"`
	Nationality          string           `json:"nationality" gorm:"type:varchar(100)"`
	Address              string           `json:"address" gorm:"type:text"`
	HighestQualification string           `json:"highestQualification" gorm:"type:varchar(100)"`
	AcademicScore        string           `json:"academicScore" gorm:"type:varchar(50)"`
	EnglishTestType      string           `json:"englishTestType" gorm:"type:varchar(50)"`
	EnglishTestScore     string           `json:"englishTestScore" gorm:"type:varchar(50)"`
	TargetCountry        types.StringList `json:"targetCountry"`
	TargetProgram        string           `json:"targetProgram" gorm:"type:varchar(255)"`
	Intake               string           `json:"intake" gorm:"type:varchar(50)"`
	Notes                string           `json:"notes" gorm:"type:text"`
	CounsellorID         string           `json:"counsellorId" gorm:"type:varchar(36);index"`
	AdmissionOfficerID   string           `json:"admissionOfficerId" gorm:"type:varchar(36);index"`
	BranchID             string           `json:"branchId" gorm:"type:varchar(36);index"`
	RegionID             string           `json:"regionId" gorm:"type:varchar(36);index"`
	Partner              string           `json:"partner" gorm:"type:varchar(36);index"`
	SubPartner           string           `json:"subPartner" gorm:"type:varchar(36);index"`
	Status               string           `json:"status" gorm:"type:varchar(50);index"`
	CreatedBy            string           `json:"createdBy" gorm:"type:varchar(36)"`
	UpdatedBy            string           `json:"updatedBy" gorm:"type:varchar(36)"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`

	Labels map[string]string `json:"labels,omitempty" gorm:"-"`
}

func (s *Student) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Application is one university application filed for a student
type Application struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ApplicationCode string    `json:"applicationCode" gorm:"type:varchar(20);index"`
	StudentID       string    `json:"studentId" gorm:"type:varchar(36);index;not null"`
	University      string    `json:"university" gorm:"type:varchar(255)"`
	Program         string    `json:"program" gorm:"type:varchar(255)"`
	CourseType      string    `json:"courseType" gorm:"type:varchar(100)"`
	AppStatus       string    `json:"appStatus" gorm:"type:varchar(50);index"`
	CaseStatus      string    `json:"caseStatus" gorm:"type:varchar(50)"`
	Country         string    `json:"country" gorm:"type:varchar(100)"`
	ChannelPartner  string    `json:"channelPartner" gorm:"type:varchar(255)"`
	Intake          string    `json:"intake" gorm:"type:varchar(50)"`
	GoogleDriveLink string    `json:"googleDriveLink" gorm:"type:text"`
	Notes           string    `json:"notes" gorm:"type:text"`
	CreatedBy       string    `json:"createdBy" gorm:"type:varchar(36)"`
	UpdatedBy       string    `json:"updatedBy" gorm:"type:varchar(36)"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (a *Application) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// Admission records a university's decision on an application
type Admission struct {
	ID                string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	AdmissionID       string        `json:"admissionId" gorm:"type:varchar(20);index"`
	ApplicationID     string        `json:"applicationId" gorm:"type:varchar(36);index;not null"`
	StudentID         string        `json:"studentId" gorm:"type:varchar(36);index;not null"`
	University        string        `json:"university" gorm:"type:varchar(255)"`
	Program           string        `json:"program" gorm:"type:varchar(255)"`
	Decision          cnst.Decision `json:"decision" gorm:"type:varchar(20);index"`
	DecisionDate      string        `json:"decisionDate" gorm:"type:varchar(10)"`
	ScholarshipAmount float64       `json:"scholarshipAmount"`
	DepositAmount     float64       `json:"depositAmount"`
	DepositPaid       types.Flag    `json:"depositPaid" gorm:"not null;default:false"`
	DepositDate       string        `json:"depositDate" gorm:"type:varchar(10)"`
	TuitionFee        float64       `json:"tuitionFee"`
	VisaStatus        string        `json:"visaStatus" gorm:"type:varchar(50)"`
	Notes             string        `json:"notes" gorm:"type:text"`
	CreatedBy         string        `json:"createdBy" gorm:"type:varchar(36)"`
	UpdatedBy         string        `json:"updatedBy" gorm:"type:varchar(36)"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func (a *Admission) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// Activity is an append-only timeline entry attached to any entity
type Activity struct {
	ID           string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	EntityType   cnst.EntityType   `json:"entityType" gorm:"type:varchar(20);index:idx_activity_entity;not null"`
	EntityID     string            `json:"entityId" gorm:"type:varchar(36);index:idx_activity_entity;not null"`
	ActivityType cnst.ActivityType `json:"activityType" gorm:"type:varchar(50);not null"`
	Title        string            `json:"title" gorm:"type:varchar(255)"`
	Description  string            `json:"description" gorm:"type:text"`
	FieldName    string            `json:"fieldName" gorm:"type:varchar(100)"`
	OldValue     string            `json:"oldValue" gorm:"type:text"`
	NewValue     string            `json:"newValue" gorm:"type:text"`
	UserID       string            `json:"userId" gorm:"type:varchar(36)"`
	UserName     string            `json:"userName" gorm:"type:varchar(255)"`
	CreatedAt    time.Time         `json:"createdAt" gorm:"index"`
}

func (a *Activity) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// Dropdown maps a stored code to its display label within a category
type Dropdown struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Category  string    `json:"category" gorm:"type:varchar(50);uniqueIndex:idx_dropdown_code;not null"`
	Code      string    `json:"code" gorm:"type:varchar(100);uniqueIndex:idx_dropdown_code;not null"`
	Label     string    `json:"label" gorm:"type:varchar(255);not null"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *Dropdown) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// allModels is the AutoMigrate set
var allModels = []any{
	&Region{}, &Branch{}, &User{},
	&Lead{}, &Student{}, &Application{}, &Admission{},
	&Activity{}, &Dropdown{},
}
