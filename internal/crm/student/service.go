// Package student manages student records and lead conversion.
package student

import (
	"context"
	"strings"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/pkg/metrics"
	"github.com/amoylab/nextcrm/pkg/utils"
	"go.uber.org/zap"
)

const searchLimit = 50

// Store is the persistence the student service needs
type Store interface {
	database.StudentRepository
	FindLeadByID(ctx context.Context, id string, rule scope.Rule) (*database.Lead, error)
	UpdateLead(ctx context.Context, id string, updates map[string]any) error
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Labeler fills display labels on a student
type Labeler interface {
	EnrichStudent(ctx context.Context, s *database.Student)
}

type noLabels struct{}

func (noLabels) EnrichStudent(context.Context, *database.Student) {}

type Service struct {
	store      Store
	activities *activity.Service
	labels     Labeler
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewService wires the student service. labels may be nil.
func NewService(store Store, activities *activity.Service, labels Labeler, m *metrics.Metrics, logger *zap.Logger) *Service {
	if labels == nil {
		labels = noLabels{}
	}
	return &Service{
		store:      store,
		activities: activities,
		labels:     labels,
		metrics:    m,
		logger:     logger.Named("crm.student"),
	}
}

func fromRequest(req *dto.CreateStudentRequest) *database.Student {
	return &database.Student{
		LeadID:               req.LeadID,
		Name:                 strings.TrimSpace(req.Name),
		Email:                strings.TrimSpace(req.Email),
		Phone:                strings.TrimSpace(req.Phone),
		DateOfBirth:          req.DateOfBirth,
		Gender:               req.Gender,
		Nationality:          req.Nationality,
		Address:              req.Address,
		HighestQualification: req.HighestQualification,
		AcademicScore:        req.AcademicScore,
		EnglishTestType:      req.EnglishTestType,
		EnglishTestScore:     req.EnglishTestScore,
		TargetCountry:        req.TargetCountry,
		TargetProgram:        req.TargetProgram,
		Intake:               req.Intake,
		Notes:                req.Notes,
		CounsellorID:         req.Counsellor(),
		AdmissionOfficerID:   req.AdmissionOfficerID,
		BranchID:             req.BranchID,
		RegionID:             req.RegionID,
		Partner:              req.Partner,
		SubPartner:           req.SubPartner,
		Status:               req.Status,
	}
}

func (s *Service) prepare(st *database.Student, caller scope.Caller) error {
	if st.Name == "" {
		return errorx.ValidationError("name", st.Name, "name is required")
	}
	if st.Status == "" {
		st.Status = cnst.StudentStatusActive
	}
	if st.TargetCountry == nil {
		st.TargetCountry = types.StringList{}
	}
	st.CreatedBy = caller.UserID
	st.UpdatedBy = caller.UserID
	return nil
}

// Create adds a student directly, without a source lead
func (s *Service) Create(ctx context.Context, caller scope.Caller, req *dto.CreateStudentRequest) (*database.Student, error) {
	st := fromRequest(req)
	st.BranchID = utils.FirstNonEmpty(st.BranchID, caller.BranchID)
	st.RegionID = utils.FirstNonEmpty(st.RegionID, caller.RegionID)
	if rule := scope.Resolve(caller); rule.Kind == scope.KindMatch {
		switch rule.Field {
		case scope.FieldCounselor:
			st.CounsellorID = utils.FirstNonEmpty(st.CounsellorID, caller.UserID)
		case scope.FieldAdmissionOfficer:
			st.AdmissionOfficerID = utils.FirstNonEmpty(st.AdmissionOfficerID, caller.UserID)
		case scope.FieldPartner:
			st.Partner = utils.FirstNonEmpty(st.Partner, caller.UserID)
		case scope.FieldSubPartner:
			st.SubPartner = utils.FirstNonEmpty(st.SubPartner, caller.UserID)
		}
	}
	if err := s.prepare(st, caller); err != nil {
		return nil, err
	}
	if err := s.store.CreateStudent(ctx, st); err != nil {
		return nil, err
	}
	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityStudent,
		EntityID:     st.ID,
		ActivityType: cnst.ActivityCreated,
		Title:        "Student Created",
		Description:  "Student " + st.Name + " was created",
		Actor:        activity.ActorFor(caller),
	})
	s.labels.EnrichStudent(ctx, st)
	return st, nil
}

// Get returns nil when the student does not exist or the caller may not see it
func (s *Service) Get(ctx context.Context, caller scope.Caller, id string) (*database.Student, error) {
	st, err := s.store.FindStudentByID(ctx, id, scope.Resolve(caller))
	if err != nil || st == nil {
		return nil, err
	}
	s.labels.EnrichStudent(ctx, st)
	return st, nil
}

func (s *Service) List(ctx context.Context, caller scope.Caller, filter database.StudentFilter) ([]*database.Student, int64, error) {
	students, total, err := s.store.ListStudents(ctx, scope.Resolve(caller), filter)
	if err != nil {
		return nil, 0, err
	}
	for _, st := range students {
		s.labels.EnrichStudent(ctx, st)
	}
	return students, total, nil
}

func (s *Service) Search(ctx context.Context, caller scope.Caller, q string) ([]*database.Student, error) {
	if strings.TrimSpace(q) == "" {
		return []*database.Student{}, nil
	}
	students, _, err := s.List(ctx, caller, database.StudentFilter{
		Query: q,
		Page:  database.Page{PageSize: searchLimit},
	})
	return students, err
}

func (s *Service) Stats(ctx context.Context, caller scope.Caller) (*database.GroupStats, error) {
	return s.store.StudentStats(ctx, scope.Resolve(caller))
}

// Update applies a partial update and logs one activity per changed field
func (s *Service) Update(ctx context.Context, caller scope.Caller, id string, req *dto.UpdateStudentRequest) (*database.Student, error) {
	before, err := s.store.FindStudentByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, errorx.NotFoundError("student", id)
	}
	updates := req.Updates()
	if len(updates) == 0 {
		s.labels.EnrichStudent(ctx, before)
		return before, nil
	}
	if caller.UserID != "" {
		updates["updated_by"] = caller.UserID
	}
	if err := s.store.UpdateStudent(ctx, id, updates); err != nil {
		return nil, err
	}
	after, err := s.store.FindStudentByID(ctx, id, scope.All)
	if err != nil {
		return nil, err
	}
	if after == nil {
		return nil, errorx.NotFoundError("student", id)
	}

	changes, err := activity.Diff(before, after)
	if err != nil {
		s.logger.Error("failed to diff student", zap.String("student_id", id), zap.Error(err))
	}
	s.activities.RecordChanges(ctx, cnst.EntityStudent, id, changes, activity.ActorFor(caller))

	s.labels.EnrichStudent(ctx, after)
	return after, nil
}

func (s *Service) Delete(ctx context.Context, caller scope.Caller, id string) error {
	st, err := s.store.FindStudentByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return err
	}
	if st == nil {
		return errorx.NotFoundError("student", id)
	}
	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityStudent,
		EntityID:     id,
		ActivityType: cnst.ActivityDeleted,
		Title:        "Student Deleted",
		Description:  "Student " + st.Name + " was deleted",
		Actor:        activity.ActorFor(caller),
	})
	return nil
}

// Activities returns a visible student's timeline, including the history
// carried over from its lead
func (s *Service) Activities(ctx context.Context, caller scope.Caller, id string) ([]*database.Activity, error) {
	st, err := s.store.FindStudentByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, errorx.NotFoundError("student", id)
	}
	return s.activities.List(ctx, cnst.EntityStudent, id)
}
