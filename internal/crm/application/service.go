// Package application manages university applications filed for students.
package application

import (
	"context"
	"strings"
	"time"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/refcode"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"go.uber.org/zap"
)

// Store is the persistence the application service needs
type Store interface {
	database.ApplicationRepository
	FindStudentByID(ctx context.Context, id string, rule scope.Rule) (*database.Student, error)
}

type Service struct {
	store      Store
	activities *activity.Service
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(store Store, activities *activity.Service, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		activities: activities,
		logger:     logger.Named("crm.application"),
		now:        time.Now,
	}
}

// Create files an application for a student the caller can see
func (s *Service) Create(ctx context.Context, caller scope.Caller, req *dto.CreateApplicationRequest) (*database.Application, error) {
	if strings.TrimSpace(req.University) == "" {
		return nil, errorx.ValidationError("university", req.University, "university is required")
	}
	student, err := s.store.FindStudentByID(ctx, req.StudentID, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, errorx.NotFoundError("student", req.StudentID)
	}

	app := &database.Application{
		ApplicationCode: refcode.Application(s.now()),
		StudentID:       student.ID,
		University:      strings.TrimSpace(req.University),
		Program:         req.Program,
		CourseType:      req.CourseType,
		AppStatus:       req.AppStatus,
		CaseStatus:      req.CaseStatus,
		Country:         req.Country,
		ChannelPartner:  req.ChannelPartner,
		Intake:          req.Intake,
		GoogleDriveLink: req.GoogleDriveLink,
		Notes:           req.Notes,
		CreatedBy:       caller.UserID,
		UpdatedBy:       caller.UserID,
	}
	if app.AppStatus == "" {
		app.AppStatus = cnst.AppStatusDraft
	}
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityApplication,
		EntityID:     app.ID,
		ActivityType: cnst.ActivityCreated,
		Title:        "Application Created",
		Description:  "Application " + app.ApplicationCode + " to " + app.University + " was created",
		Actor:        activity.ActorFor(caller),
	})
	return app, nil
}

// Get returns nil when the application does not exist or its student is hidden
func (s *Service) Get(ctx context.Context, caller scope.Caller, id string) (*database.Application, error) {
	return s.store.FindApplicationByID(ctx, id, scope.Resolve(caller))
}

func (s *Service) List(ctx context.Context, caller scope.Caller, filter database.ApplicationFilter) ([]*database.Application, int64, error) {
	return s.store.ListApplications(ctx, scope.Resolve(caller), filter)
}

// ListByStudent returns every application of one visible student
func (s *Service) ListByStudent(ctx context.Context, caller scope.Caller, studentID string) ([]*database.Application, error) {
	rule := scope.Resolve(caller)
	student, err := s.store.FindStudentByID(ctx, studentID, rule)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, errorx.NotFoundError("student", studentID)
	}
	apps, _, err := s.store.ListApplications(ctx, rule, database.ApplicationFilter{
		StudentID: studentID,
		Page:      database.AllRows,
	})
	return apps, err
}

func (s *Service) Stats(ctx context.Context, caller scope.Caller) (*database.GroupStats, error) {
	return s.store.ApplicationStats(ctx, scope.Resolve(caller))
}

func (s *Service) Update(ctx context.Context, caller scope.Caller, id string, req *dto.UpdateApplicationRequest) (*database.Application, error) {
	rule := scope.Resolve(caller)
	before, err := s.store.FindApplicationByID(ctx, id, rule)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, errorx.NotFoundError("application", id)
	}
	updates := req.Updates()
	if len(updates) == 0 {
		return before, nil
	}
	if caller.UserID != "" {
		updates["updated_by"] = caller.UserID
	}
	if err := s.store.UpdateApplication(ctx, id, updates); err != nil {
		return nil, err
	}
	after, err := s.store.FindApplicationByID(ctx, id, scope.All)
	if err != nil {
		return nil, err
	}
	if after == nil {
		return nil, errorx.NotFoundError("application", id)
	}

	changes, err := activity.Diff(before, after)
	if err != nil {
		s.logger.Error("failed to diff application", zap.String("application_id", id), zap.Error(err))
	}
	s.activities.RecordChanges(ctx, cnst.EntityApplication, id, changes, activity.ActorFor(caller))
	return after, nil
}

func (s *Service) Delete(ctx context.Context, caller scope.Caller, id string) error {
	app, err := s.store.FindApplicationByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return err
	}
	if app == nil {
		return errorx.NotFoundError("application", id)
	}
	if err := s.store.DeleteApplication(ctx, id); err != nil {
		return err
	}
	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityApplication,
		EntityID:     id,
		ActivityType: cnst.ActivityDeleted,
		Title:        "Application Deleted",
		Description:  "Application " + app.ApplicationCode + " was deleted",
		Actor:        activity.ActorFor(caller),
	})
	return nil
}

func (s *Service) Activities(ctx context.Context, caller scope.Caller, id string) ([]*database.Activity, error) {
	app, err := s.store.FindApplicationByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errorx.NotFoundError("application", id)
	}
	return s.activities.List(ctx, cnst.EntityApplication, id)
}
