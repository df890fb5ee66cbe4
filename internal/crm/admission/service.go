// Package admission records university decisions on applications.
package admission

import (
	"context"
	"time"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/refcode"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/pkg/utils"
	"go.uber.org/zap"
)

// Store is the persistence the admission service needs
type Store interface {
	database.AdmissionRepository
	FindApplicationByID(ctx context.Context, id string, rule scope.Rule) (*database.Application, error)
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
		logger:     logger.Named("crm.admission"),
		now:        time.Now,
	}
}

func checkAmounts(amounts map[string]float64) error {
	for field, v := range amounts {
		if v < 0 {
			return errorx.ValidationError(field, v, field+" must not be negative")
		}
	}
	return nil
}

// Create records a decision on an application the caller can see. The
// student, university and program default to the application's.
func (s *Service) Create(ctx context.Context, caller scope.Caller, req *dto.CreateAdmissionRequest) (*database.Admission, error) {
	app, err := s.store.FindApplicationByID(ctx, req.ApplicationID, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errorx.NotFoundError("application", req.ApplicationID)
	}

	// an admission always belongs to its application's student
	if req.StudentID != "" && req.StudentID != app.StudentID {
		return nil, errorx.ValidationError("studentId", req.StudentID, "studentId does not match the application")
	}

	decision := cnst.Decision(req.Decision)
	if decision == "" {
		decision = cnst.DecisionPending
	}
	if !decision.IsValid() {
		return nil, errorx.ValidationError("decision", req.Decision, "unknown decision")
	}
	if err := checkAmounts(map[string]float64{
		"scholarshipAmount": req.ScholarshipAmount,
		"depositAmount":     req.DepositAmount,
		"tuitionFee":        req.TuitionFee,
	}); err != nil {
		return nil, err
	}

	adm := &database.Admission{
		AdmissionID:       refcode.Admission(s.now()),
		ApplicationID:     app.ID,
		StudentID:         app.StudentID,
		University:        utils.FirstNonEmpty(req.University, app.University),
		Program:           utils.FirstNonEmpty(req.Program, app.Program),
		Decision:          decision,
		DecisionDate:      req.DecisionDate,
		ScholarshipAmount: req.ScholarshipAmount,
		DepositAmount:     req.DepositAmount,
		DepositPaid:       req.DepositPaid,
		DepositDate:       req.DepositDate,
		TuitionFee:        req.TuitionFee,
		VisaStatus:        req.VisaStatus,
		Notes:             req.Notes,
		CreatedBy:         caller.UserID,
		UpdatedBy:         caller.UserID,
	}
	if err := s.store.CreateAdmission(ctx, adm); err != nil {
		return nil, err
	}
	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityAdmission,
		EntityID:     adm.ID,
		ActivityType: cnst.ActivityCreated,
		Title:        "Admission Created",
		Description:  "Admission " + adm.AdmissionID + " recorded as " + string(adm.Decision),
		Actor:        activity.ActorFor(caller),
	})
	return adm, nil
}

// Get returns nil when the admission does not exist or its student is hidden
func (s *Service) Get(ctx context.Context, caller scope.Caller, id string) (*database.Admission, error) {
	return s.store.FindAdmissionByID(ctx, id, scope.Resolve(caller))
}

func (s *Service) List(ctx context.Context, caller scope.Caller, filter database.AdmissionFilter) ([]*database.Admission, int64, error) {
	return s.store.ListAdmissions(ctx, scope.Resolve(caller), filter)
}

func (s *Service) Stats(ctx context.Context, caller scope.Caller) (*database.GroupStats, error) {
	return s.store.AdmissionStats(ctx, scope.Resolve(caller))
}

func (s *Service) Update(ctx context.Context, caller scope.Caller, id string, req *dto.UpdateAdmissionRequest) (*database.Admission, error) {
	before, err := s.store.FindAdmissionByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, errorx.NotFoundError("admission", id)
	}
	if req.Decision != nil && !cnst.Decision(*req.Decision).IsValid() {
		return nil, errorx.ValidationError("decision", *req.Decision, "unknown decision")
	}
	amounts := map[string]float64{}
	for field, v := range map[string]*float64{
		"scholarshipAmount": req.ScholarshipAmount,
		"depositAmount":     req.DepositAmount,
		"tuitionFee":        req.TuitionFee,
	} {
		if v != nil {
			amounts[field] = *v
		}
	}
	if err := checkAmounts(amounts); err != nil {
		return nil, err
	}

	updates := req.Updates()
	if len(updates) == 0 {
		return before, nil
	}
	if caller.UserID != "" {
		updates["updated_by"] = caller.UserID
	}
	if err := s.store.UpdateAdmission(ctx, id, updates); err != nil {
		return nil, err
	}
	after, err := s.store.FindAdmissionByID(ctx, id, scope.All)
	if err != nil {
		return nil, err
	}
	if after == nil {
		return nil, errorx.NotFoundError("admission", id)
	}

	changes, err := activity.Diff(before, after)
	if err != nil {
		s.logger.Error("failed to diff admission", zap.String("admission_id", id), zap.Error(err))
	}
	s.activities.RecordChanges(ctx, cnst.EntityAdmission, id, changes, activity.ActorFor(caller))
	return after, nil
}

func (s *Service) Delete(ctx context.Context, caller scope.Caller, id string) error {
	adm, err := s.store.FindAdmissionByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return err
	}
	if adm == nil {
		return errorx.NotFoundError("admission", id)
	}
	if err := s.store.DeleteAdmission(ctx, id); err != nil {
		return err
	}
	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityAdmission,
		EntityID:     id,
		ActivityType: cnst.ActivityDeleted,
		Title:        "Admission Deleted",
		Description:  "Admission " + adm.AdmissionID + " was deleted",
		Actor:        activity.ActorFor(caller),
	})
	return nil
}

func (s *Service) Activities(ctx context.Context, caller scope.Caller, id string) ([]*database.Activity, error) {
	adm, err := s.store.FindAdmissionByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if adm == nil {
		return nil, errorx.NotFoundError("admission", id)
	}
	return s.activities.List(ctx, cnst.EntityAdmission, id)
}
