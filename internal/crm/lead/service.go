// Package lead implements lead intake and the lead lifecycle rules.
package lead

import (
	"context"
	"io"
	"strings"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/export"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/internal/notify"
	"github.com/amoylab/nextcrm/pkg/metrics"
	"github.com/amoylab/nextcrm/pkg/utils"
	"go.uber.org/zap"
)

const searchLimit = 50

// Store is the persistence the lead service needs
type Store interface {
	database.LeadRepository
	FindStudentByLeadID(ctx context.Context, leadID string) (*database.Student, error)
}

// Labeler fills display labels on a lead
type Labeler interface {
	EnrichLead(ctx context.Context, l *database.Lead)
}

type Service struct {
	store      Store
	activities *activity.Service
	labels     Labeler
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

type noLabels struct{}

func (noLabels) EnrichLead(context.Context, *database.Lead) {}

// NewService wires the lead service. labels and notifier may be nil.
func NewService(store Store, activities *activity.Service, labels Labeler, notifier notify.Notifier, m *metrics.Metrics, logger *zap.Logger) *Service {
	if labels == nil {
		labels = noLabels{}
	}
	return &Service{
		store:      store,
		activities: activities,
		labels:     labels,
		notifier:   notifier,
		metrics:    m,
		logger:     logger.Named("crm.lead"),
	}
}

func (s *Service) Create(ctx context.Context, caller scope.Caller, req *dto.CreateLeadRequest) (*database.Lead, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.ValidationError("name", req.Name, "name is required")
	}
	l := &database.Lead{
		Name:               name,
		Email:              strings.TrimSpace(req.Email),
		Phone:              strings.TrimSpace(req.Phone),
		City:               req.City,
		Country:            nonNil(req.Country),
		Program:            nonNil(req.Program),
		Source:             req.Source,
		Status:             req.Status,
		Expectation:        req.Expectation,
		Type:               req.Type,
		StudyLevel:         req.StudyLevel,
		StudyPlan:          req.StudyPlan,
		CounselorID:        req.CounselorID,
		AdmissionOfficerID: req.AdmissionOfficerID,
		BranchID:           utils.FirstNonEmpty(req.BranchID, caller.BranchID),
		RegionID:           utils.FirstNonEmpty(req.RegionID, caller.RegionID),
		CreatedBy:          caller.UserID,
		UpdatedBy:          caller.UserID,
	}
	if l.Status == "" {
		l.Status = cnst.LeadStatusNew
	}
	// a lead created by its owner must stay visible to its owner
	if rule := scope.Resolve(caller); rule.Kind == scope.KindMatch {
		switch rule.Field {
		case scope.FieldCounselor:
			l.CounselorID = utils.FirstNonEmpty(l.CounselorID, caller.UserID)
		case scope.FieldAdmissionOfficer:
			l.AdmissionOfficerID = utils.FirstNonEmpty(l.AdmissionOfficerID, caller.UserID)
		}
	}

	if emailPhoneSame(l.Email, l.Phone) {
		return nil, s.reject(errorx.EmailPhoneSame())
	}
	if err := s.checkDuplicates(ctx, "", &l.Email, &l.Phone); err != nil {
		return nil, err
	}
	if err := s.store.CreateLead(ctx, l); err != nil {
		return nil, err
	}
	s.metrics.LeadCreated()

	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityLead,
		EntityID:     l.ID,
		ActivityType: cnst.ActivityCreated,
		Title:        "Lead Created",
		Description:  "Lead " + l.Name + " was created",
		Actor:        activity.ActorFor(caller),
	})
	s.notifyAsync(ctx, "lead_created", l, s.notifierCall(true))

	s.labels.EnrichLead(ctx, l)
	return l, nil
}

// Get returns nil when the lead does not exist or the caller may not see it
func (s *Service) Get(ctx context.Context, caller scope.Caller, id string) (*database.Lead, error) {
	l, err := s.store.FindLeadByID(ctx, id, scope.Resolve(caller))
	if err != nil || l == nil {
		return nil, err
	}
	s.labels.EnrichLead(ctx, l)
	return l, nil
}

func (s *Service) List(ctx context.Context, caller scope.Caller, filter database.LeadFilter) ([]*database.Lead, int64, error) {
	leads, total, err := s.store.ListLeads(ctx, scope.Resolve(caller), filter)
	if err != nil {
		return nil, 0, err
	}
	for _, l := range leads {
		s.labels.EnrichLead(ctx, l)
	}
	return leads, total, nil
}

// Search matches q against name, email, phone and city
func (s *Service) Search(ctx context.Context, caller scope.Caller, q string) ([]*database.Lead, error) {
	if strings.TrimSpace(q) == "" {
		return []*database.Lead{}, nil
	}
	leads, _, err := s.List(ctx, caller, database.LeadFilter{
		Query: q,
		Page:  database.Page{PageSize: searchLimit},
	})
	return leads, err
}

func (s *Service) Stats(ctx context.Context, caller scope.Caller) (*database.LeadStats, error) {
	return s.store.LeadStats(ctx, scope.Resolve(caller))
}

// Activities returns a visible lead's timeline
func (s *Service) Activities(ctx context.Context, caller scope.Caller, id string) ([]*database.Activity, error) {
	l, err := s.store.FindLeadByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, errorx.NotFoundError("lead", id)
	}
	return s.activities.List(ctx, cnst.EntityLead, id)
}

func (s *Service) Delete(ctx context.Context, caller scope.Caller, id string) error {
	l, err := s.store.FindLeadByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return err
	}
	if l == nil {
		return errorx.NotFoundError("lead", id)
	}
	if err := s.store.DeleteLead(ctx, id); err != nil {
		return err
	}
	s.activities.Record(ctx, activity.Entry{
		EntityType:   cnst.EntityLead,
		EntityID:     id,
		ActivityType: cnst.ActivityDeleted,
		Title:        "Lead Deleted",
		Description:  "Lead " + l.Name + " was deleted",
		Actor:        activity.ActorFor(caller),
	})
	return nil
}

// Export writes every lead matching filter, ignoring pagination, as xlsx
func (s *Service) Export(ctx context.Context, caller scope.Caller, filter database.LeadFilter, w io.Writer) error {
	filter.Page = database.AllRows
	leads, _, err := s.List(ctx, caller, filter)
	if err != nil {
		return err
	}
	return export.Leads(w, leads)
}

func (s *Service) reject(err *errorx.APIError) error {
	s.metrics.LeadWriteRejected(err.Code)
	return err
}

func (s *Service) notifierCall(created bool) func(context.Context, *database.Lead) error {
	if s.notifier == nil {
		return nil
	}
	if created {
		return s.notifier.QueueLeadCreationNotification
	}
	return s.notifier.QueueLeadLostNotification
}

// notifyAsync runs fn in the background on a snapshot of l. The request may
// finish, and its context be cancelled, before the notification is queued.
func (s *Service) notifyAsync(ctx context.Context, event string, l *database.Lead, fn func(context.Context, *database.Lead) error) {
	if fn == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	snapshot := *l
	go func() {
		if err := fn(ctx, &snapshot); err != nil {
			s.metrics.SideEffectFailed("notification")
			s.logger.Error("failed to queue notification",
				zap.String("event", event), zap.String("lead_id", snapshot.ID), zap.Error(err))
		}
	}()
}

func nonNil(l types.StringList) types.StringList {
	if l == nil {
		return types.StringList{}
	}
	return l
}
