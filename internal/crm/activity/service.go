// Package activity records the per-entity timeline shown in the CRM.
package activity

import (
	"context"
	"fmt"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/pkg/metrics"
	"go.uber.org/zap"
)

// Entry is the input to LogActivity
type Entry struct {
	EntityType   cnst.EntityType
	EntityID     string
	ActivityType cnst.ActivityType
	Title        string
	Description  string
	FieldName    string
	OldValue     string
	NewValue     string
	Actor        Actor
}

type Service struct {
	repo    database.ActivityRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewService(repo database.ActivityRepository, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:    repo,
		logger:  logger.Named("crm.activity"),
		metrics: m,
	}
}

// LogActivity appends one entry to an entity's timeline
func (s *Service) LogActivity(ctx context.Context, e Entry) (*database.Activity, error) {
	if e.EntityType == "" || e.EntityID == "" {
		return nil, fmt.Errorf("activity: entity type and id are required")
	}
	actor := e.Actor
	if actor.Name() == "" && actor.UserID() == "" {
		actor = NextBot
	}
	row := &database.Activity{
		EntityType:   e.EntityType,
		EntityID:     e.EntityID,
		ActivityType: e.ActivityType,
		Title:        e.Title,
		Description:  e.Description,
		FieldName:    e.FieldName,
		OldValue:     e.OldValue,
		NewValue:     e.NewValue,
		UserID:       actor.UserID(),
		UserName:     actor.Name(),
	}
	if err := s.repo.CreateActivity(ctx, row); err != nil {
		return nil, fmt.Errorf("activity: log %s on %s %s: %w", e.ActivityType, e.EntityType, e.EntityID, err)
	}
	s.metrics.ActivityLogged(string(e.EntityType), string(e.ActivityType))
	return row, nil
}

// Record is LogActivity for writes that happen after the primary entity write
// has succeeded: a failure is logged and swallowed.
func (s *Service) Record(ctx context.Context, e Entry) {
	if _, err := s.LogActivity(ctx, e); err != nil {
		s.metrics.SideEffectFailed("activity")
		s.logger.Error("failed to record activity",
			zap.String("entity_type", string(e.EntityType)),
			zap.String("entity_id", e.EntityID),
			zap.String("activity_type", string(e.ActivityType)),
			zap.Error(err))
	}
}

// RecordChanges writes one "updated" entry per change
func (s *Service) RecordChanges(ctx context.Context, entityType cnst.EntityType, entityID string, changes []Change, actor Actor) {
	for _, c := range changes {
		s.Record(ctx, Entry{
			EntityType:   entityType,
			EntityID:     entityID,
			ActivityType: cnst.ActivityUpdated,
			Title:        c.Label() + " Updated",
			Description:  c.Description(),
			FieldName:    c.Field,
			OldValue:     c.OldValue,
			NewValue:     c.NewValue,
			Actor:        actor,
		})
	}
}

// TransferActivities moves an entity's whole timeline to another entity and
// returns how many entries moved.
func (s *Service) TransferActivities(ctx context.Context, fromType cnst.EntityType, fromID string, toType cnst.EntityType, toID string) (int64, error) {
	n, err := s.repo.ReassignActivities(ctx, string(fromType), fromID, string(toType), toID)
	if err != nil {
		return 0, fmt.Errorf("activity: transfer %s %s to %s %s: %w", fromType, fromID, toType, toID, err)
	}
	s.logger.Debug("transferred activities",
		zap.String("from", string(fromType)+"/"+fromID),
		zap.String("to", string(toType)+"/"+toID),
		zap.Int64("count", n))
	return n, nil
}

// List returns the timeline of one entity, newest first
func (s *Service) List(ctx context.Context, entityType cnst.EntityType, entityID string) ([]*database.Activity, error) {
	return s.repo.ListActivities(ctx, string(entityType), entityID)
}

// Recent returns the latest entries across all entities
func (s *Service) Recent(ctx context.Context, limit int) ([]*database.Activity, error) {
	return s.repo.RecentActivities(ctx, limit)
}
