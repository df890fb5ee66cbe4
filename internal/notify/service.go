package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/mail"
	"go.uber.org/zap"
)

// Directory is the data the notifier reads to resolve recipients
type Directory interface {
	GetUsersByIDs(ctx context.Context, ids []string) ([]*database.User, error)
	GetBranch(ctx context.Context, id string) (*database.Branch, error)
}

// Service resolves who hears about a lead event and publishes it. Recipients
// are the assigned counselor and the manager of the lead's branch.
type Service struct {
	dir    Directory
	queue  Queue
	logger *zap.Logger
	now    func() time.Time
}

var _ Notifier = (*Service)(nil)

func NewService(dir Directory, queue Queue, logger *zap.Logger) *Service {
	return &Service{
		dir:    dir,
		queue:  queue,
		logger: logger.Named("notify"),
		now:    time.Now,
	}
}

func (s *Service) QueueLeadCreationNotification(ctx context.Context, lead *database.Lead) error {
	return s.publish(ctx, EventLeadCreated, lead)
}

func (s *Service) QueueLeadLostNotification(ctx context.Context, lead *database.Lead) error {
	return s.publish(ctx, EventLeadLost, lead)
}

func (s *Service) publish(ctx context.Context, typ EventType, lead *database.Lead) error {
	if lead == nil {
		return fmt.Errorf("notify: %s without a lead", typ)
	}
	recipients, err := s.recipients(ctx, lead)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		s.logger.Debug("no recipients for lead event",
			zap.String("event", string(typ)), zap.String("lead_id", lead.ID))
		return nil
	}

	ev := &Event{
		Type:       typ,
		Lead:       lead,
		Recipients: recipients,
		CreatedAt:  s.now(),
	}
	if typ == EventLeadLost && lead.UpdatedBy != "" {
		if users, err := s.dir.GetUsersByIDs(ctx, []string{lead.UpdatedBy}); err == nil && len(users) == 1 {
			ev.ChangedBy = users[0].FullName()
		}
	}
	if err := s.queue.Publish(ctx, ev); err != nil {
		return fmt.Errorf("notify: publish %s for lead %s: %w", typ, lead.ID, err)
	}
	return nil
}

func (s *Service) recipients(ctx context.Context, lead *database.Lead) ([]mail.Recipient, error) {
	var ids []string
	if lead.CounselorID != "" {
		ids = append(ids, lead.CounselorID)
	}
	if lead.BranchID != "" {
		branch, err := s.dir.GetBranch(ctx, lead.BranchID)
		if err != nil {
			return nil, fmt.Errorf("notify: load branch %s: %w", lead.BranchID, err)
		}
		if branch != nil && branch.ManagerID != "" && branch.ManagerID != lead.CounselorID {
			ids = append(ids, branch.ManagerID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	users, err := s.dir.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("notify: load recipients: %w", err)
	}
	out := make([]mail.Recipient, 0, len(users))
	for _, u := range users {
		if !u.IsActive || u.Email == "" {
			continue
		}
		out = append(out, mail.Recipient{Email: u.Email, Name: u.FullName()})
	}
	return out, nil
}
