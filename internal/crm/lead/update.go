package lead

import (
	"context"
	"strings"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/nyaruka/phonenumbers"
)

// Update applies a partial update. A converted lead is frozen; contact
// details are checked before anything is written.
func (s *Service) Update(ctx context.Context, caller scope.Caller, id string, req *dto.UpdateLeadRequest) (*database.Lead, error) {
	before, err := s.store.FindLeadByID(ctx, id, scope.Resolve(caller))
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, errorx.NotFoundError("lead", id)
	}
	if err := s.guardConverted(ctx, before); err != nil {
		return nil, err
	}

	updates := req.Updates()
	email, phone := stringUpdate(updates, "email"), stringUpdate(updates, "phone")
	if email != nil || phone != nil {
		effectiveEmail, effectivePhone := before.Email, before.Phone
		if email != nil {
			effectiveEmail = *email
		}
		if phone != nil {
			effectivePhone = *phone
		}
		if emailPhoneSame(effectiveEmail, effectivePhone) {
			return nil, s.reject(errorx.EmailPhoneSame())
		}
	}
	if err := s.checkDuplicates(ctx, id, email, phone); err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		s.labels.EnrichLead(ctx, before)
		return before, nil
	}
	if caller.UserID != "" {
		updates["updated_by"] = caller.UserID
	}
	if err := s.store.UpdateLead(ctx, id, updates); err != nil {
		return nil, err
	}
	// reload unscoped: a reassignment may move the lead out of the caller's view
	after, err := s.store.FindLeadByID(ctx, id, scope.All)
	if err != nil {
		return nil, err
	}
	if after == nil {
		return nil, errorx.NotFoundError("lead", id)
	}

	s.recordTracked(ctx, before, after, activity.ActorFor(caller))
	if !before.IsLost.Bool() && after.IsLost.Bool() {
		s.metrics.LeadMarkedLost()
		s.notifyAsync(ctx, "lead_lost", after, s.notifierCall(false))
	}

	s.labels.EnrichLead(ctx, after)
	return after, nil
}

func stringUpdate(updates map[string]any, column string) *string {
	v, ok := updates[column].(string)
	if !ok {
		return nil
	}
	return &v
}

// guardConverted refuses writes to a lead that has become a student, whether
// or not the lead's own flag was persisted.
func (s *Service) guardConverted(ctx context.Context, l *database.Lead) error {
	if l.IsConverted.Bool() {
		return s.reject(errorx.LeadConverted(l.ID))
	}
	student, err := s.store.FindStudentByLeadID(ctx, l.ID)
	if err != nil {
		return err
	}
	if student != nil {
		return s.reject(errorx.LeadConverted(l.ID))
	}
	return nil
}

// checkDuplicates looks for another lead holding email or phone. A nil or
// blank value skips that check.
func (s *Service) checkDuplicates(ctx context.Context, excludeID string, email, phone *string) error {
	var fields errorx.DuplicateFields
	if email != nil && *email != "" {
		other, err := s.store.FindLeadByEmail(ctx, *email, excludeID)
		if err != nil {
			return err
		}
		fields.Email = other != nil
	}
	if phone != nil && *phone != "" {
		other, err := s.store.FindLeadByPhone(ctx, *phone, excludeID)
		if err != nil {
			return err
		}
		fields.Phone = other != nil
	}
	if fields.Email || fields.Phone {
		return s.reject(errorx.Duplicate(fields))
	}
	return nil
}

// emailPhoneSame catches a phone number typed into the email field: the
// normalized email may not equal the phone as typed, its digits, or +digits.
func emailPhoneSame(email, phone string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	p := strings.ToLower(strings.TrimSpace(phone))
	if e == "" || p == "" {
		return false
	}
	if e == p {
		return true
	}
	digits := phonenumbers.NormalizeDigitsOnly(p)
	return digits != "" && (e == digits || e == "+"+digits)
}

// recordTracked logs the lead fields that have their own activity types.
// Other lead fields change silently.
func (s *Service) recordTracked(ctx context.Context, before, after *database.Lead, actor activity.Actor) {
	entry := func(typ cnst.ActivityType, title, field, oldValue, newValue string) activity.Entry {
		return activity.Entry{
			EntityType:   cnst.EntityLead,
			EntityID:     after.ID,
			ActivityType: typ,
			Title:        title,
			Description:  activity.Describe(activity.FieldLabel(field), oldValue, newValue),
			FieldName:    field,
			OldValue:     oldValue,
			NewValue:     newValue,
			Actor:        actor,
		}
	}

	if before.Status != after.Status {
		s.activities.Record(ctx, entry(cnst.ActivityStatusChanged, "Status Changed", "status", before.Status, after.Status))
	}
	if before.CounselorID != after.CounselorID {
		s.activities.Record(ctx, entry(cnst.ActivityAssigned, "Counselor Assigned", "counselorId", before.CounselorID, after.CounselorID))
	}
	wasLost, isLost := before.IsLost.Bool(), after.IsLost.Bool()
	switch {
	case !wasLost && isLost:
		s.activities.Record(ctx, entry(cnst.ActivityMarkedLost, "Lead Marked Lost", "isLost", "false", "true"))
	case wasLost && !isLost:
		s.activities.Record(ctx, entry(cnst.ActivityUnmarkedLost, "Lead Unmarked Lost", "isLost", "true", "false"))
	}
	if before.LostReason != after.LostReason {
		s.activities.Record(ctx, entry(cnst.ActivityLostReasonUpdated, "Lost Reason Updated", "lostReason", before.LostReason, after.LostReason))
	}
}
