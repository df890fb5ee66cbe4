package student

import (
	"context"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/pkg/trace"
	"github.com/amoylab/nextcrm/pkg/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Conversion is the outcome of ConvertFromLead
type Conversion struct {
	Student               *database.Student
	TransferredActivities int64
}

// ConvertFromLead creates a student from req, filling blanks from the lead
// leadID (or req.LeadID when empty), and moves the lead's timeline onto the
// student.
//
// The student row, the timeline transfer and the "converted" entry commit
// together. Flagging the lead as converted happens afterwards; if that write
// fails the lead is still frozen because a student references it.
func (s *Service) ConvertFromLead(ctx context.Context, caller scope.Caller, leadID string, req *dto.CreateStudentRequest) (res *Conversion, err error) {
	st := fromRequest(req)
	st.LeadID = utils.FirstNonEmpty(leadID, st.LeadID)

	sc := trace.Tracer(cnst.TraceCRM).Start(ctx, "student.ConvertFromLead").
		WithAttrs(attribute.String("crm.lead_id", st.LeadID))
	defer func() {
		if res != nil {
			sc.WithAttrs(
				attribute.String("crm.student_id", res.Student.ID),
				attribute.Int64("crm.transferred_activities", res.TransferredActivities),
			)
		}
		sc.RecordError(err).End()
	}()
	ctx = sc.Ctx

	var lead *database.Lead
	if st.LeadID != "" {
		if lead, err = s.loadLead(ctx, caller, st.LeadID); err != nil {
			return nil, err
		}
	}
	if lead != nil {
		if err := s.guardConverted(ctx, lead); err != nil {
			return nil, err
		}
		mergeLead(st, lead)
	}
	if err := s.prepare(st, caller); err != nil {
		return nil, err
	}

	var transferred int64
	err = s.store.Transaction(ctx, func(ctx context.Context) error {
		if err := s.store.CreateStudent(ctx, st); err != nil {
			return err
		}
		if lead != nil {
			n, err := s.activities.TransferActivities(ctx, cnst.EntityLead, lead.ID, cnst.EntityStudent, st.ID)
			if err != nil {
				return err
			}
			transferred = n
		}
		_, err := s.activities.LogActivity(ctx, activity.Entry{
			EntityType:   cnst.EntityStudent,
			EntityID:     st.ID,
			ActivityType: cnst.ActivityConverted,
			Title:        "Converted from Lead",
			Description:  convertedDescription(st, lead),
			Actor:        activity.ActorFor(caller),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if lead != nil {
		s.markConverted(ctx, caller, lead.ID)
	}
	s.metrics.LeadConverted()
	s.logger.Info("converted lead",
		zap.String("lead_id", st.LeadID),
		zap.String("student_id", st.ID),
		zap.Int64("transferred_activities", transferred))

	s.labels.EnrichStudent(ctx, st)
	return &Conversion{Student: st, TransferredActivities: transferred}, nil
}

// loadLead returns the lead the caller may convert. A missing lead is nil so
// the payload alone becomes the student; a lead outside the caller's scope
// is not found.
func (s *Service) loadLead(ctx context.Context, caller scope.Caller, id string) (*database.Lead, error) {
	lead, err := s.store.FindLeadByID(ctx, id, scope.Resolve(caller))
	if err != nil || lead != nil {
		return lead, err
	}
	hidden, err := s.store.FindLeadByID(ctx, id, scope.All)
	if err != nil {
		return nil, err
	}
	if hidden != nil {
		return nil, errorx.NotFoundError("lead", id)
	}
	return nil, nil
}

func (s *Service) guardConverted(ctx context.Context, lead *database.Lead) error {
	if lead.IsConverted.Bool() {
		return errorx.LeadConverted(lead.ID)
	}
	existing, err := s.store.FindStudentByLeadID(ctx, lead.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return errorx.LeadConverted(lead.ID)
	}
	return nil
}

func (s *Service) markConverted(ctx context.Context, caller scope.Caller, leadID string) {
	updates := map[string]any{"is_converted": types.Flag(true)}
	if caller.UserID != "" {
		updates["updated_by"] = caller.UserID
	}
	if err := s.store.UpdateLead(ctx, leadID, updates); err != nil {
		s.metrics.SideEffectFailed("lead_flag")
		s.logger.Error("failed to flag lead as converted", zap.String("lead_id", leadID), zap.Error(err))
	}
}

// mergeLead fills the student's empty fields from its lead
func mergeLead(st *database.Student, lead *database.Lead) {
	st.Name = utils.FirstNonEmpty(st.Name, lead.Name)
	st.Email = utils.FirstNonEmpty(st.Email, lead.Email)
	st.Phone = utils.FirstNonEmpty(st.Phone, lead.Phone)
	st.BranchID = utils.FirstNonEmpty(st.BranchID, lead.BranchID)
	st.RegionID = utils.FirstNonEmpty(st.RegionID, lead.RegionID)
	st.CounsellorID = utils.FirstNonEmpty(st.CounsellorID, lead.CounselorID)
	st.AdmissionOfficerID = utils.FirstNonEmpty(st.AdmissionOfficerID, lead.AdmissionOfficerID)
	if len(st.TargetCountry) == 0 && len(lead.Country) > 0 {
		st.TargetCountry = append(types.StringList{}, lead.Country...)
	}
}

func convertedDescription(st *database.Student, lead *database.Lead) string {
	if lead == nil {
		return "Student " + st.Name + " was created from a lead"
	}
	return "Lead " + lead.Name + " was converted to student " + st.Name
}
