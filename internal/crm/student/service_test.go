package student

import (
	"context"
	"testing"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var admin = scope.Caller{UserID: "admin-1", Name: "Ada", Role: "super_admin"}

type harness struct {
	svc   *Service
	store *database.Store
	acts  *activity.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	acts := activity.NewService(store, zap.NewNop(), nil)
	return &harness{
		svc:   NewService(store, acts, nil, nil, zap.NewNop()),
		store: store,
		acts:  acts,
	}
}

func (h *harness) seedLead(t *testing.T, l *database.Lead, activities int) *database.Lead {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.store.CreateLead(ctx, l))
	for i := 0; i < activities; i++ {
		_, err := h.acts.LogActivity(ctx, activity.Entry{
			EntityType:   cnst.EntityLead,
			EntityID:     l.ID,
			ActivityType: cnst.ActivityUpdated,
			Title:        "Note",
		})
		require.NoError(t, err)
	}
	return l
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errorx.CodeOf(err))
}

func TestCreateDefaults(t *testing.T) {
	h := newHarness(t)
	counselor := scope.Caller{UserID: "c-1", Role: "counselor", BranchID: "b-1", RegionID: "r-1"}

	st, err := h.svc.Create(context.Background(), counselor, &dto.CreateStudentRequest{Name: "  Mia "})
	require.NoError(t, err)
	assert.Equal(t, "Mia", st.Name)
	assert.Equal(t, cnst.StudentStatusActive, st.Status)
	assert.Equal(t, "c-1", st.CounsellorID)
	assert.Equal(t, "b-1", st.BranchID)
	assert.Equal(t, "r-1", st.RegionID)
	assert.Equal(t, types.StringList{}, st.TargetCountry)

	acts, err := h.acts.List(context.Background(), cnst.EntityStudent, st.ID)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, cnst.ActivityCreated, acts[0].ActivityType)

	_, err = h.svc.Create(context.Background(), admin, &dto.CreateStudentRequest{Name: " "})
	requireCode(t, err, errorx.ErrInvalidInput.Code)
}

func TestConvertTransfersTimeline(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lead := h.seedLead(t, &database.Lead{
		Name:        "Noah",
		Email:       "noah@example.com",
		Phone:       "+15550001",
		Country:     types.StringList{"us", "ca"},
		CounselorID: "c-7",
		BranchID:    "b-2",
		RegionID:    "r-2",
	}, 3)

	res, err := h.svc.ConvertFromLead(ctx, admin, lead.ID, &dto.CreateStudentRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.TransferredActivities)

	st := res.Student
	assert.Equal(t, "Noah", st.Name)
	assert.Equal(t, "noah@example.com", st.Email)
	assert.Equal(t, "c-7", st.CounsellorID)
	assert.Equal(t, "b-2", st.BranchID)
	assert.Equal(t, types.StringList{"us", "ca"}, st.TargetCountry)

	studentActs, err := h.acts.List(ctx, cnst.EntityStudent, st.ID)
	require.NoError(t, err)
	assert.Len(t, studentActs, 4)
	var converted int
	for _, a := range studentActs {
		if a.ActivityType == cnst.ActivityConverted {
			converted++
		}
	}
	assert.Equal(t, 1, converted)

	leadActs, err := h.acts.List(ctx, cnst.EntityLead, lead.ID)
	require.NoError(t, err)
	assert.Empty(t, leadActs)

	reloaded, err := h.store.FindLeadByID(ctx, lead.ID, scope.All)
	require.NoError(t, err)
	assert.True(t, reloaded.IsConverted.Bool())
}

func TestConvertPayloadWins(t *testing.T) {
	h := newHarness(t)
	lead := h.seedLead(t, &database.Lead{Name: "Olga", CounselorID: "c-1", Country: types.StringList{"uk"}}, 0)

	res, err := h.svc.ConvertFromLead(context.Background(), admin, lead.ID, &dto.CreateStudentRequest{
		Name:          "Olga K",
		CounselorID:   "c-9",
		TargetCountry: types.StringList{"de"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Olga K", res.Student.Name)
	assert.Equal(t, "c-9", res.Student.CounsellorID)
	assert.Equal(t, types.StringList{"de"}, res.Student.TargetCountry)
	assert.Zero(t, res.TransferredActivities)
}

func TestConvertTwiceIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lead := h.seedLead(t, &database.Lead{Name: "Pia"}, 1)

	_, err := h.svc.ConvertFromLead(ctx, admin, lead.ID, &dto.CreateStudentRequest{})
	require.NoError(t, err)

	_, err = h.svc.ConvertFromLead(ctx, admin, lead.ID, &dto.CreateStudentRequest{})
	requireCode(t, err, errorx.ErrLeadConverted.Code)

	// the lead flag is not the only guard: a referencing student is enough
	require.NoError(t, h.store.UpdateLead(ctx, lead.ID, map[string]any{"is_converted": types.Flag(false)}))
	_, err = h.svc.ConvertFromLead(ctx, admin, lead.ID, &dto.CreateStudentRequest{})
	requireCode(t, err, errorx.ErrLeadConverted.Code)
}

func TestConvertMissingLeadUsesPayload(t *testing.T) {
	h := newHarness(t)
	res, err := h.svc.ConvertFromLead(context.Background(), admin, "", &dto.CreateStudentRequest{
		LeadID: "missing",
		Name:   "Quinn",
	})
	require.NoError(t, err)
	assert.Equal(t, "Quinn", res.Student.Name)
	assert.Zero(t, res.TransferredActivities)
}

func TestUpdateLogsChangedFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st, err := h.svc.Create(ctx, admin, &dto.CreateStudentRequest{Name: "Rae", Notes: "first call"})
	require.NoError(t, err)

	notes, intake := "second call", "2027-fall"
	same := "Rae"
	updated, err := h.svc.Update(ctx, admin, st.ID, &dto.UpdateStudentRequest{
		Name:   &same,
		Notes:  &notes,
		Intake: &intake,
	})
	require.NoError(t, err)
	assert.Equal(t, "second call", updated.Notes)

	acts, err := h.acts.List(ctx, cnst.EntityStudent, st.ID)
	require.NoError(t, err)
	byField := map[string]*database.Activity{}
	for _, a := range acts {
		if a.ActivityType == cnst.ActivityUpdated {
			byField[a.FieldName] = a
		}
	}
	require.Len(t, byField, 2)
	require.Contains(t, byField, "notes")
	assert.Equal(t, "first call", byField["notes"].OldValue)
	assert.Equal(t, "second call", byField["notes"].NewValue)
	assert.Equal(t, `Notes changed from "first call" to "second call"`, byField["notes"].Description)
	assert.Equal(t, `Intake changed from "empty" to "2027-fall"`, byField["intake"].Description)
}

func TestScopeHidesStudents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	st, err := h.svc.Create(ctx, admin, &dto.CreateStudentRequest{Name: "Sam", CounsellorID: "c-1"})
	require.NoError(t, err)

	other := scope.Caller{UserID: "c-2", Role: "counselor"}
	got, err := h.svc.Get(ctx, other, st.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	notes := "x"
	_, err = h.svc.Update(ctx, other, st.ID, &dto.UpdateStudentRequest{Notes: &notes})
	requireCode(t, err, errorx.ErrResourceNotFound.Code)
	requireCode(t, h.svc.Delete(ctx, other, st.ID), errorx.ErrResourceNotFound.Code)

	owner := scope.Caller{UserID: "c-1", Role: "counselor"}
	got, err = h.svc.Get(ctx, owner, st.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, h.svc.Delete(ctx, owner, st.ID))
	got, err = h.svc.Get(ctx, admin, st.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSearchAndStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, name := range []string{"Tara", "Tom", "Uma"} {
		_, err := h.svc.Create(ctx, admin, &dto.CreateStudentRequest{Name: name})
		require.NoError(t, err)
	}
	found, err := h.svc.Search(ctx, admin, "t")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := h.svc.Search(ctx, admin, "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	stats, err := h.svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 3, stats.By[cnst.StudentStatusActive])
}
