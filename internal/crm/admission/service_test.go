package admission

import (
	"context"
	"testing"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var admin = scope.Caller{UserID: "admin-1", Name: "Ada", Role: "super_admin"}

type fixture struct {
	svc  *Service
	acts *activity.Service
	app  *database.Application
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	st := &database.Student{Name: "Wen", CounsellorID: "c-1", Status: cnst.StudentStatusActive}
	require.NoError(t, store.CreateStudent(ctx, st))
	app := &database.Application{StudentID: st.ID, University: "ETH", Program: "Physics", AppStatus: cnst.AppStatusDraft}
	require.NoError(t, store.CreateApplication(ctx, app))

	acts := activity.NewService(store, zap.NewNop(), nil)
	return &fixture{svc: NewService(store, acts, zap.NewNop()), acts: acts, app: app}
}

func TestCreateDefaultsFromApplication(t *testing.T) {
	f := newFixture(t)
	adm, err := f.svc.Create(context.Background(), admin, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID})
	require.NoError(t, err)

	assert.Regexp(t, `^ADM-\d{6}-\d{3}$`, adm.AdmissionID)
	assert.Equal(t, f.app.StudentID, adm.StudentID)
	assert.Equal(t, "ETH", adm.University)
	assert.Equal(t, "Physics", adm.Program)
	assert.Equal(t, cnst.DecisionPending, adm.Decision)

	timeline, err := f.acts.List(context.Background(), cnst.EntityAdmission, adm.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, cnst.ActivityCreated, timeline[0].ActivityType)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, admin, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID, Decision: "maybe"})
	assert.Equal(t, errorx.ErrInvalidInput.Code, errorx.CodeOf(err))

	_, err = f.svc.Create(ctx, admin, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID, TuitionFee: -1})
	assert.Equal(t, errorx.ErrInvalidInput.Code, errorx.CodeOf(err))

	_, err = f.svc.Create(ctx, admin, &dto.CreateAdmissionRequest{ApplicationID: "missing"})
	assert.Equal(t, errorx.ErrResourceNotFound.Code, errorx.CodeOf(err))

	other := scope.Caller{UserID: "c-2", Role: "counselor"}
	_, err = f.svc.Create(ctx, other, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID})
	assert.Equal(t, errorx.ErrResourceNotFound.Code, errorx.CodeOf(err))
}

func TestCreateKeepsApplicationStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := scope.Caller{UserID: "c-1", Role: "counselor"}

	_, err := f.svc.Create(ctx, owner, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID, StudentID: "someone-else"})
	require.Error(t, err)
	assert.Equal(t, errorx.ErrInvalidInput.Code, errorx.CodeOf(err))

	adm, err := f.svc.Create(ctx, owner, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID, StudentID: f.app.StudentID})
	require.NoError(t, err)
	assert.Equal(t, f.app.StudentID, adm.StudentID)

	got, err := f.svc.Get(ctx, owner, adm.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, adm.ID, got.ID)
}

func TestUpdateDiffsDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	adm, err := f.svc.Create(ctx, admin, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID})
	require.NoError(t, err)

	accepted, amount := "accepted", 2500.5
	updated, err := f.svc.Update(ctx, admin, adm.ID, &dto.UpdateAdmissionRequest{
		Decision:          &accepted,
		ScholarshipAmount: &amount,
	})
	require.NoError(t, err)
	assert.Equal(t, cnst.DecisionAccepted, updated.Decision)

	timeline, err := f.acts.List(ctx, cnst.EntityAdmission, adm.ID)
	require.NoError(t, err)
	byField := map[string]*database.Activity{}
	for _, a := range timeline {
		if a.ActivityType == cnst.ActivityUpdated {
			byField[a.FieldName] = a
		}
	}
	require.Len(t, byField, 2)
	assert.Equal(t, `Decision changed from "pending" to "accepted"`, byField["decision"].Description)
	assert.Equal(t, "0", byField["scholarshipAmount"].OldValue)
	assert.Equal(t, "2500.5", byField["scholarshipAmount"].NewValue)

	bad := "maybe"
	_, err = f.svc.Update(ctx, admin, adm.ID, &dto.UpdateAdmissionRequest{Decision: &bad})
	assert.Equal(t, errorx.ErrInvalidInput.Code, errorx.CodeOf(err))
}

func TestScopeAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	adm, err := f.svc.Create(ctx, admin, &dto.CreateAdmissionRequest{ApplicationID: f.app.ID})
	require.NoError(t, err)

	other := scope.Caller{UserID: "c-2", Role: "counselor"}
	got, err := f.svc.Get(ctx, other, adm.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, errorx.ErrResourceNotFound.Code, errorx.CodeOf(f.svc.Delete(ctx, other, adm.ID)))

	owner := scope.Caller{UserID: "c-1", Role: "counselor"}
	list, total, err := f.svc.List(ctx, owner, database.AdmissionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	stats, err := f.svc.Stats(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.By[string(cnst.DecisionPending)])

	require.NoError(t, f.svc.Delete(ctx, owner, adm.ID))
	got, err = f.svc.Get(ctx, admin, adm.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
