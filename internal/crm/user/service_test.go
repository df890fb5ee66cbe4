package user

import (
	"context"
	"errors"
	"testing"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/internal/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type sentMail struct {
	name string
	to   mail.Recipient
	data map[string]any
}

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, name string, to mail.Recipient, data map[string]any) error {
	m.sent = append(m.sent, sentMail{name: name, to: to, data: data})
	return m.err
}

var admin = scope.Caller{UserID: "admin-1", Role: string(cnst.RoleSuperAdmin)}

type fixture struct {
	svc    *Service
	store  *database.Store
	mailer *recordingMailer
	branch *database.Branch
	region *database.Region
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	region := &database.Region{Name: "North"}
	require.NoError(t, store.CreateRegion(ctx, region))
	branch := &database.Branch{Name: "Harbor", RegionID: region.ID}
	require.NoError(t, store.CreateBranch(ctx, branch))

	m := &recordingMailer{}
	svc := NewService(store, m, zap.NewNop())
	svc.cost = bcrypt.MinCost
	return &fixture{svc: svc, store: store, mailer: m, branch: branch, region: region}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, password, err := f.svc.Create(ctx, admin, &dto.CreateUserRequest{
		Email:     "  Bo@Example.com ",
		FirstName: "Bo",
		Role:      string(cnst.RoleBranchManager),
		BranchID:  f.branch.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "bo@example.com", u.Email)
	assert.Equal(t, f.region.ID, u.RegionID)
	assert.Len(t, password, oneTimePasswordLength)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)))
	assert.False(t, u.ProfileCompleted)

	branch, err := f.store.GetBranch(ctx, f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, branch.ManagerID)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, mail.TemplateUserWelcome, f.mailer.sent[0].name)
	assert.Equal(t, "bo@example.com", f.mailer.sent[0].to.Email)
	assert.Equal(t, password, f.mailer.sent[0].data["Password"])
}

func TestCreateRegionalManagerHeadsRegion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, _, err := f.svc.Create(ctx, admin, &dto.CreateUserRequest{
		Email:    "rm@example.com",
		Role:     string(cnst.RoleRegionalManager),
		RegionID: f.region.ID,
	})
	require.NoError(t, err)

	region, err := f.store.GetRegion(ctx, f.region.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, region.ManagerID)
}

func TestCreateRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	counselor := scope.Caller{UserID: "c-1", Role: string(cnst.RoleCounselor)}
	_, _, err := f.svc.Create(ctx, counselor, &dto.CreateUserRequest{Email: "x@example.com", Role: "counselor"})
	assert.Equal(t, errorx.ErrForbidden.Code, errorx.CodeOf(err))

	_, _, err = f.svc.Create(ctx, admin, &dto.CreateUserRequest{Email: "x@example.com", Role: "wizard"})
	assert.Equal(t, errorx.ErrInvalidInput.Code, errorx.CodeOf(err))

	_, _, err = f.svc.Create(ctx, admin, &dto.CreateUserRequest{Email: "x@example.com", Role: "counselor", BranchID: "nope"})
	assert.Equal(t, errorx.ErrInvalidInput.Code, errorx.CodeOf(err))

	_, _, err = f.svc.Create(ctx, admin, &dto.CreateUserRequest{Email: "x@example.com", Role: "counselor"})
	require.NoError(t, err)
	_, _, err = f.svc.Create(ctx, admin, &dto.CreateUserRequest{Email: "X@example.com", Role: "counselor"})
	assert.Equal(t, errorx.ErrResourceExists.Code, errorx.CodeOf(err))
}

func TestCreateSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	u, _, err := f.svc.Create(context.Background(), admin, &dto.CreateUserRequest{Email: "m@example.com", Role: "counselor"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestAuthenticateAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, password, err := f.svc.Create(ctx, admin, &dto.CreateUserRequest{Email: "kim@example.com", Role: "counselor"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "kim@example.com", "wrong")
	assert.Equal(t, errorx.ErrInvalidCredentials.Code, errorx.CodeOf(err))
	_, err = f.svc.Authenticate(ctx, "nobody@example.com", password)
	assert.Equal(t, errorx.ErrInvalidCredentials.Code, errorx.CodeOf(err))

	got, err := f.svc.Authenticate(ctx, "KIM@example.com", password)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	caller := Caller(got)
	updated, err := f.svc.CompleteProfile(ctx, caller, &dto.CompleteProfileRequest{
		FirstName: "Kim",
		LastName:  "Lee",
		Password:  "a-better-secret",
	})
	require.NoError(t, err)
	assert.True(t, updated.ProfileCompleted)
	assert.Equal(t, "Kim Lee", updated.FullName())

	_, err = f.svc.Authenticate(ctx, "kim@example.com", password)
	assert.Equal(t, errorx.ErrInvalidCredentials.Code, errorx.CodeOf(err))
	_, err = f.svc.Authenticate(ctx, "kim@example.com", "a-better-secret")
	require.NoError(t, err)
}

func TestUpdateAndDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, password, err := f.svc.Create(ctx, admin, &dto.CreateUserRequest{Email: "lu@example.com", Role: "counselor"})
	require.NoError(t, err)

	branchID := f.branch.ID
	updated, err := f.svc.Update(ctx, admin, u.ID, &dto.UpdateUserRequest{BranchID: &branchID})
	require.NoError(t, err)
	assert.Equal(t, f.region.ID, updated.RegionID)

	_, err = f.svc.Update(ctx, admin, "missing", &dto.UpdateUserRequest{BranchID: &branchID})
	assert.Equal(t, errorx.ErrResourceNotFound.Code, errorx.CodeOf(err))

	self := scope.Caller{UserID: "admin-1", Role: string(cnst.RoleAdmin)}
	assert.Equal(t, errorx.ErrInvalidInput.Code, errorx.CodeOf(f.svc.Deactivate(ctx, self, "admin-1")))

	require.NoError(t, f.svc.Deactivate(ctx, admin, u.ID))
	_, err = f.svc.Authenticate(ctx, "lu@example.com", password)
	assert.Equal(t, errorx.ErrForbidden.Code, errorx.CodeOf(err))

	users, total, err := f.svc.List(ctx, database.UserFilter{Role: "counselor"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.False(t, users[0].IsActive)
}

func TestEnsureSuperAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cfg := config.SuperAdminConfig{Email: "root@example.com", Password: "bootstrap-pass"}

	require.NoError(t, f.svc.EnsureSuperAdmin(ctx, cfg))
	require.NoError(t, f.svc.EnsureSuperAdmin(ctx, cfg))

	users, total, err := f.svc.List(ctx, database.UserFilter{Role: string(cnst.RoleSuperAdmin)})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.True(t, users[0].ProfileCompleted)

	require.NoError(t, f.svc.EnsureSuperAdmin(ctx, config.SuperAdminConfig{}))
}
