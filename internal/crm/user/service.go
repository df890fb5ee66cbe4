// Package user manages staff and partner accounts.
package user

import (
	"context"
	"strings"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/amoylab/nextcrm/internal/mail"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const oneTimePasswordLength = 12

// Store is the persistence the user service needs
type Store interface {
	database.UserRepository
	GetBranch(ctx context.Context, id string) (*database.Branch, error)
	GetRegion(ctx context.Context, id string) (*database.Region, error)
	SetBranchManager(ctx context.Context, branchID, userID string) error
	SetRegionManager(ctx context.Context, regionID, userID string) error
}

// Mailer delivers templated email
type Mailer interface {
	Send(ctx context.Context, name string, to mail.Recipient, data map[string]any) error
}

type Service struct {
	store  Store
	mailer Mailer
	logger *zap.Logger
	cost   int
}

// NewService wires the user service. mailer may be nil.
func NewService(store Store, mailer Mailer, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		mailer: mailer,
		logger: logger.Named("crm.user"),
		cost:   bcrypt.DefaultCost,
	}
}

func requireAdmin(caller scope.Caller, action string) error {
	if !cnst.Role(caller.Role).CanManageUsers() {
		return errorx.Forbidden(action)
	}
	return nil
}

func parseRole(role string) (cnst.Role, error) {
	r := cnst.Role(strings.TrimSpace(role))
	if !r.IsValid() {
		return "", errorx.ValidationError("role", role, "unknown role")
	}
	return r, nil
}

// regionOf resolves the region a branch belongs to. An empty branch keeps
// the given region.
func (s *Service) regionOf(ctx context.Context, branchID, regionID string) (string, error) {
	if branchID == "" {
		return regionID, nil
	}
	branch, err := s.store.GetBranch(ctx, branchID)
	if err != nil {
		return "", err
	}
	if branch == nil {
		return "", errorx.ValidationError("branchId", branchID, "unknown branch")
	}
	return branch.RegionID, nil
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func newOneTimePassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:oneTimePasswordLength]
}

// Create adds an account with a generated one-time password, which is mailed
// to the user and returned to the admin.
func (s *Service) Create(ctx context.Context, caller scope.Caller, req *dto.CreateUserRequest) (*database.User, string, error) {
	if err := requireAdmin(caller, "create_user"); err != nil {
		return nil, "", err
	}
	role, err := parseRole(req.Role)
	if err != nil {
		return nil, "", err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, "", errorx.ValidationError("email", req.Email, "email is required")
	}
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", errorx.ConflictError("user", "email", email)
	}
	regionID, err := s.regionOf(ctx, req.BranchID, req.RegionID)
	if err != nil {
		return nil, "", err
	}

	password := newOneTimePassword()
	hash, err := s.hash(password)
	if err != nil {
		return nil, "", err
	}
	u := &database.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		BranchID:     req.BranchID,
		RegionID:     regionID,
		Department:   req.Department,
		PhoneNumber:  req.PhoneNumber,
		IsActive:     true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, "", err
	}
	s.logger.Info("created user", zap.String("user_id", u.ID), zap.String("role", string(role)))

	s.assignHead(ctx, u)
	s.sendWelcome(ctx, u, password)
	return u, password, nil
}

// assignHead records a branch or regional manager as the head of their unit
func (s *Service) assignHead(ctx context.Context, u *database.User) {
	var err error
	switch {
	case u.Role == cnst.RoleBranchManager && u.BranchID != "":
		err = s.store.SetBranchManager(ctx, u.BranchID, u.ID)
	case u.Role == cnst.RoleRegionalManager && u.RegionID != "":
		err = s.store.SetRegionManager(ctx, u.RegionID, u.ID)
	default:
		return
	}
	if err != nil {
		s.logger.Error("failed to assign unit head",
			zap.String("user_id", u.ID), zap.String("role", string(u.Role)), zap.Error(err))
	}
}

func (s *Service) sendWelcome(ctx context.Context, u *database.User, password string) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.Send(ctx, mail.TemplateUserWelcome, mail.Recipient{Email: u.Email, Name: u.FullName()}, map[string]any{
		"Role":     string(u.Role),
		"Password": password,
	})
	if err != nil {
		s.logger.Error("failed to send welcome email", zap.String("user_id", u.ID), zap.Error(err))
	}
}

// Get returns nil when the user does not exist
func (s *Service) Get(ctx context.Context, id string) (*database.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter database.UserFilter) ([]*database.User, int64, error) {
	return s.store.ListUsers(ctx, filter)
}

// Update applies an admin edit. Moving a user to another branch moves them
// to that branch's region.
func (s *Service) Update(ctx context.Context, caller scope.Caller, id string, req *dto.UpdateUserRequest) (*database.User, error) {
	if err := requireAdmin(caller, "update_user"); err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive && id == caller.UserID {
		return nil, errorx.ValidationError("isActive", false, "you cannot deactivate your own account")
	}
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errorx.NotFoundError("user", id)
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		role, err := parseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		updates["role"] = role
	}
	if req.BranchID != nil {
		regionID, err := s.regionOf(ctx, *req.BranchID, u.RegionID)
		if err != nil {
			return nil, err
		}
		updates["branch_id"] = *req.BranchID
		updates["region_id"] = regionID
	} else if req.RegionID != nil {
		updates["region_id"] = *req.RegionID
	}
	if req.Department != nil {
		updates["department"] = *req.Department
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return u, nil
	}
	if err := s.store.UpdateUser(ctx, id, updates); err != nil {
		return nil, err
	}
	after, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if after == nil {
		return nil, errorx.NotFoundError("user", id)
	}
	if after.Role != u.Role || after.BranchID != u.BranchID || after.RegionID != u.RegionID {
		s.assignHead(ctx, after)
	}
	return after, nil
}

// CompleteProfile is the caller filling in their own details after the
// first login, optionally replacing the one-time password.
func (s *Service) CompleteProfile(ctx context.Context, caller scope.Caller, req *dto.CompleteProfileRequest) (*database.User, error) {
	u, err := s.store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errorx.NotFoundError("user", caller.UserID)
	}
	updates := map[string]any{
		"first_name":        strings.TrimSpace(req.FirstName),
		"last_name":         strings.TrimSpace(req.LastName),
		"phone_number":      req.PhoneNumber,
		"department":        req.Department,
		"profile_completed": true,
	}
	if req.Password != "" {
		hash, err := s.hash(req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if err := s.store.UpdateUser(ctx, u.ID, updates); err != nil {
		return nil, err
	}
	return s.store.GetUserByID(ctx, u.ID)
}

// Deactivate disables an account. Users are never deleted.
func (s *Service) Deactivate(ctx context.Context, caller scope.Caller, id string) error {
	active := false
	_, err := s.Update(ctx, caller, id, &dto.UpdateUserRequest{IsActive: &active})
	return err
}

// Authenticate checks a login. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*database.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errorx.ErrInvalidCredentials.Clone()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errorx.ErrInvalidCredentials.Clone()
	}
	if !u.IsActive {
		return nil, errorx.Forbidden("login").WithMessage("User is disabled")
	}
	return u, nil
}

// EnsureSuperAdmin creates the configured super admin unless an account with
// that email already exists
func (s *Service) EnsureSuperAdmin(ctx context.Context, cfg config.SuperAdminConfig) error {
	created, err := database.InitSuperAdmin(ctx, s.store, cfg)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("bootstrapped super admin", zap.String("email", cfg.Email))
	}
	return nil
}

// Caller builds the scope identity for an authenticated user
func Caller(u *database.User) scope.Caller {
	return scope.Caller{
		UserID:   u.ID,
		Name:     u.FullName(),
		Role:     string(u.Role),
		RegionID: u.RegionID,
		BranchID: u.BranchID,
	}
}
