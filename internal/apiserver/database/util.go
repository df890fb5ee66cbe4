package database

import (
	"context"
	"fmt"

	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/config"
	"golang.org/x/crypto/bcrypt"
)

// InitSuperAdmin creates the configured super admin when no account with that
// email exists yet. It reports whether an account was created.
func InitSuperAdmin(ctx context.Context, db UserRepository, cfg config.SuperAdminConfig) (bool, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return false, nil
	}

	existing, err := db.GetUserByEmail(ctx, cfg.Email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash super admin password: %w", err)
	}
	admin := &User{
		Email:            cfg.Email,
		PasswordHash:     string(hash),
		FirstName:        cfg.FirstName,
		LastName:         cfg.LastName,
		Role:             cnst.RoleSuperAdmin,
		ProfileCompleted: true,
		IsActive:         true,
	}
	if err := db.CreateUser(ctx, admin); err != nil {
		return false, err
	}
	return true, nil
}
