package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return s.conn(ctx).Create(user).Error
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	return findOne[User](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return findOne[User](s.conn(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []*User
	err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (s *Store) ListUsers(ctx context.Context, filter UserFilter) ([]*User, int64, error) {
	q := s.conn(ctx).Model(&User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.BranchID != "" {
		q = q.Where("branch_id = ?", filter.BranchID)
	}
	if filter.RegionID != "" {
		q = q.Where("region_id = ?", filter.RegionID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []*User
	err := filter.Page.apply(q.Session(&gorm.Session{})).Order("created_at DESC").Find(&users).Error
	return users, total, err
}

func (s *Store) UpdateUser(ctx context.Context, id string, updates map[string]any) error {
	return s.conn(ctx).Model(&User{}).Where("id = ?", id).Updates(updates).Error
}
