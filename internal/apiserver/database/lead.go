package database

import (
	"context"
	"errors"
	"strings"

	"github.com/amoylab/nextcrm/internal/crm/scope"
	"gorm.io/gorm"
)

func findOne[T any](q *gorm.DB) (*T, error) {
	var out T
	err := q.Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) leads(ctx context.Context, rule scope.Rule) *gorm.DB {
	return applyScope(s.conn(ctx).Model(&Lead{}), rule, leadColumns)
}

func (s *Store) CreateLead(ctx context.Context, lead *Lead) error {
	return s.conn(ctx).Create(lead).Error
}

func (s *Store) FindLeadByID(ctx context.Context, id string, rule scope.Rule) (*Lead, error) {
	return findOne[Lead](s.leads(ctx, rule).Where("id = ?", id))
}

func (s *Store) ListLeads(ctx context.Context, rule scope.Rule, filter LeadFilter) ([]*Lead, int64, error) {
	q := s.leads(ctx, rule)
	q = likeAny(q, filter.Query, "name", "email", "phone", "city")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if filter.CounselorID != "" {
		q = q.Where("counselor_id = ?", filter.CounselorID)
	}
	if filter.IsLost != nil {
		q = q.Where("is_lost = ?", *filter.IsLost)
	}
	if filter.IsConverted != nil {
		q = q.Where("is_converted = ?", *filter.IsConverted)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var leads []*Lead
	err := filter.Page.apply(q.Session(&gorm.Session{})).
		Order("created_at DESC").Order("id").
		Find(&leads).Error
	return leads, total, err
}

func (s *Store) UpdateLead(ctx context.Context, id string, updates map[string]any) error {
	return s.conn(ctx).Model(&Lead{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) DeleteLead(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&Lead{}).Error
}

func (s *Store) FindLeadByEmail(ctx context.Context, email, excludeID string) (*Lead, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	q := s.conn(ctx).Model(&Lead{}).Where("LOWER(email) = ?", email)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	return findOne[Lead](q)
}

func (s *Store) FindLeadByPhone(ctx context.Context, phone, excludeID string) (*Lead, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	q := s.conn(ctx).Model(&Lead{}).Where("phone = ?", phone)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	return findOne[Lead](q)
}

func (s *Store) LeadStats(ctx context.Context, rule scope.Rule) (*LeadStats, error) {
	stats := &LeadStats{}
	if err := s.leads(ctx, rule).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.leads(ctx, rule).Where("is_converted = ?", true).Count(&stats.Converted).Error; err != nil {
		return nil, err
	}
	if err := s.leads(ctx, rule).Where("is_lost = ?", true).Count(&stats.Lost).Error; err != nil {
		return nil, err
	}
	var err error
	if stats.ByStatus, err = groupCount(s.leads(ctx, rule), "status"); err != nil {
		return nil, err
	}
	if stats.BySource, err = groupCount(s.leads(ctx, rule), "source"); err != nil {
		return nil, err
	}
	return stats, nil
}
