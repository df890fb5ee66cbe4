package database

import (
	"context"

	"github.com/amoylab/nextcrm/internal/crm/scope"
	"gorm.io/gorm"
)

func (s *Store) admissions(ctx context.Context, rule scope.Rule) *gorm.DB {
	return applyStudentScope(s.conn(ctx).Model(&Admission{}), rule)
}

func (s *Store) CreateAdmission(ctx context.Context, adm *Admission) error {
	return s.conn(ctx).Create(adm).Error
}

func (s *Store) FindAdmissionByID(ctx context.Context, id string, rule scope.Rule) (*Admission, error) {
	return findOne[Admission](s.admissions(ctx, rule).Where("id = ?", id))
}

func (s *Store) ListAdmissions(ctx context.Context, rule scope.Rule, filter AdmissionFilter) ([]*Admission, int64, error) {
	q := s.admissions(ctx, rule)
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.ApplicationID != "" {
		q = q.Where("application_id = ?", filter.ApplicationID)
	}
	if filter.Decision != "" {
		q = q.Where("decision = ?", filter.Decision)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var adms []*Admission
	err := filter.Page.apply(q.Session(&gorm.Session{})).
		Order("created_at DESC").Order("id").
		Find(&adms).Error
	return adms, total, err
}

func (s *Store) UpdateAdmission(ctx context.Context, id string, updates map[string]any) error {
	return s.conn(ctx).Model(&Admission{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) DeleteAdmission(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&Admission{}).Error
}

func (s *Store) AdmissionStats(ctx context.Context, rule scope.Rule) (*GroupStats, error) {
	stats := &GroupStats{}
	if err := s.admissions(ctx, rule).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	by, err := groupCount(s.admissions(ctx, rule), "decision")
	if err != nil {
		return nil, err
	}
	stats.By = by
	return stats, nil
}
