package database

import (
	"context"

	"github.com/amoylab/nextcrm/internal/crm/scope"
	"gorm.io/gorm"
)

func (s *Store) applications(ctx context.Context, rule scope.Rule) *gorm.DB {
	return applyStudentScope(s.conn(ctx).Model(&Application{}), rule)
}

func (s *Store) CreateApplication(ctx context.Context, app *Application) error {
	return s.conn(ctx).Create(app).Error
}

func (s *Store) FindApplicationByID(ctx context.Context, id string, rule scope.Rule) (*Application, error) {
	return findOne[Application](s.applications(ctx, rule).Where("id = ?", id))
}

func (s *Store) ListApplications(ctx context.Context, rule scope.Rule, filter ApplicationFilter) ([]*Application, int64, error) {
	q := s.applications(ctx, rule)
	q = likeAny(q, filter.Query, "university", "program", "application_code")
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.AppStatus != "" {
		q = q.Where("app_status = ?", filter.AppStatus)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var apps []*Application
	err := filter.Page.apply(q.Session(&gorm.Session{})).
		Order("created_at DESC").Order("id").
		Find(&apps).Error
	return apps, total, err
}

func (s *Store) UpdateApplication(ctx context.Context, id string, updates map[string]any) error {
	return s.conn(ctx).Model(&Application{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&Application{}).Error
}

func (s *Store) ApplicationStats(ctx context.Context, rule scope.Rule) (*GroupStats, error) {
	stats := &GroupStats{}
	if err := s.applications(ctx, rule).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	by, err := groupCount(s.applications(ctx, rule), "app_status")
	if err != nil {
		return nil, err
	}
	stats.By = by
	return stats, nil
}
