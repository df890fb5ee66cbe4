package database

import (
	"context"

	"github.com/amoylab/nextcrm/internal/crm/scope"
	"gorm.io/gorm"
)

func (s *Store) students(ctx context.Context, rule scope.Rule) *gorm.DB {
	return applyScope(s.conn(ctx).Model(&Student{}), rule, studentColumns)
}

func (s *Store) CreateStudent(ctx context.Context, student *Student) error {
	return s.conn(ctx).Create(student).Error
}

func (s *Store) FindStudentByID(ctx context.Context, id string, rule scope.Rule) (*Student, error) {
	return findOne[Student](s.students(ctx, rule).Where("id = ?", id))
}

func (s *Store) FindStudentByLeadID(ctx context.Context, leadID string) (*Student, error) {
	if leadID == "" {
		return nil, nil
	}
	return findOne[Student](s.conn(ctx).Model(&Student{}).Where("lead_id = ?", leadID))
}

func (s *Store) ListStudents(ctx context.Context, rule scope.Rule, filter StudentFilter) ([]*Student, int64, error) {
	q := s.students(ctx, rule)
	q = likeAny(q, filter.Query, "name", "email", "phone")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var students []*Student
	err := filter.Page.apply(q.Session(&gorm.Session{})).
		Order("created_at DESC").Order("id").
		Find(&students).Error
	return students, total, err
}

func (s *Store) UpdateStudent(ctx context.Context, id string, updates map[string]any) error {
	return s.conn(ctx).Model(&Student{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) DeleteStudent(ctx context.Context, id string) error {
	return s.conn(ctx).Where("id = ?", id).Delete(&Student{}).Error
}

func (s *Store) StudentStats(ctx context.Context, rule scope.Rule) (*GroupStats, error) {
	stats := &GroupStats{}
	if err := s.students(ctx, rule).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	by, err := groupCount(s.students(ctx, rule), "status")
	if err != nil {
		return nil, err
	}
	stats.By = by
	return stats, nil
}
