package database

import (
	"context"
)

func (s *Store) CreateActivity(ctx context.Context, activity *Activity) error {
	return s.conn(ctx).Create(activity).Error
}

func (s *Store) ListActivities(ctx context.Context, entityType, entityID string) ([]*Activity, error) {
	var out []*Activity
	err := s.conn(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").Order("id").
		Find(&out).Error
	return out, err
}

func (s *Store) RecentActivities(ctx context.Context, limit int) ([]*Activity, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	var out []*Activity
	err := s.conn(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) ReassignActivities(ctx context.Context, fromType, fromID, toType, toID string) (int64, error) {
	res := s.conn(ctx).Model(&Activity{}).
		Where("entity_type = ? AND entity_id = ?", fromType, fromID).
		Updates(map[string]any{"entity_type": toType, "entity_id": toID})
	return res.RowsAffected, res.Error
}
