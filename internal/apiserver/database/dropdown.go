package database

import (
	"context"

	"gorm.io/gorm/clause"
)

func (s *Store) ListDropdowns(ctx context.Context, category string) ([]*Dropdown, error) {
	q := s.conn(ctx).Order("category").Order("sort_order").Order("label")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []*Dropdown
	err := q.Find(&out).Error
	return out, err
}

// UpsertDropdown inserts d or updates the label and order of the existing (category, code) row
func (s *Store) UpsertDropdown(ctx context.Context, d *Dropdown) error {
	return s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "sort_order", "updated_at"}),
	}).Create(d).Error
}

func (s *Store) DeleteDropdown(ctx context.Context, id string) (*Dropdown, error) {
	d, err := findOne[Dropdown](s.conn(ctx).Where("id = ?", id))
	if err != nil || d == nil {
		return nil, err
	}
	if err := s.conn(ctx).Delete(&Dropdown{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return d, nil
}
