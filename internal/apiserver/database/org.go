package database

import (
	"context"
	"fmt"
)

func (s *Store) CreateRegion(ctx context.Context, region *Region) error {
	return s.conn(ctx).Create(region).Error
}

func (s *Store) GetRegion(ctx context.Context, id string) (*Region, error) {
	return findOne[Region](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) ListRegions(ctx context.Context) ([]*Region, error) {
	var out []*Region
	err := s.conn(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) SetRegionManager(ctx context.Context, regionID, userID string) error {
	existing, err := s.GetRegion(ctx, regionID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("region %s not found", regionID)
	}
	return s.conn(ctx).Model(existing).Update("manager_id", userID).Error
}

func (s *Store) CreateBranch(ctx context.Context, branch *Branch) error {
	return s.conn(ctx).Create(branch).Error
}

func (s *Store) GetBranch(ctx context.Context, id string) (*Branch, error) {
	return findOne[Branch](s.conn(ctx).Where("id = ?", id))
}

func (s *Store) ListBranches(ctx context.Context, regionID string) ([]*Branch, error) {
	q := s.conn(ctx).Order("name")
	if regionID != "" {
		q = q.Where("region_id = ?", regionID)
	}
	var out []*Branch
	err := q.Find(&out).Error
	return out, err
}

func (s *Store) SetBranchManager(ctx context.Context, branchID, userID string) error {
	existing, err := s.GetBranch(ctx, branchID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("branch %s not found", branchID)
	}
	return s.conn(ctx).Model(existing).Update("manager_id", userID).Error
}
