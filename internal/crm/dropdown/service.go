// Package dropdown resolves stored codes (lead status, source, country...) to
// display labels.
package dropdown

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "nextcrm:dropdown:"

type Service struct {
	repo   database.DropdownRepository
	cache  *labelCache
	logger *zap.Logger
}

// NewService builds the label service. rdb may be nil, in which case only
// the in-process cache is used.
func NewService(repo database.DropdownRepository, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Service {
	logger = logger.Named("crm.dropdown")
	return &Service{
		repo:   repo,
		cache:  newLabelCache(rdb, cacheKeyPrefix, ttl, logger),
		logger: logger,
	}
}

// Labels returns code → label for one category
func (s *Service) Labels(ctx context.Context, category string) (map[string]string, error) {
	if labels, ok := s.cache.get(ctx, category); ok {
		return labels, nil
	}
	rows, err := s.repo.ListDropdowns(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s labels: %w", category, err)
	}
	labels := make(map[string]string, len(rows))
	for _, r := range rows {
		labels[r.Code] = r.Label
	}
	s.cache.set(ctx, category, labels)
	return labels, nil
}

// Label returns the label of code, or code itself when it has none
func (s *Service) Label(ctx context.Context, category, code string) string {
	if code == "" {
		return ""
	}
	labels, err := s.Labels(ctx, category)
	if err != nil {
		s.logger.Warn("label lookup failed", zap.String("category", category), zap.Error(err))
		return code
	}
	if label, ok := labels[code]; ok && label != "" {
		return label
	}
	return code
}

func (s *Service) labelList(ctx context.Context, category string, codes types.StringList) string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, s.Label(ctx, category, c))
	}
	return strings.Join(out, ", ")
}

func (s *Service) List(ctx context.Context, category string) ([]*database.Dropdown, error) {
	return s.repo.ListDropdowns(ctx, category)
}

func (s *Service) Upsert(ctx context.Context, d *database.Dropdown) error {
	d.Category = strings.TrimSpace(d.Category)
	d.Code = strings.TrimSpace(d.Code)
	switch {
	case d.Category == "":
		return errorx.ValidationError("category", d.Category, "category is required")
	case d.Code == "":
		return errorx.ValidationError("code", d.Code, "code is required")
	case strings.TrimSpace(d.Label) == "":
		return errorx.ValidationError("label", d.Label, "label is required")
	}
	if err := s.repo.UpsertDropdown(ctx, d); err != nil {
		return err
	}
	return s.cache.invalidate(ctx, d.Category)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	d, err := s.repo.DeleteDropdown(ctx, id)
	if err != nil {
		return err
	}
	if d == nil {
		return errorx.NotFoundError("dropdown", id)
	}
	return s.cache.invalidate(ctx, d.Category)
}

// EnrichLead fills the display labels of a lead's coded fields
func (s *Service) EnrichLead(ctx context.Context, l *database.Lead) {
	if l == nil {
		return
	}
	l.Labels = map[string]string{
		"status":     s.Label(ctx, cnst.DropdownLeadStatus, l.Status),
		"source":     s.Label(ctx, cnst.DropdownLeadSource, l.Source),
		"studyLevel": s.Label(ctx, cnst.DropdownStudyLevel, l.StudyLevel),
		"country":    s.labelList(ctx, cnst.DropdownCountry, l.Country),
		"program":    s.labelList(ctx, cnst.DropdownProgram, l.Program),
	}
}

// EnrichStudent fills the display labels of a student's coded fields
func (s *Service) EnrichStudent(ctx context.Context, st *database.Student) {
	if st == nil {
		return
	}
	st.Labels = map[string]string{
		"status":        s.Label(ctx, cnst.DropdownStudentStatus, st.Status),
		"targetCountry": s.labelList(ctx, cnst.DropdownCountry, st.TargetCountry),
	}
}
