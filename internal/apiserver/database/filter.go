package database

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
	// MaxPage keeps (page-1)*size far from int overflow
	MaxPage = 1_000_000
)

// Page is embedded by every list filter. Unbounded can only be set in code;
// query binding never disables pagination.
type Page struct {
	Page      int  `form:"page"`
	PageSize  int  `form:"pageSize"`
	Unbounded bool `form:"-" json:"-"`
}

// AllRows lists every matching row
var AllRows = Page{Unbounded: true}

// Normalize returns the page and size a bounded query uses
func (p Page) Normalize() (page, size int) {
	page, size = p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Unbounded {
		return db
	}
	page, size := p.Normalize()
	return db.Offset((page - 1) * size).Limit(size)
}

type LeadFilter struct {
	Page
	Query       string `form:"q"`
	Status      string `form:"status"`
	Source      string `form:"source"`
	CounselorID string `form:"counselorId"`
	IsLost      *bool  `form:"isLost"`
	IsConverted *bool  `form:"isConverted"`
}

type StudentFilter struct {
	Page
	Query  string `form:"q"`
	Status string `form:"status"`
}

type ApplicationFilter struct {
	Page
	Query     string `form:"q"`
	StudentID string `form:"studentId"`
	AppStatus string `form:"appStatus"`
}

type AdmissionFilter struct {
	Page
	StudentID     string `form:"studentId"`
	ApplicationID string `form:"applicationId"`
	Decision      string `form:"decision"`
}

type UserFilter struct {
	Page
	Role     string `form:"role"`
	BranchID string `form:"branchId"`
	RegionID string `form:"regionId"`
}

// LeadStats summarizes the leads visible to a caller
type LeadStats struct {
	Total     int64            `json:"total"`
	Converted int64            `json:"converted"`
	Lost      int64            `json:"lost"`
	ByStatus  map[string]int64 `json:"byStatus"`
	BySource  map[string]int64 `json:"bySource"`
}

// GroupStats is a total plus a breakdown on one column
type GroupStats struct {
	Total int64            `json:"total"`
	By    map[string]int64 `json:"by"`
}

// likeAny ORs a case-insensitive substring match over columns
func likeAny(db *gorm.DB, q string, columns ...string) *gorm.DB {
	q = strings.TrimSpace(q)
	if q == "" {
		return db
	}
	pattern := "%" + strings.ToLower(q) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

type groupRow struct {
	GroupKey   string
	GroupCount int64
}

func groupCount(db *gorm.DB, column string) (map[string]int64, error) {
	var rows []groupRow
	if err := db.Select(column + " AS group_key, COUNT(*) AS group_count").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.GroupKey] = r.GroupCount
	}
	return out, nil
}
