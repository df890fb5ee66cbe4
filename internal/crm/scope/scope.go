// Package scope resolves which rows a caller may see from their role, region and branch.
package scope

import (
	"strings"
	"unicode"
)

// Caller is the identity every service call is made on behalf of
type Caller struct {
	UserID   string
	Name     string
	Role     string
	RegionID string
	BranchID string
}

// Field names the ownership attribute a rule filters on
type Field string

const (
	FieldCounselor        Field = "counselor"
	FieldAdmissionOfficer Field = "admissionOfficer"
	FieldPartner          Field = "partner"
	FieldSubPartner       Field = "subPartner"
	FieldBranch           Field = "branch"
	FieldRegion           Field = "region"
)

// Kind is the shape of a resolved rule
type Kind int

const (
	// KindAll lets every row through
	KindAll Kind = iota
	// KindNone matches nothing
	KindNone
	// KindMatch keeps rows whose Field equals Value
	KindMatch
)

// Rule is the outcome of Resolve
type Rule struct {
	Kind  Kind
	Field Field
	Value string
}

var (
	All  = Rule{Kind: KindAll}
	None = Rule{Kind: KindNone}
)

// Match builds a KindMatch rule
func Match(field Field, value string) Rule {
	return Rule{Kind: KindMatch, Field: field, Value: value}
}

func (r Rule) String() string {
	switch r.Kind {
	case KindAll:
		return "all"
	case KindNone:
		return "none"
	default:
		return string(r.Field) + "=" + r.Value
	}
}

// Allows evaluates the rule against an in-memory row. values maps each
// ownership field the row carries to its value; absent fields never match.
func (r Rule) Allows(values map[Field]string) bool {
	switch r.Kind {
	case KindAll:
		return true
	case KindMatch:
		v, ok := values[r.Field]
		return ok && v != "" && v == r.Value
	default:
		return false
	}
}

// strategy returns the rule for a caller, or ok=false to fall through
type strategy func(c Caller) (Rule, bool)

func byUser(field Field) strategy {
	return func(c Caller) (Rule, bool) {
		if c.UserID == "" {
			return Rule{}, false
		}
		return Match(field, c.UserID), true
	}
}

func byBranch(c Caller) (Rule, bool) {
	if c.BranchID == "" {
		return None, true
	}
	return Match(FieldBranch, c.BranchID), true
}

func byRegionStrict(c Caller) (Rule, bool) {
	if c.RegionID == "" {
		return None, true
	}
	return Match(FieldRegion, c.RegionID), true
}

func unrestricted(Caller) (Rule, bool) {
	return All, true
}

// strategies is keyed by NormalizeRole output
var strategies = map[string]strategy{
	"counselor":        byUser(FieldCounselor),
	"counsellor":       byUser(FieldCounselor),
	"admissionofficer": byUser(FieldAdmissionOfficer),
	"partner":          byUser(FieldPartner),
	"partnersubuser":   byUser(FieldSubPartner),
	"branchmanager":    byBranch,
	"regionalmanager":  byRegionStrict,
	"superadmin":       unrestricted,
}

// NormalizeRole lower-cases role and drops everything but letters and digits,
// so "Branch Manager", "branch-manager" and "branch_manager" compare equal.
func NormalizeRole(role string) string {
	var b strings.Builder
	b.Grow(len(role))
	for _, r := range role {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Resolve returns the visibility rule for c. Role rules are tried first; a
// role without its own rule, or whose rule needs a user id the caller lacks,
// is limited to its region when it has one and sees everything otherwise.
func Resolve(c Caller) Rule {
	if s, ok := strategies[NormalizeRole(c.Role)]; ok {
		if rule, ok := s(c); ok {
			return rule
		}
	}
	if c.RegionID != "" {
		return Match(FieldRegion, c.RegionID)
	}
	return All
}
