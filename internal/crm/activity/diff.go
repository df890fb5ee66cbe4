package activity

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// ignoredFields never produce change entries
var ignoredFields = map[string]bool{
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
	"createdBy": true,
	"updatedBy": true,
	"labels":    true,
}

// Change is one field whose rendered value differs between two snapshots
type Change struct {
	Field    string
	OldValue string
	NewValue string
}

// Label is the human form of the field name
func (c Change) Label() string {
	return FieldLabel(c.Field)
}

// Description renders the change with the fixed timeline template
func (c Change) Description() string {
	return Describe(FieldLabel(c.Field), c.OldValue, c.NewValue)
}

// FieldLabel turns a camelCase field name into words: "scholarshipAmount"
// becomes "Scholarship Amount".
func FieldLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := []rune(b.String())
	if len(out) > 0 {
		out[0] = unicode.ToUpper(out[0])
	}
	return string(out)
}

// Describe renders `<Label> changed from "<old>" to "<new>"`, showing blank values as empty
func Describe(label, oldValue, newValue string) string {
	return fmt.Sprintf(`%s changed from "%s" to "%s"`, label, orEmpty(oldValue), orEmpty(newValue))
}

func orEmpty(v string) string {
	if v == "" {
		return "empty"
	}
	return v
}

// Diff compares the JSON projections of two snapshots of the same record and
// returns one Change per differing field, ordered by field name.
func Diff(before, after any) ([]Change, error) {
	oldFields, err := project(before)
	if err != nil {
		return nil, err
	}
	newFields, err := project(after)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(newFields))
	for k := range newFields {
		keys = append(keys, k)
	}
	for k := range oldFields {
		if _, ok := newFields[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var changes []Change
	for _, k := range keys {
		if ignoredFields[k] {
			continue
		}
		oldValue, newValue := Render(oldFields[k]), Render(newFields[k])
		if oldValue != newValue {
			changes = append(changes, Change{Field: k, OldValue: oldValue, NewValue: newValue})
		}
	}
	return changes, nil
}

func project(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Render stringifies a decoded JSON value for storage in old/new value columns
func Render(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		out, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(out)
	}
}
