package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a multi-value text column. Rows written by older clients hold
// either a JSON array string or a single bare value; both decode to a list.
// Writes always store the canonical JSON array form.
type StringList []string

// DecodeList parses raw as a JSON array when it looks like one, otherwise it
// returns raw as a single element. Blank input yields an empty list.
func DecodeList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	if values, ok := parseArray(raw); ok {
		return values
	}
	return []string{raw}
}

// IsJSONArray reports whether raw is a well-formed JSON array
func IsJSONArray(raw string) bool {
	_, ok := parseArray(strings.TrimSpace(raw))
	return ok
}

// EncodeList renders values as a JSON array string, "[]" for nil
func EncodeList(values []string) string {
	if values == nil {
		values = []string{}
	}
	out, _ := json.Marshal(values)
	return string(out)
}

func parseArray(raw string) ([]string, bool) {
	if !strings.HasPrefix(raw, "[") {
		return nil, false
	}
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case string:
			values = append(values, v)
		default:
			values = append(values, fmt.Sprint(v))
		}
	}
	return values, true
}

// String returns the canonical JSON array encoding
func (l StringList) String() string {
	return EncodeList(l)
}

// Join renders the list for human-facing output
func (l StringList) Join(sep string) string {
	return strings.Join(l, sep)
}

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	return EncodeList(l), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
	case string:
		*l = DecodeList(v)
	case []byte:
		*l = DecodeList(string(v))
	default:
		return fmt.Errorf("types: cannot scan %T into StringList", src)
	}
	return nil
}

// GormDataType keeps the column a plain text type on every dialect
func (StringList) GormDataType() string {
	return "text"
}

// MarshalJSON always emits an array
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON accepts an array of strings or a string holding either a JSON
// array or a bare value.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*l = nil
		return nil
	case strings.HasPrefix(trimmed, "["):
		values, ok := parseArray(trimmed)
		if !ok {
			return fmt.Errorf("types: invalid list %s", trimmed)
		}
		*l = values
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("types: list must be an array or string: %w", err)
	}
	*l = DecodeList(s)
	return nil
}
