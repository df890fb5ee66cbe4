package types

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Flag is a boolean that also accepts the 1/0 and "1"/"0" forms clients send
type Flag bool

// Bool returns the plain boolean
func (f Flag) Bool() bool {
	return bool(f)
}

func parseFlag(s string) (Flag, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" || s == "null" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("types: invalid flag %q", s)
	}
	return Flag(b), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	v, err := parseFlag(string(data))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// MarshalJSON implements json.Marshaler
func (f Flag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(f))), nil
}

// Value implements driver.Valuer
func (f Flag) Value() (driver.Value, error) {
	return bool(f), nil
}

// Scan implements sql.Scanner
func (f *Flag) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*f = false
	case bool:
		*f = Flag(v)
	case int64:
		*f = v != 0
	case []byte:
		parsed, err := parseFlag(string(v))
		if err != nil {
			return err
		}
		*f = parsed
	case string:
		parsed, err := parseFlag(v)
		if err != nil {
			return err
		}
		*f = parsed
	default:
		return fmt.Errorf("types: cannot scan %T into Flag", src)
	}
	return nil
}

// GormDataType implements gorm's schema.GormDataTypeInterface
func (Flag) GormDataType() string {
	return "bool"
}
