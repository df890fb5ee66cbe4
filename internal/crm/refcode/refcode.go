// Package refcode builds the human-readable reference codes printed on
// admission letters and application summaries.
package refcode

import (
	"fmt"
	"time"
)

const (
	AdmissionPrefix   = "ADM"
	ApplicationPrefix = "APP"
)

// Generate returns PREFIX-YYMMDD-NNN where NNN is the millisecond remainder
// of now. Codes are not guaranteed unique.
func Generate(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, now.Format("060102"), now.UnixMilli()%1000)
}

// Admission returns an admission code for now
func Admission(now time.Time) string {
	return Generate(AdmissionPrefix, now)
}

// Application returns an application code for now
func Application(now time.Time) string {
	return Generate(ApplicationPrefix, now)
}
