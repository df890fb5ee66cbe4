package refcode

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdmission(t *testing.T) {
	now := time.Date(2026, time.March, 7, 10, 0, 0, 42*int(time.Millisecond), time.UTC)
	assert.Equal(t, "ADM-260307-042", Admission(now))
}

func TestApplication(t *testing.T) {
	now := time.Date(2025, time.December, 31, 23, 59, 59, 999*int(time.Millisecond), time.UTC)
	assert.Equal(t, "APP-251231-999", Application(now))
}

func TestGenerate_Format(t *testing.T) {
	re := regexp.MustCompile(`^ADM-\d{6}-\d{3}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, Admission(time.Now().Add(time.Duration(i)*time.Millisecond)))
	}
}
