package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLeads(t *testing.T) {
	leads := []*database.Lead{
		{
			ID:        "L1",
			Name:      "Ana",
			Email:     "ana@example.com",
			Country:   types.StringList{"us", "ca"},
			Status:    "new",
			CreatedAt: time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC),
			Labels:    map[string]string{"status": "New", "country": "United States, Canada"},
		},
		{ID: "L2", Name: "Ben", Source: "web", Country: types.StringList{"uk"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Leads(&buf, leads))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{LeadSheet}, f.GetSheetList())
	rows, err := f.GetRows(LeadSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, leadHeaders, rows[0])

	assert.Equal(t, "L1", rows[1][0])
	assert.Equal(t, "United States, Canada", rows[1][5])
	assert.Equal(t, "New", rows[1][8])
	assert.Equal(t, "2026-03-07 09:30", rows[1][14])

	// unlabeled values fall back to the raw codes
	assert.Equal(t, "uk", rows[2][5])
	assert.Equal(t, "web", rows[2][7])
}

func TestLeadsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Leads(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(LeadSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
