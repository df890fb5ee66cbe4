package activity

import (
	"testing"

	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldLabel(t *testing.T) {
	cases := map[string]string{
		"scholarshipAmount": "Scholarship Amount",
		"notes":             "Notes",
		"googleDriveLink":   "Google Drive Link",
		"counsellorId":      "Counsellor Id",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FieldLabel(in), in)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `Status changed from "new" to "contacted"`, Describe("Status", "new", "contacted"))
	assert.Equal(t, `Notes changed from "empty" to "call back"`, Describe("Notes", "", "call back"))
	assert.Equal(t, `Notes changed from "x" to "empty"`, Describe("Notes", "x", ""))
}

type snapshot struct {
	ID            string            `json:"id"`
	Notes         string            `json:"notes"`
	Amount        float64           `json:"scholarshipAmount"`
	Paid          types.Flag        `json:"depositPaid"`
	TargetCountry types.StringList  `json:"targetCountry"`
	UpdatedAt     string            `json:"updatedAt"`
	CreatedAt     string            `json:"createdAt"`
	Labels        map[string]string `json:"labels,omitempty"`
}

func TestDiff_OnlyChangedFields(t *testing.T) {
	before := snapshot{ID: "S1", Notes: "a", Amount: 1000, UpdatedAt: "t1", CreatedAt: "t0"}
	after := before
	after.Notes = "b"
	after.UpdatedAt = "t2"
	after.Labels = map[string]string{"status": "Active"}

	changes, err := Diff(before, after)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, Change{Field: "notes", OldValue: "a", NewValue: "b"}, changes[0])
	assert.Equal(t, `Notes changed from "a" to "b"`, changes[0].Description())
}

func TestDiff_RendersNumbersFlagsAndLists(t *testing.T) {
	before := snapshot{Amount: 5000}
	after := snapshot{Amount: 5250.5, Paid: true, TargetCountry: types.StringList{"us", "ca"}}

	changes, err := Diff(before, after)
	require.NoError(t, err)
	require.Len(t, changes, 3)
	assert.Equal(t, Change{Field: "depositPaid", OldValue: "false", NewValue: "true"}, changes[0])
	assert.Equal(t, Change{Field: "scholarshipAmount", OldValue: "5000", NewValue: "5250.5"}, changes[1])
	assert.Equal(t, Change{Field: "targetCountry", OldValue: "[]", NewValue: `["us","ca"]`}, changes[2])
}

func TestDiff_NoChanges(t *testing.T) {
	s := snapshot{Notes: "same"}
	changes, err := Diff(s, s)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "x", Render("x"))
	assert.Equal(t, "42", Render(float64(42)))
	assert.Equal(t, "true", Render(true))
	assert.Equal(t, `{"a":1}`, Render(map[string]any{"a": 1}))
}
