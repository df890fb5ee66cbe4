package dto

import (
	"encoding/json"
	"testing"

	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLeadRequestUpdates(t *testing.T) {
	var req UpdateLeadRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"email": "  a@example.com ",
		"status": "contacted",
		"country": "uk",
		"isLost": "1",
		"lostReason": ""
	}`), &req))

	u := req.Updates()
	assert.Equal(t, map[string]any{
		"email":       "a@example.com",
		"status":      "contacted",
		"country":     types.StringList{"uk"},
		"is_lost":     types.Flag(true),
		"lost_reason": "",
	}, u)

	assert.Empty(t, (&UpdateLeadRequest{}).Updates())
}

func TestUpdateStudentRequestCounsellorAlias(t *testing.T) {
	var req UpdateStudentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"counselorId":"u1","targetCountry":null}`), &req))
	assert.Equal(t, map[string]any{"counsellor_id": "u1"}, req.Updates())

	both := UpdateStudentRequest{CounselorID: strPtr("u1"), CounsellorID: strPtr("u2")}
	assert.Equal(t, "u2", both.Updates()["counsellor_id"])

	create := CreateStudentRequest{CounselorID: "u3"}
	assert.Equal(t, "u3", create.Counsellor())
	create.CounsellorID = "u4"
	assert.Equal(t, "u4", create.Counsellor())
}

func TestUpdateAdmissionRequestUpdates(t *testing.T) {
	amount := 1500.0
	paid := types.Flag(true)
	req := UpdateAdmissionRequest{ScholarshipAmount: &amount, DepositPaid: &paid}
	assert.Equal(t, map[string]any{"scholarship_amount": 1500.0, "deposit_paid": types.Flag(true)}, req.Updates())
}

func TestRegisterValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidators(v))

	assert.NoError(t, v.Var("counselor", "crmrole"))
	assert.Error(t, v.Var("janitor", "crmrole"))
	assert.NoError(t, v.Var("waitlisted", "decision"))
	assert.Error(t, v.Var("maybe", "decision"))
}

func strPtr(s string) *string { return &s }
