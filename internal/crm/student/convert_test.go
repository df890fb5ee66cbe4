package student

import (
	"context"
	"testing"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/cnst"
	"github.com/amoylab/nextcrm/internal/common/dto"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestConvertRecordsSpan(t *testing.T) {
	rec := recordSpans(t)
	h := newHarness(t)
	ctx := context.Background()
	lead := h.seedLead(t, &database.Lead{Name: "Rae"}, 2)

	res, err := h.svc.ConvertFromLead(ctx, admin, lead.ID, &dto.CreateStudentRequest{})
	require.NoError(t, err)

	_, err = h.svc.ConvertFromLead(ctx, admin, lead.ID, &dto.CreateStudentRequest{})
	require.Error(t, err)
	assert.Equal(t, errorx.ErrLeadConverted.Code, errorx.CodeOf(err))

	spans := rec.Ended()
	require.Len(t, spans, 2)

	ok := spans[0]
	assert.Equal(t, "student.ConvertFromLead", ok.Name())
	assert.Contains(t, ok.Attributes(), attribute.String("crm.lead_id", lead.ID))
	assert.Contains(t, ok.Attributes(), attribute.String("crm.student_id", res.Student.ID))
	assert.Contains(t, ok.Attributes(), attribute.Int64("crm.transferred_activities", 2))
	assert.NotEqual(t, codes.Error, ok.Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestConvertHiddenLeadIsNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	lead := h.seedLead(t, &database.Lead{
		Name:        "Sam",
		Email:       "s@example.com",
		Phone:       "999",
		CounselorID: "c-B",
	}, 2)
	other := scope.Caller{UserID: "c-A", Name: "Abe", Role: "counselor"}

	_, err := h.svc.ConvertFromLead(ctx, other, lead.ID, &dto.CreateStudentRequest{})
	requireCode(t, err, errorx.ErrResourceNotFound.Code)

	// the payload path through leadId is guarded the same way
	_, err = h.svc.ConvertFromLead(ctx, other, "", &dto.CreateStudentRequest{LeadID: lead.ID, Name: "Sam"})
	requireCode(t, err, errorx.ErrResourceNotFound.Code)

	existing, err := h.store.FindStudentByLeadID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Nil(t, existing)

	timeline, err := h.acts.List(ctx, cnst.EntityLead, lead.ID)
	require.NoError(t, err)
	assert.Len(t, timeline, 2)

	reloaded, err := h.store.FindLeadByID(ctx, lead.ID, scope.All)
	require.NoError(t, err)
	assert.False(t, reloaded.IsConverted.Bool())

	owner := scope.Caller{UserID: "c-B", Name: "Bea", Role: "counselor"}
	res, err := h.svc.ConvertFromLead(ctx, owner, lead.ID, &dto.CreateStudentRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.TransferredActivities)
}
