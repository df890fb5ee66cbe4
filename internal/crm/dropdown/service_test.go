package dropdown

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/common/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLabelFallsBackToCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStore(t), nil, time.Minute, zap.NewNop())

	require.NoError(t, svc.Upsert(ctx, &database.Dropdown{Category: "lead_source", Code: "web", Label: "Website"}))

	assert.Equal(t, "Website", svc.Label(ctx, "lead_source", "web"))
	assert.Equal(t, "walk_in", svc.Label(ctx, "lead_source", "walk_in"))
	assert.Equal(t, "", svc.Label(ctx, "lead_source", ""))
}

func TestUpsertValidatesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStore(t), nil, time.Hour, zap.NewNop())

	err := svc.Upsert(ctx, &database.Dropdown{Category: "country", Label: "Canada"})
	assert.ErrorIs(t, err, errorx.ErrInvalidInput)

	require.NoError(t, svc.Upsert(ctx, &database.Dropdown{Category: "country", Code: "ca", Label: "Canada"}))
	assert.Equal(t, "Canada", svc.Label(ctx, "country", "ca"))

	// the cached map must not survive a write
	require.NoError(t, svc.Upsert(ctx, &database.Dropdown{Category: "country", Code: "ca", Label: "Kanada"}))
	assert.Equal(t, "Kanada", svc.Label(ctx, "country", "ca"))

	rows, err := svc.List(ctx, "country")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NoError(t, svc.Delete(ctx, rows[0].ID))
	assert.Equal(t, "ca", svc.Label(ctx, "country", "ca"))

	assert.ErrorIs(t, svc.Delete(ctx, rows[0].ID), errorx.ErrResourceNotFound)
}

func TestLabelsSharedThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	store := newStore(t)
	require.NoError(t, store.UpsertDropdown(ctx, &database.Dropdown{Category: "program", Code: "mba", Label: "MBA"}))

	first := NewService(store, rdb, time.Hour, zap.NewNop())
	labels, err := first.Labels(ctx, "program")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"mba": "MBA"}, labels)
	assert.True(t, mr.Exists(cacheKeyPrefix+"program"))

	// a second instance reads L2 instead of the changed table
	require.NoError(t, store.UpsertDropdown(ctx, &database.Dropdown{Category: "program", Code: "mba", Label: "Master of Business"}))
	second := NewService(store, rdb, time.Hour, zap.NewNop())
	assert.Equal(t, "MBA", second.Label(ctx, "program", "mba"))

	// invalidation through either instance clears L2
	require.NoError(t, second.Upsert(ctx, &database.Dropdown{Category: "program", Code: "msc", Label: "MSc"}))
	assert.False(t, mr.Exists(cacheKeyPrefix+"program"))
	third := NewService(store, rdb, time.Hour, zap.NewNop())
	assert.Equal(t, "Master of Business", third.Label(ctx, "program", "mba"))
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStore(t), nil, time.Minute, zap.NewNop())
	for _, d := range []database.Dropdown{
		{Category: "lead_status", Code: "new", Label: "New"},
		{Category: "country", Code: "us", Label: "United States"},
		{Category: "country", Code: "uk", Label: "United Kingdom"},
		{Category: "student_status", Code: "active", Label: "Active"},
	} {
		d := d
		require.NoError(t, svc.Upsert(ctx, &d))
	}

	lead := &database.Lead{Status: "new", Country: types.StringList{"us", "uk", "de"}}
	svc.EnrichLead(ctx, lead)
	assert.Equal(t, "New", lead.Labels["status"])
	assert.Equal(t, "United States, United Kingdom, de", lead.Labels["country"])
	assert.Equal(t, "", lead.Labels["source"])

	st := &database.Student{Status: "active", TargetCountry: types.StringList{"uk"}}
	svc.EnrichStudent(ctx, st)
	assert.Equal(t, "Active", st.Labels["status"])
	assert.Equal(t, "United Kingdom", st.Labels["targetCountry"])

	svc.EnrichLead(ctx, nil)
}
