package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

type syncerFunc func(ctx context.Context, userID string) (SyncReport, error)

func (f syncerFunc) Sync(ctx context.Context, userID string) (SyncReport, error) {
	return f(ctx, userID)
}

func TestSyncAll(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	signIn(t, store, "u1")
	remote := newFakeRemote()

	for _, p := range []models.Pool{{ID: "p1", Name: "A"}, {ID: "p2", Name: "B"}} {
		f, err := firestore.Encode(p)
		require.NoError(t, err)
		remote.put("users/u1/pools", p.ID, f)
	}
	f, err := firestore.Encode(models.AnalysisRecord{ID: "a1", PoolID: "p1"})
	require.NoError(t, err)
	remote.put("users/u1/analysis", "gen", f)

	pools := NewPoolService(store, remote, logging.Nop())
	analyses := NewAnalysisService(store, remote, nil, logging.Nop())

	report, err := SyncAll(ctx, "u1", pools, analyses)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Pools.Added)
	assert.Equal(t, 1, report.Analyses.Added)

	// both collections survive concurrent writes to the same document
	ps, err := pools.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, ps, 2)
	as, err := analyses.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, as, 1)
}

func TestSyncAll_ReportsErrorButRunsBoth(t *testing.T) {
	boom := errors.New("boom")
	var analysesRan bool

	pools := syncerFunc(func(context.Context, string) (SyncReport, error) { return SyncReport{}, boom })
	analyses := syncerFunc(func(context.Context, string) (SyncReport, error) {
		analysesRan = true
		return SyncReport{Added: 3}, nil
	})

	report, err := SyncAll(context.Background(), "u1", pools, analyses)
	require.ErrorIs(t, err, boom)
	assert.True(t, analysesRan)
	assert.Equal(t, 3, report.Analyses.Added)
}

func TestSyncTask_WaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	task := startSync(context.Background(), func(context.Context) (SyncReport, error) {
		<-release
		return SyncReport{Added: 1}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := task.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	report, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
}

func TestMergeByID(t *testing.T) {
	type rec struct{ ID, V string }
	id := func(r rec) string { return r.ID }

	local := []rec{{"a", "1"}, {"b", "1"}}
	remote := []rec{{"b", "2"}, {"c", "1"}, {"", "x"}, {"a", "1"}}

	merged, added, updated := mergeByID(local, remote, id)
	assert.Equal(t, []rec{{"a", "1"}, {"b", "2"}, {"c", "1"}}, merged)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, updated)
	assert.Equal(t, []rec{{"a", "1"}, {"b", "1"}}, local, "input is not modified")

	again, added, updated := mergeByID(merged, remote, id)
	assert.Equal(t, merged, again)
	assert.Zero(t, added+updated)
}
