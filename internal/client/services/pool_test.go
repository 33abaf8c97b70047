package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

func newPoolService(t *testing.T) (PoolService, *fakeRemote, *testClock) {
	t.Helper()
	store := newStore(t)
	signIn(t, store, "u1")
	remote := newFakeRemote()
	clock := newClock()
	return NewPoolService(store, remote, logging.Nop(), WithClock(clock.now)), remote, clock
}

func TestPoolService_Create(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)

	p, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Backyard"), Volume: ptr(42.0)})
	require.NoError(t, err)

	_, err = uuid.Parse(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backyard", p.Name)
	assert.Equal(t, 42.0, p.Volume)
	assert.Equal(t, models.LocationOutdoor, p.Location)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	p2, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Indoor"), Location: ptr(models.LocationIndoor)})
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, p2.ID)

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pools, 2)
	if diff := cmp.Diff([]models.Pool{p, p2}, pools); diff != "" {
		t.Errorf("stored pools mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 2, remote.Saves)
	assert.Equal(t, 2, remote.count("users/u1/pools"))
	assert.Equal(t, []string{"tok-u1", "tok-u1"}, remote.Tokens)
}

func TestPoolService_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	svc, remote, clock := newPoolService(t)

	orig, err := svc.Save(ctx, "u1", models.PoolPatch{
		Name:      ptr("Backyard"),
		Volume:    ptr(40.0),
		Equipment: &models.EquipmentPatch{Heater: ptr(true), Ozone: ptr(true)},
	})
	require.NoError(t, err)

	clock.advance(time.Hour)
	upd, err := svc.Save(ctx, "u1", models.PoolPatch{
		ID:        orig.ID,
		Volume:    ptr(55.5),
		Equipment: &models.EquipmentPatch{Ozone: ptr(false)},
	})
	require.NoError(t, err)

	assert.Equal(t, orig.ID, upd.ID)
	assert.Equal(t, "Backyard", upd.Name, "unprovided fields are kept")
	assert.Equal(t, 55.5, upd.Volume)
	assert.Equal(t, models.Equipment{Heater: true}, upd.Equipment)
	assert.Equal(t, orig.CreatedAt, upd.CreatedAt)
	assert.True(t, upd.UpdatedAt.After(orig.UpdatedAt.Time))

	var stored models.Pool
	require.NoError(t, remote.docs["users/u1/pools"][orig.ID].Decode(&stored))
	assert.Equal(t, 55.5, stored.Volume, "remote receives the merged pool")

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, pools, 1)
}

func TestPoolService_UpdatedAtStrictlyIncreasesWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newPoolService(t)

	p, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("A")})
	require.NoError(t, err)

	prev := p.UpdatedAt
	for i := 0; i < 3; i++ {
		p, err = svc.Save(ctx, "u1", models.PoolPatch{ID: p.ID, Name: ptr("A")})
		require.NoError(t, err)
		assert.True(t, p.UpdatedAt.After(prev.Time))
		prev = p.UpdatedAt
	}
}

func TestPoolService_UpdateKeepsProvidedCreatedAt(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newPoolService(t)

	p, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("A")})
	require.NoError(t, err)

	created := models.NewTimestamp(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	p, err = svc.Save(ctx, "u1", models.PoolPatch{ID: p.ID, CreatedAt: &created})
	require.NoError(t, err)
	assert.Equal(t, created, p.CreatedAt)
}

func TestPoolService_UnknownIDIsAppended(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newPoolService(t)

	created := models.NewTimestamp(clock.now().Add(-48 * time.Hour))
	p, err := svc.Save(ctx, "u1", models.PoolPatch{ID: "imported-1", Name: ptr("Old"), CreatedAt: &created})
	require.NoError(t, err)

	assert.Equal(t, "imported-1", p.ID)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, models.NewTimestamp(clock.now()), p.UpdatedAt)

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, "imported-1", pools[0].ID)
}

func TestPoolService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)

	tests := []struct {
		name  string
		patch models.PoolPatch
		field string
	}{
		{"missing name", models.PoolPatch{Volume: ptr(10.0)}, "name"},
		{"empty name", models.PoolPatch{Name: ptr("")}, "name"},
		{"negative volume", models.PoolPatch{Name: ptr("A"), Volume: ptr(-1.0)}, "volume"},
		{"bad location", models.PoolPatch{Name: ptr("A"), Location: ptr(models.Location("roof"))}, "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, "u1", tt.patch)
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, pools)
	assert.Zero(t, remote.Saves)
}

func TestPoolService_RemoteFailureDoesNotFailSave(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)
	remote.SaveErr = &firestore.StatusError{Status: 503, Body: "unavailable"}

	p, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("A")})
	require.NoError(t, err)

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Pool{p}, pools)
	assert.Equal(t, 1, remote.Saves)
}

func TestPoolService_NoRemoteWithoutMatchingSession(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	remote := newFakeRemote()
	svc := NewPoolService(store, remote, logging.Nop())

	_, err := svc.Save(ctx, common.GuestUserID, models.PoolPatch{Name: ptr("Guest pool")})
	require.NoError(t, err)

	signIn(t, store, "someone-else")
	_, err = svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("A")})
	require.NoError(t, err)

	assert.Zero(t, remote.Saves)

	guestPools, err := svc.List(ctx, common.GuestUserID)
	require.NoError(t, err)
	assert.Len(t, guestPools, 1)
}

func TestPoolService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)

	a, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("A")})
	require.NoError(t, err)
	b, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("B")})
	require.NoError(t, err)

	ok, err := svc.Delete(ctx, "u1", "does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
	pools, _ := svc.List(ctx, "u1")
	assert.Len(t, pools, 2)
	assert.Zero(t, remote.Deletes)

	ok, err = svc.Delete(ctx, "u1", a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	pools, _ = svc.List(ctx, "u1")
	assert.Equal(t, []models.Pool{b}, pools)
	assert.Equal(t, 1, remote.Deletes)
	assert.Equal(t, 1, remote.count("users/u1/pools"))
}

func TestPoolService_Sync(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)

	localOnly, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Local only")})
	require.NoError(t, err)
	shared, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Shared")})
	require.NoError(t, err)

	// another device renamed the shared pool and created a new one
	remote.docs = map[string]map[string]firestore.Fields{}
	renamed := shared
	renamed.Name = "Renamed elsewhere"
	fresh := models.Pool{ID: "remote-1", Name: "From phone", Location: models.LocationIndoor,
		CreatedAt: shared.CreatedAt, UpdatedAt: shared.UpdatedAt}
	for _, p := range []models.Pool{renamed, fresh} {
		f, err := firestore.Encode(p)
		require.NoError(t, err)
		remote.put("users/u1/pools", p.ID, f)
	}
	remote.put("users/u1/pools", "no-id", firestore.Fields{"name": firestore.String("orphan")})

	report, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Fetched: 3, Added: 1, Updated: 1}, report)

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pools, 3)
	assert.Equal(t, localOnly, pools[0], "local-only pools are kept")
	assert.Equal(t, "Renamed elsewhere", pools[1].Name, "remote wins")
	assert.Equal(t, fresh, pools[2])

	again, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, again.Changed())

	after, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, pools, after)
}

func TestPoolService_SyncFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		svc := NewPoolService(newStore(t), newFakeRemote(), logging.Nop())
		_, err := svc.Sync(ctx, "u1")
		require.ErrorIs(t, err, common.ErrNoSession)
	})

	t.Run("remote error leaves local untouched", func(t *testing.T) {
		svc, remote, _ := newPoolService(t)
		p, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("A")})
		require.NoError(t, err)

		remote.ListErr = errors.New("boom")
		_, err = svc.Sync(ctx, "u1")
		require.Error(t, err)

		pools, err := svc.List(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, []models.Pool{p}, pools)
	})

	t.Run("remote disabled", func(t *testing.T) {
		store := newStore(t)
		signIn(t, store, "u1")
		svc := NewPoolService(store, firestore.New(firestore.Config{}, logging.Nop()), logging.Nop())

		_, err := svc.Sync(ctx, "u1")
		require.ErrorIs(t, err, common.ErrRemoteDisabled)

		_, err = svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("A")})
		require.NoError(t, err)
	})
}

func TestPoolService_StartSync(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)

	f, err := firestore.Encode(models.Pool{ID: "r1", Name: "Remote"})
	require.NoError(t, err)
	remote.put("users/u1/pools", "r1", f)

	task := svc.StartSync(ctx, "u1")
	report, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)

	select {
	case <-task.Done():
	default:
		t.Fatal("Done must be closed after Wait returns")
	}

	again, err := task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, report, again)

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, "Remote", pools[0].Name)
}

func TestPoolService_ExpiredTokenStaysLocal(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	clock := newClock()
	signInUntil(t, store, "u1", clock.now().Add(time.Hour))
	remote := newFakeRemote()
	svc := NewPoolService(store, remote, logging.Nop(), WithClock(clock.now))

	_, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Fresh token")})
	require.NoError(t, err)
	assert.Equal(t, 1, remote.Saves)

	clock.advance(2 * time.Hour)

	p, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Lapsed token")})
	require.NoError(t, err)
	assert.Equal(t, 1, remote.Saves, "no remote write with an expired token")

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, pools, 2)

	ok, err := svc.Delete(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, remote.Deletes)

	_, err = svc.Sync(ctx, "u1")
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestPoolService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)

	local, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Backyard"), Volume: ptr(40.0)})
	require.NoError(t, err)

	changed := local
	changed.Volume = 55
	f, err := firestore.Encode(changed)
	require.NoError(t, err)
	remote.put("users/u1/pools", local.ID, f)

	got, err := svc.Refresh(ctx, "u1", local.ID)
	require.NoError(t, err)
	assert.Equal(t, 55.0, got.Volume)

	pools, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, 55.0, pools[0].Volume, "remote copy stored locally")

	// only on the remote
	other := models.Pool{ID: "remote-only", Name: "Spa"}
	f, err = firestore.Encode(other)
	require.NoError(t, err)
	remote.put("users/u1/pools", other.ID, f)

	got, err = svc.Refresh(ctx, "u1", other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spa", got.Name)

	_, err = svc.Refresh(ctx, "u1", "nowhere")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPoolService_RefreshKeepsLocalOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	svc, remote, _ := newPoolService(t)

	p, err := svc.Save(ctx, "u1", models.PoolPatch{Name: ptr("Backyard")})
	require.NoError(t, err)
	remote.GetErr = errors.New("boom")

	got, err := svc.Refresh(ctx, "u1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestPoolService_RefreshGuestIsLocal(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	svc := NewPoolService(newStore(t), remote, logging.Nop())

	p, err := svc.Save(ctx, common.GuestUserID, models.PoolPatch{Name: ptr("Guest pool")})
	require.NoError(t, err)

	got, err := svc.Refresh(ctx, common.GuestUserID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Empty(t, remote.Tokens)
}
