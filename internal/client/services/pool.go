package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
	"github.com/dmitrijs2005/smartpool/internal/validation"
)

// PoolService manages a user's pools.
//
// Contract:
//   - List: the locally stored pools, in insertion order.
//   - Save: create (empty ID), merge into an existing pool, or append a
//     pool under an unknown ID. Returns the stored pool.
//   - Delete: reports false when no pool has the ID.
//   - Refresh: pull one pool from the remote store, then return the local
//     copy (common.ErrNotFound when neither side has it).
//   - Sync / StartSync: pull remote pools into the local collection.
type PoolService interface {
	List(ctx context.Context, userID string) ([]models.Pool, error)
	Save(ctx context.Context, userID string, patch models.PoolPatch) (models.Pool, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	Refresh(ctx context.Context, userID, id string) (models.Pool, error)
	Sync(ctx context.Context, userID string) (SyncReport, error)
	StartSync(ctx context.Context, userID string) *SyncTask
}

type poolService struct {
	base
	validate *validation.Validator
}

func NewPoolService(store Store, remote Remote, log logging.Logger, opts ...Option) PoolService {
	return &poolService{
		base:     newBase(store, remote, log, "pools", opts),
		validate: validation.New(),
	}
}

func (s *poolService) List(ctx context.Context, userID string) ([]models.Pool, error) {
	pools, err := loadList[models.Pool](ctx, s.store, poolsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("load pools: %w", err)
	}
	return pools, nil
}

func (s *poolService) Save(ctx context.Context, userID string, patch models.PoolPatch) (models.Pool, error) {
	if err := s.validate.Struct(patch); err != nil {
		return models.Pool{}, err
	}

	pools, err := s.List(ctx, userID)
	if err != nil {
		return models.Pool{}, err
	}

	now := s.stamp()
	var pool models.Pool

	i := -1
	if patch.ID != "" {
		i = models.FindPool(pools, patch.ID)
	}

	switch {
	case i >= 0:
		prev := pools[i]
		pool = prev.Apply(patch)
		pool.UpdatedAt = later(now, prev.UpdatedAt)
		pools[i] = pool

	default:
		// new pool, or one carrying an id this device has not seen
		if err := s.validate.Var("name", ptrValue(patch.Name), "required"); err != nil {
			return models.Pool{}, err
		}
		pool = models.Pool{ID: patch.ID, Location: models.LocationOutdoor}.Apply(patch)
		if pool.ID == "" {
			pool.ID = uuid.NewString()
		}
		if pool.CreatedAt.IsZero() {
			pool.CreatedAt = now
		}
		pool.UpdatedAt = now
		if pool.UpdatedAt.Before(pool.CreatedAt.Time) {
			pool.UpdatedAt = pool.CreatedAt
		}
		pools = append(pools, pool)
	}

	if err := s.store.Set(ctx, poolsKey(userID), pools); err != nil {
		return models.Pool{}, fmt.Errorf("save pools: %w", err)
	}
	s.log.Info(ctx, "pool saved", "user_id", userID, "pool_id", pool.ID)

	s.mirror(ctx, userID, pool)
	return pool, nil
}

func (s *poolService) mirror(ctx context.Context, userID string, pool models.Pool) {
	token, ok := s.mirrorToken(ctx, userID)
	if !ok {
		return
	}
	fields, err := firestore.Encode(pool)
	if err == nil {
		err = s.remote.Save(ctx, poolsPath(userID), pool.ID, fields, token)
	}
	s.logRemote(ctx, err, "remote pool save", "user_id", userID, "pool_id", pool.ID)
}

func (s *poolService) Delete(ctx context.Context, userID, id string) (bool, error) {
	pools, err := s.List(ctx, userID)
	if err != nil {
		return false, err
	}

	i := models.FindPool(pools, id)
	if i < 0 {
		return false, nil
	}
	pools = append(pools[:i], pools[i+1:]...)

	if err := s.store.Set(ctx, poolsKey(userID), pools); err != nil {
		return false, fmt.Errorf("save pools: %w", err)
	}
	s.log.Info(ctx, "pool deleted", "user_id", userID, "pool_id", id)

	if token, ok := s.mirrorToken(ctx, userID); ok {
		err := s.remote.Delete(ctx, poolsPath(userID), id, token)
		s.logRemote(ctx, err, "remote pool delete", "user_id", userID, "pool_id", id)
	}
	return true, nil
}

func (s *poolService) Refresh(ctx context.Context, userID, id string) (models.Pool, error) {
	pools, err := s.List(ctx, userID)
	if err != nil {
		return models.Pool{}, err
	}

	if token, err := s.remoteToken(ctx, userID); err == nil {
		fields, err := s.remote.Get(ctx, poolsPath(userID), id, token)
		switch {
		case err == nil:
			pools, err = s.overlay(ctx, userID, pools, id, fields)
			if err != nil {
				return models.Pool{}, err
			}
		case errors.Is(err, common.ErrNotFound):
			s.log.Debug(ctx, "pool not on remote", "user_id", userID, "pool_id", id)
		default:
			s.logRemote(ctx, err, "remote pool get", "user_id", userID, "pool_id", id)
		}
	}

	i := models.FindPool(pools, id)
	if i < 0 {
		return models.Pool{}, fmt.Errorf("pool %s: %w", id, common.ErrNotFound)
	}
	return pools[i], nil
}

// overlay merges one remote pool document into pools and stores the
// result when it changed anything.
func (s *poolService) overlay(ctx context.Context, userID string, pools []models.Pool, id string, fields firestore.Fields) ([]models.Pool, error) {
	var remote models.Pool
	if err := fields.Decode(&remote); err != nil {
		s.log.Warn(ctx, "skipping remote pool", "pool_id", id, "error", err)
		return pools, nil
	}
	if remote.ID == "" {
		remote.ID = id
	}

	merged, added, updated := mergeByID(pools, []models.Pool{remote}, func(p models.Pool) string { return p.ID })
	if added+updated == 0 {
		return pools, nil
	}
	if err := s.store.Set(ctx, poolsKey(userID), merged); err != nil {
		return nil, fmt.Errorf("save pools: %w", err)
	}
	s.log.Info(ctx, "pool refreshed from remote", "user_id", userID, "pool_id", id)
	return merged, nil
}

func (s *poolService) Sync(ctx context.Context, userID string) (SyncReport, error) {
	return syncCollection(ctx, &s.base, userID, poolsKey(userID), poolsPath(userID),
		func(p models.Pool) string { return p.ID })
}

func (s *poolService) StartSync(ctx context.Context, userID string) *SyncTask {
	return startSync(ctx, func(ctx context.Context) (SyncReport, error) { return s.Sync(ctx, userID) })
}

// later returns now, or a microsecond past prev when the clock has not
// moved beyond it.
func later(now, prev models.Timestamp) models.Timestamp {
	if now.After(prev.Time) {
		return now
	}
	return models.NewTimestamp(prev.Add(time.Microsecond))
}

func ptrValue[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
