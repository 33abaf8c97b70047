// Package services contains the application services of the smartpool
// client: pool and analysis records, authentication and settings.
//
// Record services write the local store first and mirror every change to
// the remote document store afterwards. Remote failures are logged and
// never fail the local operation.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

// Store is the local record store as the services use it.
type Store interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any) error
	Session(ctx context.Context) (*models.Session, error)
}

// Remote is the remote document store.
type Remote interface {
	Save(ctx context.Context, collection, docID string, fields firestore.Fields, token string) error
	Delete(ctx context.Context, collection, docID, token string) error
	List(ctx context.Context, collection, token string) ([]firestore.Fields, error)
	Create(ctx context.Context, collection string, fields firestore.Fields, token string) (string, error)
	Get(ctx context.Context, collection, docID, token string) (firestore.Fields, error)
}

// Option configures a record service.
type Option func(*base)

// WithClock replaces time.Now for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// base is what the record services share.
type base struct {
	store  Store
	remote Remote
	log    logging.Logger
	now    func() time.Time
}

func newBase(store Store, remote Remote, log logging.Logger, component string, opts []Option) base {
	b := base{store: store, remote: remote, log: log.With("component", component), now: time.Now}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *base) stamp() models.Timestamp {
	return models.NewTimestamp(b.now())
}

// remoteToken returns the bearer token for userID's remote records. It is
// common.ErrNoSession for a guest, no remote, or no signed-in session with
// a token for that user, and common.ErrTokenExpired once the token has
// lapsed.
func (b *base) remoteToken(ctx context.Context, userID string) (string, error) {
	if b.remote == nil || userID == "" || userID == common.GuestUserID {
		return "", common.ErrNoSession
	}
	sess, err := b.store.Session(ctx)
	if err != nil || sess.UserID != userID || sess.Token == "" {
		return "", common.ErrNoSession
	}
	if !sess.TokenValid(b.now()) {
		return "", common.ErrTokenExpired
	}
	return sess.Token, nil
}

// mirrorToken is remoteToken for best-effort writes; ok is false when the
// write stays local.
func (b *base) mirrorToken(ctx context.Context, userID string) (token string, ok bool) {
	token, err := b.remoteToken(ctx, userID)
	if errors.Is(err, common.ErrTokenExpired) {
		b.log.Warn(ctx, "remote token expired, change kept locally", "user_id", userID)
	}
	return token, err == nil
}

// logRemote records the outcome of a best-effort remote write.
func (b *base) logRemote(ctx context.Context, err error, msg string, args ...any) {
	switch {
	case err == nil:
		b.log.Info(ctx, msg, args...)
	case errors.Is(err, common.ErrRemoteDisabled):
		b.log.Debug(ctx, msg+" skipped, remote disabled", args...)
	default:
		b.log.Warn(ctx, msg+" failed", append(args, "error", err)...)
	}
}

// loadList reads a JSON array preference. A key that was never set is an
// empty list.
func loadList[T any](ctx context.Context, store Store, key string) ([]T, error) {
	var out []T
	err := store.Get(ctx, key, &out)
	if errors.Is(err, common.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// mergeByID overlays remote on local, keyed by id. Remote records replace
// local ones with the same id, new ids are appended in remote order, and
// local-only records stay. Records without an id are ignored.
func mergeByID[T any](local, remote []T, id func(T) string) (merged []T, added, updated int) {
	merged = append(make([]T, 0, len(local)+len(remote)), local...)
	index := make(map[string]int, len(local))
	for i, r := range merged {
		index[id(r)] = i
	}

	for _, r := range remote {
		key := id(r)
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			if !sameJSON(merged[i], r) {
				merged[i] = r
				updated++
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, r)
		added++
	}
	return merged, added, updated
}

func sameJSON(a, b any) bool {
	x, err1 := json.Marshal(a)
	y, err2 := json.Marshal(b)
	return err1 == nil && err2 == nil && bytes.Equal(x, y)
}

func poolsKey(userID string) string     { return "pools_" + userID }
func analysesKey(userID string) string  { return "analysis_" + userID }
func poolsPath(userID string) string    { return "users/" + userID + "/pools" }
func analysesPath(userID string) string { return "users/" + userID + "/analysis" }
