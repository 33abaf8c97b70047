package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// SyncReport counts what a pull changed locally.
type SyncReport struct {
	Fetched int
	Added   int
	Updated int
}

// Changed reports whether the local collection was rewritten.
func (r SyncReport) Changed() bool {
	return r.Added+r.Updated > 0
}

// syncCollection pulls collection path into the local list under key.
// Remote records win over local ones with the same id; local-only records
// are kept. The local list is written only when something changed.
func syncCollection[T any](ctx context.Context, b *base, userID, key, path string, id func(T) string) (SyncReport, error) {
	token, err := b.remoteToken(ctx, userID)
	if err != nil {
		return SyncReport{}, fmt.Errorf("sync %s: %w", path, err)
	}

	docs, err := b.remote.List(ctx, path, token)
	if err != nil {
		b.logRemote(ctx, err, "remote list", "collection", path)
		return SyncReport{}, fmt.Errorf("sync %s: %w", path, err)
	}

	remote := make([]T, 0, len(docs))
	for _, doc := range docs {
		var rec T
		if err := doc.Decode(&rec); err != nil {
			b.log.Warn(ctx, "skipping remote record", "collection", path, "error", err)
			continue
		}
		remote = append(remote, rec)
	}

	local, err := loadList[T](ctx, b.store, key)
	if err != nil {
		return SyncReport{}, fmt.Errorf("sync %s: %w", path, err)
	}

	merged, added, updated := mergeByID(local, remote, id)
	report := SyncReport{Fetched: len(docs), Added: added, Updated: updated}

	if report.Changed() {
		if err := b.store.Set(ctx, key, merged); err != nil {
			return report, fmt.Errorf("sync %s: %w", path, err)
		}
	}

	b.log.Info(ctx, "sync finished", "collection", path, "fetched", report.Fetched, "added", added, "updated", updated)
	return report, nil
}

// SyncTask is a sync running in the background. Its result is delivered
// once; Wait may be called any number of times.
type SyncTask struct {
	done   chan struct{}
	report SyncReport
	err    error
}

func startSync(ctx context.Context, fn func(context.Context) (SyncReport, error)) *SyncTask {
	t := &SyncTask{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.report, t.err = fn(ctx)
	}()
	return t
}

// Done is closed when the sync has finished.
func (t *SyncTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the sync finishes or ctx is done. Cancelling ctx here
// stops waiting, not the sync itself.
func (t *SyncTask) Wait(ctx context.Context) (SyncReport, error) {
	select {
	case <-t.done:
		return t.report, t.err
	case <-ctx.Done():
		return SyncReport{}, ctx.Err()
	}
}

// Syncer is anything that can pull a user's records.
type Syncer interface {
	Sync(ctx context.Context, userID string) (SyncReport, error)
}

// SyncAllReport holds one report per collection.
type SyncAllReport struct {
	Pools    SyncReport
	Analyses SyncReport
}

// SyncAll pulls pools and analyses concurrently. Both pulls always run to
// completion; the first error is returned alongside both reports.
func SyncAll(ctx context.Context, userID string, pools, analyses Syncer) (SyncAllReport, error) {
	var (
		g   errgroup.Group
		out SyncAllReport
	)

	g.Go(func() error {
		var err error
		out.Pools, err = pools.Sync(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Analyses, err = analyses.Sync(ctx, userID)
		return err
	})

	err := g.Wait()
	return out, err
}
