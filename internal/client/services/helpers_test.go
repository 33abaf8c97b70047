package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/smartpool/internal/client/firestore"
	"github.com/dmitrijs2005/smartpool/internal/client/localstore"
	"github.com/dmitrijs2005/smartpool/internal/client/models"
	"github.com/dmitrijs2005/smartpool/internal/common"
	"github.com/dmitrijs2005/smartpool/internal/logging"
)

// fakeRemote is an in-memory document store keyed by collection path.
type fakeRemote struct {
	mu sync.Mutex

	docs map[string]map[string]firestore.Fields

	SaveErr   error
	DeleteErr error
	ListErr   error
	CreateErr error
	GetErr    error

	Saves   int
	Deletes int
	Creates int
	Tokens  []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{docs: map[string]map[string]firestore.Fields{}}
}

func (f *fakeRemote) put(collection, id string, fields firestore.Fields) {
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]firestore.Fields{}
	}
	f.docs[collection][id] = fields
}

func (f *fakeRemote) Save(_ context.Context, collection, docID string, fields firestore.Fields, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Saves++
	f.Tokens = append(f.Tokens, token)
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.put(collection, docID, fields)
	return nil
}

func (f *fakeRemote) Delete(_ context.Context, collection, docID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deletes++
	f.Tokens = append(f.Tokens, token)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.docs[collection], docID)
	return nil
}

func (f *fakeRemote) List(_ context.Context, collection, token string) ([]firestore.Fields, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens = append(f.Tokens, token)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []firestore.Fields
	for _, d := range f.docs[collection] {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeRemote) Create(_ context.Context, collection string, fields firestore.Fields, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Creates++
	f.Tokens = append(f.Tokens, token)
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	id := fmt.Sprintf("gen-%d", f.Creates)
	f.put(collection, id, fields)
	return id, nil
}

func (f *fakeRemote) Get(_ context.Context, collection, docID, token string) (firestore.Fields, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens = append(f.Tokens, token)
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	doc, ok := f.docs[collection][docID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return doc, nil
}

func (f *fakeRemote) count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[collection])
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func newStore(t *testing.T) *localstore.Store {
	t.Helper()
	return localstore.New(filepath.Join(t.TempDir(), localstore.FileName), logging.Nop())
}

func signIn(t *testing.T, store *localstore.Store, userID string) {
	t.Helper()
	require.NoError(t, store.SaveSession(context.Background(), userID, userID+"@example.com", models.Credentials{Token: "tok-" + userID}))
}

// signInUntil stores a session whose token lapses at exp.
func signInUntil(t *testing.T, store *localstore.Store, userID string, exp time.Time) {
	t.Helper()
	cred := models.Credentials{Token: "tok-" + userID, RefreshToken: "ref-" + userID, TokenExpiresAt: models.NewTimestamp(exp)}
	require.NoError(t, store.SaveSession(context.Background(), userID, userID+"@example.com", cred))
}

func ptr[T any](v T) *T { return &v }

// keyTranslator returns keys unchanged.
type keyTranslator struct{}

func (keyTranslator) T(key string) string { return key }
