package docstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := New(dir, 0, newNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, dir
}

func TestCollection_SameHandleForSameName(t *testing.T) {
	store, _ := newTestStore(t)

	first, err := store.Collection("users")
	require.NoError(t, err)
	second, err := store.Collection("users")
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestInsertOne_FindOne_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	res, err := coll.InsertOne(context.Background(), Document{
		"email": "a@x.com",
		"role":  "user",
	})
	require.NoError(t, err)
	assert.True(t, res.Acknowledged)
	assert.NotEmpty(t, res.InsertedID)

	found, err := coll.FindOne(context.Background(), Query{"_id": res.InsertedID})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, res.InsertedID, found["_id"])
	assert.Equal(t, "a@x.com", found["email"])
	assert.Equal(t, "user", found["role"])
}

func TestInsertOne_PreservesProvidedID(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("items")
	require.NoError(t, err)

	res, err := coll.InsertOne(context.Background(), Document{"_id": "fixed-id", "v": "x"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", res.InsertedID)

	_, err = coll.InsertOne(context.Background(), Document{"_id": "fixed-id"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertOne_GeneratedIDsAreUnique(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("items")
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		res, err := coll.InsertOne(context.Background(), Document{"n": "v"})
		require.NoError(t, err)
		_, dup := seen[res.InsertedID]
		assert.False(t, dup)
		seen[res.InsertedID] = struct{}{}
	}
}

func TestFindOne_NoMatchReturnsNil(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	found, err := coll.FindOne(context.Background(), Query{"email": "missing@x.com"})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindOne_InOperatorOnID(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	var ids []string
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		res, err := coll.InsertOne(context.Background(), Document{"email": email})
		require.NoError(t, err)
		ids = append(ids, res.InsertedID)
	}

	found, err := coll.FindOne(context.Background(), Query{
		"_id": map[string]any{"$in": []any{ids[1], ids[2]}},
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "b@x.com", found["email"])

	cursor, err := coll.Find(context.Background(), Query{
		"_id": map[string]any{"$in": []string{ids[0], ids[2]}},
	})
	require.NoError(t, err)
	docs := cursor.All()
	require.Len(t, docs, 2)
	assert.Equal(t, "a@x.com", docs[0]["email"])
	assert.Equal(t, "c@x.com", docs[1]["email"])
}

func TestFind_InsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("notes")
	require.NoError(t, err)

	for _, lesson := range []string{"l1", "l2", "l3"} {
		_, err := coll.InsertOne(context.Background(), Document{"userId": "u1", "lessonId": lesson})
		require.NoError(t, err)
	}
	_, err = coll.InsertOne(context.Background(), Document{"userId": "u2", "lessonId": "other"})
	require.NoError(t, err)

	cursor, err := coll.Find(context.Background(), Query{"userId": "u1"})
	require.NoError(t, err)
	docs := cursor.All()
	require.Len(t, docs, 3)
	for i, lesson := range []string{"l1", "l2", "l3"} {
		assert.Equal(t, lesson, docs[i]["lessonId"])
	}
}

func TestUpdateOne_Counts(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	res, err := coll.InsertOne(context.Background(), Document{"email": "a@x.com", "role": "user"})
	require.NoError(t, err)

	updated, err := coll.UpdateOne(context.Background(),
		Query{"_id": res.InsertedID}, Document{"role": "admin"})
	require.NoError(t, err)
	assert.True(t, updated.Acknowledged)
	assert.Equal(t, 1, updated.MatchedCount)
	assert.Equal(t, 1, updated.ModifiedCount)

	found, err := coll.FindOne(context.Background(), Query{"_id": res.InsertedID})
	require.NoError(t, err)
	assert.Equal(t, "admin", found["role"])
	assert.Equal(t, "a@x.com", found["email"])

	missed, err := coll.UpdateOne(context.Background(),
		Query{"_id": "no-such-id"}, Document{"role": "admin"})
	require.NoError(t, err)
	assert.True(t, missed.Acknowledged)
	assert.Zero(t, missed.MatchedCount)
	assert.Zero(t, missed.ModifiedCount)
}

func TestUpdateOne_DoesNotChangeID(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	res, err := coll.InsertOne(context.Background(), Document{"email": "a@x.com"})
	require.NoError(t, err)

	_, err = coll.UpdateOne(context.Background(),
		Query{"_id": res.InsertedID}, Document{"_id": "hijacked", "email": "b@x.com"})
	require.NoError(t, err)

	found, err := coll.FindOne(context.Background(), Query{"_id": res.InsertedID})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "b@x.com", found["email"])
}

func TestDeleteOne_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	res, err := coll.InsertOne(context.Background(), Document{"email": "a@x.com"})
	require.NoError(t, err)

	first, err := coll.DeleteOne(context.Background(), Query{"_id": res.InsertedID})
	require.NoError(t, err)
	assert.Equal(t, 1, first.DeletedCount)

	second, err := coll.DeleteOne(context.Background(), Query{"_id": res.InsertedID})
	require.NoError(t, err)
	assert.True(t, second.Acknowledged)
	assert.Zero(t, second.DeletedCount)

	found, err := coll.FindOne(context.Background(), Query{"_id": res.InsertedID})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestEnsureUnique_RejectsDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)
	coll.EnsureUnique("email")

	_, err = coll.InsertOne(context.Background(), Document{"email": "a@x.com"})
	require.NoError(t, err)

	_, err = coll.InsertOne(context.Background(), Document{"email": "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = coll.InsertOne(context.Background(), Document{"email": "b@x.com"})
	assert.NoError(t, err)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	logger := newNoopLogger()

	store, err := New(dir, 0, logger)
	require.NoError(t, err)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	resA, err := coll.InsertOne(context.Background(), Document{"email": "a@x.com", "role": "user"})
	require.NoError(t, err)
	resB, err := coll.InsertOne(context.Background(), Document{"email": "b@x.com", "role": "user"})
	require.NoError(t, err)
	_, err = coll.UpdateOne(context.Background(), Query{"_id": resA.InsertedID}, Document{"role": "admin"})
	require.NoError(t, err)
	_, err = coll.DeleteOne(context.Background(), Query{"_id": resB.InsertedID})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(dir, 0, logger)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()
	coll, err = reopened.Collection("users")
	require.NoError(t, err)

	found, err := coll.FindOne(context.Background(), Query{"_id": resA.InsertedID})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "admin", found["role"])

	gone, err := coll.FindOne(context.Background(), Query{"_id": resB.InsertedID})
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCompact_ShrinksJournalAndKeepsState(t *testing.T) {
	dir := t.TempDir()
	logger := newNoopLogger()

	store, err := New(dir, 0, logger)
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()
	coll, err := store.Collection("users")
	require.NoError(t, err)

	res, err := coll.InsertOne(context.Background(), Document{"email": "a@x.com", "role": "user"})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		_, err = coll.UpdateOne(context.Background(),
			Query{"_id": res.InsertedID}, Document{"role": "user"})
		require.NoError(t, err)
	}

	path := filepath.Join(dir, "users.db")
	before, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, coll.Compact())

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Less(t, after.Size(), before.Size())

	found, err := coll.FindOne(context.Background(), Query{"_id": res.InsertedID})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "a@x.com", found["email"])

	// запись после уплотнения продолжает журнал
	_, err = coll.InsertOne(context.Background(), Document{"email": "b@x.com"})
	require.NoError(t, err)
}

func TestCompact_ConcurrentWritesSurvive(t *testing.T) {
	dir := t.TempDir()
	logger := newNoopLogger()
	store, err := New(dir, 0, logger)
	require.NoError(t, err)
	coll, err := store.Collection("notes")
	require.NoError(t, err)

	const total = 50
	inserted := make(chan struct{})
	go func() {
		defer close(inserted)
		for i := 0; i < total; i++ {
			_, err := coll.InsertOne(context.Background(), Document{"n": strconv.Itoa(i)})
			assert.NoError(t, err)
		}
	}()
	for i := 0; i < 10; i++ {
		require.NoError(t, coll.Compact())
	}
	<-inserted
	require.NoError(t, store.Close())

	reopened, err := New(dir, 0, logger)
	require.NoError(t, err)
	defer func() {
		_ = reopened.Close()
	}()
	coll, err = reopened.Collection("notes")
	require.NoError(t, err)

	cursor, err := coll.Find(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, cursor.All(), total)
}

func TestClose_StopsBackgroundCompaction(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, 10*time.Millisecond, newNoopLogger())
	require.NoError(t, err)
	coll, err := store.Collection("users")
	require.NoError(t, err)
	_, err = coll.InsertOne(context.Background(), Document{"email": "a@x.com"})
	require.NoError(t, err)

	require.NoError(t, store.Close())

	// после Close тикер не должен трогать журнал
	path := filepath.Join(dir, "users.db")
	before, err := os.Stat(path)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, before.Size(), after.Size())
}

func TestBackgroundCompaction(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, 50*time.Millisecond, newNoopLogger())
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	coll, err := store.Collection("users")
	require.NoError(t, err)
	res, err := coll.InsertOne(context.Background(), Document{"email": "a@x.com"})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err = coll.UpdateOne(context.Background(),
			Query{"_id": res.InsertedID}, Document{"role": "user"})
		require.NoError(t, err)
	}

	before, err := os.Stat(filepath.Join(dir, "users.db"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		info, err := os.Stat(filepath.Join(dir, "users.db"))
		if err != nil {
			return false
		}
		found, err := coll.FindOne(context.Background(), Query{"_id": res.InsertedID})
		return err == nil && found != nil && info.Size() < before.Size()
	}, time.Second, 20*time.Millisecond)
}

func TestOperations_CanceledContext(t *testing.T) {
	store, _ := newTestStore(t)
	coll, err := store.Collection("users")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = coll.InsertOne(ctx, Document{"email": "a@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = coll.FindOne(ctx, Query{"email": "a@x.com"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = coll.UpdateOne(ctx, Query{}, Document{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = coll.DeleteOne(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
}
