package document

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentregistry/pkg/cerr"
	"github.com/kazz187/agentregistry/pkg/storage"
	"github.com/kazz187/agentregistry/pkg/storage/storagetest"
)

type testDocument struct {
	Header
	Items Collection[[]string] `json:"items"`
}

func newTestDocument() *testDocument {
	return &testDocument{Items: NewCollection[[]string]()}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store[*testDocument], *storagetest.Recorder, *fakeClock) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	rec := storagetest.NewRecorder(local)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewStore(rec, Config{Name: "items.json"}, newTestDocument, WithClock(clock.Now)), rec, clock
}

func TestStore_OpenInitializesMissingDocument(t *testing.T) {
	ctx := context.Background()
	store, rec, _ := newTestStore(t)

	doc, state, err := store.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Initialized, state)
	assert.Equal(t, 0, doc.Items.Len())
	assert.Equal(t, 1, rec.Writes(), "default document must be persisted")
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 1, 0, time.UTC), doc.LastUpdated.Time)

	raw, err := rec.Read(ctx, "items.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_updated":"2025-01-01T00:00:01Z","items":{}}`, string(raw))

	_, state, err = store.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Existed, state)
	assert.Equal(t, 1, rec.Writes(), "reading an existing document must not write")
}

func TestStore_SaveStampsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	doc, _, err := store.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, doc.Items.Insert("zed", []string{"a"}))
	require.NoError(t, doc.Items.Insert("amy", []string{"b", "c"}))
	require.NoError(t, store.Save(ctx, doc))

	reopened, state, err := store.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Existed, state)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 2, 0, time.UTC), reopened.LastUpdated.Time)

	var keys []string
	for k := range reopened.Items.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"zed", "amy"}, keys)
	got, ok := reopened.Items.Get("amy")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c"}, got)
}

func TestStore_ReadFailure(t *testing.T) {
	store := NewStore(&storagetest.Failing{ReadErr: errors.New("access denied")}, Config{Name: "items.json"}, newTestDocument)

	_, _, err := store.Open(context.Background())
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
}

func TestStore_InitializeWriteFailure(t *testing.T) {
	store := NewStore(&storagetest.Failing{WriteErr: errors.New("read-only")}, Config{Name: "items.json"}, newTestDocument)

	_, state, err := store.Open(context.Background())
	require.Error(t, err)
	assert.Equal(t, Initialized, state)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
}

func TestStore_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	store, rec, _ := newTestStore(t)
	require.NoError(t, rec.Write(ctx, "items.json", []byte("{not json")))

	_, _, err := store.Open(ctx)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
}

func TestStore_ReadsZonelessTimestamps(t *testing.T) {
	ctx := context.Background()
	store, rec, _ := newTestStore(t)
	require.NoError(t, rec.Write(ctx, "items.json", []byte(`{
  "last_updated": "2024-06-01T10:20:30.123456",
  "items": {"bob": ["x"]}
}`)))

	doc, state, err := store.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, Existed, state)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 20, 30, 123456000, time.UTC), doc.LastUpdated.Time)
	assert.True(t, doc.Items.Has("bob"))
}

func TestCollection_InsertUpdateRemove(t *testing.T) {
	var c Collection[int]
	assert.Equal(t, 0, c.Len())
	assert.ErrorIs(t, c.Update("a", 1), ErrKeyNotFound)
	assert.ErrorIs(t, c.Remove("a"), ErrKeyNotFound)

	require.NoError(t, c.Insert("a", 1))
	require.NoError(t, c.Insert("b", 2))
	assert.ErrorIs(t, c.Insert("a", 3), ErrKeyExists)

	require.NoError(t, c.Update("a", 10))
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	require.NoError(t, c.Remove("a"))
	assert.False(t, c.Has("a"))
	assert.Equal(t, 1, c.Len())
}

func TestCollection_JSONKeepsInsertionOrder(t *testing.T) {
	c := NewCollection[string]()
	for _, k := range []string{"m", "c", "x", "a"} {
		require.NoError(t, c.Insert(k, k+k))
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"m":"mm","c":"cc","x":"xx","a":"aa"}`, string(data))

	var decoded Collection[string]
	require.NoError(t, json.Unmarshal(data, &decoded))
	var keys []string
	for k := range decoded.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"m", "c", "x", "a"}, keys)
}

func TestCollection_NullDecodesEmpty(t *testing.T) {
	doc := newTestDocument()
	require.NoError(t, json.Unmarshal([]byte(`{"items":null}`), doc))
	assert.Equal(t, 0, doc.Items.Len())
	require.NoError(t, doc.Items.Insert("a", nil))
}

func TestTimestamp_JSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("JST", 9*3600)))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-03T20:06:07Z"`, string(data))

	var zero Timestamp
	data, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "existed", Existed.String())
	assert.Equal(t, "initialized", Initialized.String())
}
