package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/agentregistry/pkg/cerr"
	"github.com/kazz187/agentregistry/pkg/storage"
	"github.com/kazz187/agentregistry/pkg/storage/storagetest"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestRegistry(t *testing.T) (*Registry, *storagetest.Recorder) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	rec := storagetest.NewRecorder(local)
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewRegistry(NewRepository(rec, "user_profiles.json"), WithClock(clock.Now)), rec
}

func ptr(s string) *string {
	return &s
}

func aliceFields() *Fields {
	return &Fields{
		Email:     ptr("alice@example.com"),
		FirstName: ptr("Alice"),
		LastName:  ptr("Smith"),
	}
}

func messageOf(t *testing.T, err error) string {
	t.Helper()
	var cErr *cerr.Error
	require.ErrorAs(t, err, &cErr)
	return cErr.Msg
}

func TestRegistry_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	created, err := reg.Create(ctx, aliceFields())
	require.NoError(t, err)
	assert.Equal(t, "alice", UserID(created.FirstName))
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt.Time))
	assert.Empty(t, created.Phone)
	assert.Empty(t, created.Company)
	assert.Empty(t, created.Role)
	assert.Empty(t, created.Bio)

	got, err := reg.Get(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, "Smith", got.LastName)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt.Time))
}

func TestRegistry_CreateConflict(t *testing.T) {
	ctx := context.Background()
	reg, rec := newTestRegistry(t)

	_, err := reg.Create(ctx, aliceFields())
	require.NoError(t, err)
	writes := rec.Writes()

	fields := aliceFields()
	fields.FirstName = ptr("ALICE")
	_, err = reg.Create(ctx, fields)
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.AlreadyExists))
	assert.Equal(t, "User profile already exists", messageOf(t, err))
	assert.Equal(t, writes, rec.Writes())
}

func TestRegistry_UpdateMergesSuppliedFields(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	created, err := reg.Create(ctx, aliceFields())
	require.NoError(t, err)

	updated, err := reg.Update(ctx, "alice", &Fields{Company: ptr("Acme")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Company)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, "Smith", updated.LastName)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt.Time))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt.Time))

	got, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Company)
}

func TestRegistry_UpdateKeepsKeyWhenFirstNameChanges(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	_, err := reg.Create(ctx, aliceFields())
	require.NoError(t, err)
	_, err = reg.Update(ctx, "alice", &Fields{FirstName: ptr("Alicia")})
	require.NoError(t, err)

	got, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", got.FirstName)
	_, err = reg.Get(ctx, "alicia")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestRegistry_InvalidUpdateLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	reg, rec := newTestRegistry(t)

	_, err := reg.Create(ctx, aliceFields())
	require.NoError(t, err)
	writes := rec.Writes()

	_, err = reg.Update(ctx, "alice", &Fields{Email: ptr("not-an-email"), Company: ptr("Acme")})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.InvalidArgument))
	assert.Equal(t, "Invalid email format", messageOf(t, err))
	assert.Equal(t, writes, rec.Writes())

	got, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Empty(t, got.Company)
}

func TestRegistry_UpdateUnknown(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	_, err := reg.Update(ctx, "ghost", &Fields{Bio: ptr("boo")})
	require.Error(t, err)
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
	var cErr *cerr.Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, ReasonProfileNotFound, cErr.Reason)
}

func TestRegistry_ListInCreationOrder(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	for _, name := range []string{"Zed", "Alice", "Mike"} {
		_, err := reg.Create(ctx, &Fields{
			Email:     ptr(name + "@example.com"),
			FirstName: ptr(name),
			LastName:  ptr("Doe"),
			Company:   ptr(name + " Inc"),
			Bio:       ptr("not in the summary"),
		})
		require.NoError(t, err)
	}

	summaries, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	var ids []string
	for _, s := range summaries {
		ids = append(ids, s.UserID)
	}
	assert.Equal(t, []string{"zed", "alice", "mike"}, ids)
	assert.Equal(t, "Alice Inc", summaries[1].Company)
	assert.Equal(t, "Alice@example.com", summaries[1].Email)
}

func TestRegistry_ListEmpty(t *testing.T) {
	reg, _ := newTestRegistry(t)

	summaries, err := reg.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestRegistry_Delete(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	_, err := reg.Create(ctx, aliceFields())
	require.NoError(t, err)
	require.NoError(t, reg.Delete(ctx, "Alice"))

	_, err = reg.Get(ctx, "alice")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	err = reg.Delete(ctx, "alice")
	assert.True(t, cerr.IsCode(err, cerr.NotFound))
}

func TestRegistry_StorageFailure(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(NewRepository(&storagetest.Failing{ReadErr: errors.New("timeout")}, "user_profiles.json"))

	_, err := reg.List(ctx)
	assert.True(t, cerr.IsCode(err, cerr.Internal))
	_, err = reg.Create(ctx, aliceFields())
	assert.True(t, cerr.IsCode(err, cerr.Internal))
}

func TestRegistry_CreateValidatesBeforeReading(t *testing.T) {
	ctx := context.Background()
	reg, rec := newTestRegistry(t)

	_, err := reg.Create(ctx, &Fields{FirstName: ptr("Alice")})
	require.Error(t, err)
	assert.Equal(t, "email is required", messageOf(t, err))
	assert.Equal(t, 0, rec.Reads())
}

// Two requests that open the document before either saves: the second save
// replaces the first one's change.
func TestRegistry_ConcurrentWritesLastWriterWins(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewRepository(local, "user_profiles.json")
	reg := NewRegistry(repo)

	_, err = reg.Create(ctx, aliceFields())
	require.NoError(t, err)

	first, _, err := repo.Open(ctx)
	require.NoError(t, err)
	second, _, err := repo.Open(ctx)
	require.NoError(t, err)

	p, _ := first.Profiles.Get("alice")
	p.Bio = "from first"
	require.NoError(t, first.Profiles.Update("alice", p))
	p, _ = second.Profiles.Get("alice")
	p.Phone = "555-0100"
	require.NoError(t, second.Profiles.Update("alice", p))

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	got, err := reg.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Empty(t, got.Bio, "the earlier save is lost")
}
