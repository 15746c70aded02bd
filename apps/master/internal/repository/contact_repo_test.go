package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/amon/apps/master/internal/repository/repotest"
	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/cache"
	"github.com/arc-self/amon/packages/amon-core/model"
)

const testUser = "550e8400-e29b-41d4-a716-446655440000"

func TestContactRepoPutThenGet(t *testing.T) {
	dir := repotest.New()
	repo := NewContactRepo(dir, cache.New(10, time.Minute))

	c, err := model.NewContactFromPublic(model.ContactInput{Name: "ops", Medium: "email", Data: "ops@example.com", User: testUser})
	require.NoError(t, err)

	require.NoError(t, repo.Put(t.Context(), c))

	got, err := repo.Get(t.Context(), testUser, "ops")
	require.NoError(t, err)
	assert.Equal(t, "email", got.Medium)
	assert.Equal(t, "ops@example.com", got.Data)
}

func TestContactRepoGetMissingIsNotFound(t *testing.T) {
	dir := repotest.New()
	repo := NewContactRepo(dir, cache.New(10, time.Minute))

	_, err := repo.Get(t.Context(), testUser, "nope")
	require.Error(t, err)
	assert.Equal(t, amonerr.ResourceNotFound, amonerr.KindOf(err))
}

func TestContactRepoPutIsIdempotent(t *testing.T) {
	dir := repotest.New()
	repo := NewContactRepo(dir, cache.New(10, time.Minute))

	c, err := model.NewContactFromPublic(model.ContactInput{Name: "ops", Medium: "email", Data: "a@example.com", User: testUser})
	require.NoError(t, err)
	require.NoError(t, repo.Put(t.Context(), c))

	c.Data = "b@example.com"
	require.NoError(t, repo.Put(t.Context(), c), "Put must upsert via add-then-modify, not fail on an existing DN")

	got, err := repo.Get(t.Context(), testUser, "ops")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", got.Data)
}

func TestContactRepoDeleteThenGetMisses(t *testing.T) {
	// Property P4: a GET that follows a successful DELETE must observe a
	// miss, never a stale cached hit.
	dir := repotest.New()
	repo := NewContactRepo(dir, cache.New(10, time.Minute))

	c, err := model.NewContactFromPublic(model.ContactInput{Name: "ops", Medium: "email", Data: "a@example.com", User: testUser})
	require.NoError(t, err)
	require.NoError(t, repo.Put(t.Context(), c))

	_, err = repo.Get(t.Context(), testUser, "ops")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(t.Context(), testUser, "ops"))

	_, err = repo.Get(t.Context(), testUser, "ops")
	require.Error(t, err)
	assert.Equal(t, amonerr.ResourceNotFound, amonerr.KindOf(err))
}

func TestContactRepoListReturnsAllForUser(t *testing.T) {
	dir := repotest.New()
	repo := NewContactRepo(dir, cache.New(10, time.Minute))

	for _, name := range []string{"ops", "oncall"} {
		c, err := model.NewContactFromPublic(model.ContactInput{Name: name, Medium: "email", Data: name + "@example.com", User: testUser})
		require.NoError(t, err)
		require.NoError(t, repo.Put(t.Context(), c))
	}

	list, err := repo.List(t.Context(), testUser)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestContactRepoListInvalidatedAfterPut(t *testing.T) {
	dir := repotest.New()
	repo := NewContactRepo(dir, cache.New(10, time.Minute))

	list, err := repo.List(t.Context(), testUser)
	require.NoError(t, err)
	assert.Empty(t, list)

	c, err := model.NewContactFromPublic(model.ContactInput{Name: "ops", Medium: "email", Data: "a@example.com", User: testUser})
	require.NoError(t, err)
	require.NoError(t, repo.Put(t.Context(), c))

	list, err = repo.List(t.Context(), testUser)
	require.NoError(t, err)
	assert.Len(t, list, 1, "a cached empty List result must not survive a subsequent Put")
}
