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

func TestMonitorRepoPutThenGet(t *testing.T) {
	dir := repotest.New()
	repo := NewMonitorRepo(dir, cache.New(10, time.Minute))

	m, err := model.NewMonitorFromPublic(model.MonitorInput{Name: "system", Contacts: []string{"ops"}, User: testUser})
	require.NoError(t, err)
	require.NoError(t, repo.Put(t.Context(), m))

	got, err := repo.Get(t.Context(), testUser, "system")
	require.NoError(t, err)
	assert.Equal(t, []string{"ops"}, got.Contacts)
}

func TestMonitorRepoExistsReportsFalseWithoutError(t *testing.T) {
	dir := repotest.New()
	repo := NewMonitorRepo(dir, cache.New(10, time.Minute))

	ok, err := repo.Exists(t.Context(), testUser, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMonitorRepoExistsReportsTrueAfterPut(t *testing.T) {
	dir := repotest.New()
	repo := NewMonitorRepo(dir, cache.New(10, time.Minute))

	m, err := model.NewMonitorFromPublic(model.MonitorInput{Name: "system", User: testUser})
	require.NoError(t, err)
	require.NoError(t, repo.Put(t.Context(), m))

	ok, err := repo.Exists(t.Context(), testUser, "system")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMonitorRepoHasProbesFalseWhenNoneNested(t *testing.T) {
	dir := repotest.New()
	repo := NewMonitorRepo(dir, cache.New(10, time.Minute))

	has, err := repo.HasProbes(t.Context(), testUser, "system")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMonitorRepoHasProbesTrueAfterProbePut(t *testing.T) {
	dir := repotest.New()
	cacheStore := cache.New(10, time.Minute)
	monitorRepo := NewMonitorRepo(dir, cacheStore)
	probeRepo := NewProbeRepo(dir, cacheStore, fakeProbeRegistry{"machineup": fakeProbePlugin{}})

	m, err := model.NewMonitorFromPublic(model.MonitorInput{Name: "system", User: testUser})
	require.NoError(t, err)
	require.NoError(t, monitorRepo.Put(t.Context(), m))

	p, err := model.NewProbeFromPublic(model.ProbeInput{
		Name: "cpu", User: testUser, Monitor: "system", Type: "machineup", Machine: testUser,
	}, fakeProbeRegistry{"machineup": fakeProbePlugin{}})
	require.NoError(t, err)
	require.NoError(t, probeRepo.Put(t.Context(), p))

	has, err := monitorRepo.HasProbes(t.Context(), testUser, "system")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestMonitorRepoDeleteThenGetMisses(t *testing.T) {
	dir := repotest.New()
	repo := NewMonitorRepo(dir, cache.New(10, time.Minute))

	m, err := model.NewMonitorFromPublic(model.MonitorInput{Name: "system", User: testUser})
	require.NoError(t, err)
	require.NoError(t, repo.Put(t.Context(), m))
	require.NoError(t, repo.Delete(t.Context(), testUser, "system"))

	_, err = repo.Get(t.Context(), testUser, "system")
	require.Error(t, err)
	assert.Equal(t, amonerr.ResourceNotFound, amonerr.KindOf(err))
}
