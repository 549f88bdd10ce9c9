package postgres

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvreeze/tqa-db/internal/domain"
)

// passthroughRunner executes the read closure directly and counts
// invocations, standing in for a transaction bracket.
type passthroughRunner struct {
	calls int
}

func (r *passthroughRunner) RunRead(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	r.calls++
	return fn(ctx, nil)
}

// failingRunner refuses every read, as a runner does when it cannot begin
// a transaction.
type failingRunner struct {
	err error
}

func (r *failingRunner) RunRead(context.Context, func(ctx context.Context, q Querier) error) error {
	return r.err
}

// cannedFetcher serves fixed rows or errors instead of querying a store.
type cannedFetcher struct {
	all    []docURIRow
	allErr error
	byName map[string][]docURIRow
}

func (f *cannedFetcher) fetchAll(context.Context, Querier) ([]docURIRow, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.all, nil
}

func (f *cannedFetcher) fetchByName(_ context.Context, _ Querier, name string) ([]docURIRow, error) {
	return f.byName[name], nil
}

func newTestRepo(f docURIFetcher) (*EntrypointRepo, *passthroughRunner) {
	runner := &passthroughRunner{}
	return &EntrypointRepo{runner: runner, queries: f}, runner
}

func row(t *testing.T, name, rawURI string) docURIRow {
	t.Helper()
	u, err := url.Parse(rawURI)
	require.NoError(t, err)
	return docURIRow{Name: name, DocURI: u}
}

func mustURISet(t *testing.T, raws ...string) domain.URISet {
	t.Helper()
	set, err := domain.ParseURISet(raws...)
	require.NoError(t, err)
	return set
}

func byName(entrypoints []domain.Entrypoint) map[string]domain.Entrypoint {
	result := make(map[string]domain.Entrypoint, len(entrypoints))
	for _, ep := range entrypoints {
		result[ep.Name] = ep
	}
	return result
}

func scenarioRows(t *testing.T) []docURIRow {
	t.Helper()
	return []docURIRow{
		row(t, "acme", "http://a/1"),
		row(t, "acme", "http://a/2"),
		row(t, "other", "http://b/1"),
	}
}

func TestFindAll_GroupsRowsByName(t *testing.T) {
	repo, runner := newTestRepo(&cannedFetcher{all: scenarioRows(t)})

	entrypoints, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, entrypoints, 2)
	assert.Equal(t, 1, runner.calls)

	grouped := byName(entrypoints)
	assert.True(t, grouped["acme"].DocURIs.Equal(mustURISet(t, "http://a/1", "http://a/2")))
	assert.True(t, grouped["other"].DocURIs.Equal(mustURISet(t, "http://b/1")))
}

func TestFindAll_CollapsesDuplicatePairs(t *testing.T) {
	repo, _ := newTestRepo(&cannedFetcher{all: []docURIRow{
		row(t, "acme", "http://a/1"),
		row(t, "acme", "http://a/1"),
	}})

	entrypoints, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, entrypoints, 1)
	assert.Equal(t, 1, entrypoints[0].DocURIs.Len())
}

func TestFindAll_EmptyStore(t *testing.T) {
	repo, _ := newTestRepo(&cannedFetcher{})

	entrypoints, err := repo.FindAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, entrypoints)
}

func TestFindAll_PropagatesStoreAccessError(t *testing.T) {
	cause := errors.New("connection refused")
	repo, _ := newTestRepo(&cannedFetcher{
		allErr: &domain.StoreAccessError{Op: "query entrypoint doc URIs", Err: cause},
	})

	entrypoints, err := repo.FindAll(context.Background())

	require.Error(t, err)
	assert.Nil(t, entrypoints)
	var accessErr *domain.StoreAccessError
	assert.ErrorAs(t, err, &accessErr)
	assert.ErrorIs(t, err, cause)
}

func TestFindAll_PropagatesMalformedDataError(t *testing.T) {
	repo, _ := newTestRepo(&cannedFetcher{
		allErr: &domain.MalformedDataError{Name: "acme", RawURI: "http://a/%zz"},
	})

	entrypoints, err := repo.FindAll(context.Background())

	require.Error(t, err)
	// No partial result alongside the failure.
	assert.Nil(t, entrypoints)
	var malformed *domain.MalformedDataError
	assert.ErrorAs(t, err, &malformed)
}

func TestFindAll_PropagatesRunnerError(t *testing.T) {
	runnerErr := &domain.StoreAccessError{Op: "begin read-only transaction", Err: errors.New("pool exhausted")}
	repo := &EntrypointRepo{runner: &failingRunner{err: runnerErr}, queries: &cannedFetcher{}}

	entrypoints, err := repo.FindAll(context.Background())

	require.Error(t, err)
	assert.Nil(t, entrypoints)
	assert.ErrorIs(t, err, runnerErr)
}

func TestFindByName_Found(t *testing.T) {
	repo, runner := newTestRepo(&cannedFetcher{byName: map[string][]docURIRow{
		"acme": {row(t, "acme", "http://a/1"), row(t, "acme", "http://a/2")},
	}})

	ep, ok, err := repo.FindByName(context.Background(), "acme")

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "acme", ep.Name)
	assert.True(t, ep.DocURIs.Equal(mustURISet(t, "http://a/1", "http://a/2")))
	assert.Equal(t, 1, runner.calls)
}

func TestFindByName_NotFound(t *testing.T) {
	repo, _ := newTestRepo(&cannedFetcher{})

	ep, ok, err := repo.FindByName(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ep)
}

func TestFindByName_MatchesFilteredFindAll(t *testing.T) {
	rows := scenarioRows(t)
	repo, _ := newTestRepo(&cannedFetcher{
		all: rows,
		byName: map[string][]docURIRow{
			"acme":  rows[:2],
			"other": rows[2:],
		},
	})
	ctx := context.Background()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	grouped := byName(all)

	for _, name := range []string{"acme", "other"} {
		ep, ok, err := repo.FindByName(ctx, name)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, grouped[name].Name, ep.Name)
		assert.True(t, grouped[name].DocURIs.Equal(ep.DocURIs))
	}
}

func TestFindByDocURIs_ExactMatch(t *testing.T) {
	repo, runner := newTestRepo(&cannedFetcher{all: scenarioRows(t)})

	ep, ok, err := repo.FindByDocURIs(context.Background(), mustURISet(t, "http://a/2", "http://a/1"))

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "acme", ep.Name)
	assert.Equal(t, 1, runner.calls)
}

func TestFindByDocURIs_NoPartialMatch(t *testing.T) {
	repo, _ := newTestRepo(&cannedFetcher{all: scenarioRows(t)})
	ctx := context.Background()

	for name, set := range map[string]domain.URISet{
		"subset":   mustURISet(t, "http://a/1"),
		"superset": mustURISet(t, "http://a/1", "http://a/2", "http://a/3"),
		"disjoint": mustURISet(t, "http://c/1"),
		"empty":    mustURISet(t),
	} {
		t.Run(name, func(t *testing.T) {
			ep, ok, err := repo.FindByDocURIs(ctx, set)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, ep)
		})
	}
}

func TestFindByDocURIs_PropagatesStoreAccessError(t *testing.T) {
	repo, _ := newTestRepo(&cannedFetcher{
		allErr: &domain.StoreAccessError{Op: "query entrypoint doc URIs", Err: errors.New("timeout")},
	})

	ep, ok, err := repo.FindByDocURIs(context.Background(), mustURISet(t, "http://a/1"))

	require.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, ep)
}
