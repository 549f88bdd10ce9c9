package postgres

import (
	"context"

	"github.com/dvreeze/tqa-db/internal/domain"
)

// docURIFetcher is the flat-row source the repository groups over.
// Production uses docURIQueries; tests substitute canned rows.
type docURIFetcher interface {
	fetchAll(ctx context.Context, q Querier) ([]docURIRow, error)
	fetchByName(ctx context.Context, q Querier, name string) ([]docURIRow, error)
}

// EntrypointRepo exposes the domain-level read operations over the
// entrypoint store. Every operation runs through the injected TxRunner;
// absent results are reported via the bool return, never as an error.
type EntrypointRepo struct {
	runner  TxRunner
	queries docURIFetcher
}

func NewEntrypointRepo(runner TxRunner) *EntrypointRepo {
	return &EntrypointRepo{runner: runner, queries: docURIQueries{}}
}

// FindAll returns one Entrypoint per distinct name in the store, each
// carrying the deduplicated set of its document URIs. Return order is
// unspecified; callers must not depend on it.
func (r *EntrypointRepo) FindAll(ctx context.Context) ([]domain.Entrypoint, error) {
	var result []domain.Entrypoint

	err := r.runner.RunRead(ctx, func(ctx context.Context, q Querier) error {
		rows, err := r.queries.fetchAll(ctx, q)
		if err != nil {
			return err
		}
		result = groupByName(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindByName returns the entrypoint with the given name, or ok=false if
// no such entrypoint exists. Equivalent to filtering FindAll by name, but
// executes a narrower query.
func (r *EntrypointRepo) FindByName(ctx context.Context, name string) (ep *domain.Entrypoint, ok bool, err error) {
	err = r.runner.RunRead(ctx, func(ctx context.Context, q Querier) error {
		rows, innerErr := r.queries.fetchByName(ctx, q, name)
		if innerErr != nil {
			return innerErr
		}

		// The filter pins the name, so grouping yields at most one entry.
		if grouped := groupByName(rows); len(grouped) > 0 {
			ep = &grouped[0]
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ep, ep != nil, nil
}

// FindByDocURIs returns the entrypoint whose document URI set is exactly
// equal to docURIs, or ok=false if none matches. Partial overlaps never
// match. Names are unique, so at most one entrypoint can match.
//
// This is a deliberate linear scan over the full entrypoint set; no
// URI-indexed lookup is attempted.
func (r *EntrypointRepo) FindByDocURIs(ctx context.Context, docURIs domain.URISet) (ep *domain.Entrypoint, ok bool, err error) {
	err = r.runner.RunRead(ctx, func(ctx context.Context, q Querier) error {
		rows, innerErr := r.queries.fetchAll(ctx, q)
		if innerErr != nil {
			return innerErr
		}

		for _, candidate := range groupByName(rows) {
			if candidate.DocURIs.Equal(docURIs) {
				ep = &candidate
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return ep, ep != nil, nil
}

// groupByName folds flat join rows into one Entrypoint per distinct name.
// Duplicate (name, docuri) pairs collapse under set semantics.
func groupByName(rows []docURIRow) []domain.Entrypoint {
	groups := make(map[string]domain.URISet)
	for _, row := range rows {
		set, ok := groups[row.Name]
		if !ok {
			set = domain.NewURISet()
			groups[row.Name] = set
		}
		set.Add(row.DocURI)
	}

	result := make([]domain.Entrypoint, 0, len(groups))
	for name, docURIs := range groups {
		result = append(result, domain.Entrypoint{Name: name, DocURIs: docURIs})
	}
	return result
}
