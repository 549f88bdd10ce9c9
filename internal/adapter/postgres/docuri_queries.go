package postgres

import (
	"context"
	"net/url"

	"github.com/jackc/pgx/v5"

	"github.com/dvreeze/tqa-db/internal/domain"
)

const selectAllDocURIs = `
	SELECT e.name, d.docuri
	FROM entrypoints e
	JOIN entrypoint_doc_uris d ON e.name = d.entrypoint_name`

const selectDocURIsByName = selectAllDocURIs + `
	WHERE e.name = $1`

// docURIRow is one joined (name, docuri) pair as returned by the store,
// before grouping. It never leaves this package.
type docURIRow struct {
	Name   string
	DocURI *url.URL
}

// docURIQueries executes the join queries and maps rows to docURIRow
// values. Stateless; owns no transaction semantics.
type docURIQueries struct{}

func (docURIQueries) fetchAll(ctx context.Context, q Querier) ([]docURIRow, error) {
	rows, err := q.Query(ctx, selectAllDocURIs)
	if err != nil {
		return nil, &domain.StoreAccessError{Op: "query entrypoint doc URIs", Err: err}
	}
	defer rows.Close()

	return collectDocURIRows(rows)
}

func (docURIQueries) fetchByName(ctx context.Context, q Querier, name string) ([]docURIRow, error) {
	rows, err := q.Query(ctx, selectDocURIsByName, name)
	if err != nil {
		return nil, &domain.StoreAccessError{Op: "query entrypoint doc URIs by name", Err: err}
	}
	defer rows.Close()

	return collectDocURIRows(rows)
}

func collectDocURIRows(rows pgx.Rows) ([]docURIRow, error) {
	var result []docURIRow
	for rows.Next() {
		var name, rawURI string
		if err := rows.Scan(&name, &rawURI); err != nil {
			return nil, &domain.StoreAccessError{Op: "scan entrypoint doc URI row", Err: err}
		}

		row, err := parseDocURIRow(name, rawURI)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreAccessError{Op: "read entrypoint doc URI rows", Err: err}
	}
	return result, nil
}

func parseDocURIRow(name, rawURI string) (docURIRow, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return docURIRow{}, &domain.MalformedDataError{Name: name, RawURI: rawURI, Err: err}
	}
	return docURIRow{Name: name, DocURI: u}, nil
}
