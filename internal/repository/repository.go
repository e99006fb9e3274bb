// Package repository is the base connection to one repository on the store:
// path resolution, transaction calls and Prolog query execution.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/roach88/agraph/internal/ir"
	"github.com/roach88/agraph/internal/transport"
)

// Repository is a connection rooted at one repository (or session) URL.
type Repository struct {
	exec transport.Executor
	base string
	ns   ir.Namespaces
}

// New creates a connection rooted at base, which is either an absolute URL
// or a path relative to the executor's server.
func New(exec transport.Executor, base string, ns ir.Namespaces) *Repository {
	return &Repository{
		exec: exec,
		base: strings.TrimRight(base, "/"),
		ns:   ns,
	}
}

// ForCatalog creates a connection to repository name in catalog.
// An empty catalog addresses the root catalog.
func ForCatalog(exec transport.Executor, catalog, name string, ns ir.Namespaces) *Repository {
	base := "repositories/" + url.PathEscape(name)
	if catalog != "" && catalog != "/" {
		base = "catalogs/" + url.PathEscape(catalog) + "/" + base
	}
	return New(exec, base, ns)
}

// Path resolves rel against the repository URL.
func (r *Repository) Path(rel string) string {
	rel = strings.TrimLeft(rel, "/")
	if rel == "" {
		return r.base
	}
	return r.base + "/" + rel
}

// Executor returns the executor the connection sends requests with.
func (r *Repository) Executor() transport.Executor {
	return r.exec
}

// Namespaces returns the prefixes used to abbreviate resources in queries.
func (r *Repository) Namespaces() ir.Namespaces {
	return r.ns
}

// Commit commits the current transaction.
func (r *Repository) Commit(ctx context.Context) error {
	if _, err := r.exec.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   r.Path("commit"),
		Expect: http.StatusNoContent,
	}); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback discards the current transaction.
func (r *Repository) Rollback(ctx context.Context) error {
	if _, err := r.exec.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   r.Path("rollback"),
		Expect: http.StatusNoContent,
	}); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// RunProlog executes a Prolog select query.
func (r *Repository) RunProlog(ctx context.Context, query string) ([]ir.Solution, error) {
	resp, err := r.exec.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   r.Path(""),
		Params: url.Values{
			"query":   {query},
			"queryLn": {"prolog"},
		},
		Accept: "application/json",
		Expect: http.StatusOK,
	})
	if err != nil {
		return nil, fmt.Errorf("prolog query: %w", err)
	}
	return DecodeSolutions(resp.Body)
}

// selectResult is the store's JSON encoding of select results.
type selectResult struct {
	Names  []string    `json:"names"`
	Values [][]*string `json:"values"`
}

// DecodeSolutions decodes a {"names": [...], "values": [[...]]} document.
// Each value is an N-Triples term; null values are left unbound.
func DecodeSolutions(data []byte) ([]ir.Solution, error) {
	var res selectResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode solutions: %w", err)
	}

	solutions := make([]ir.Solution, 0, len(res.Values))
	for i, row := range res.Values {
		if len(row) != len(res.Names) {
			return nil, fmt.Errorf("decode solutions: row %d has %d values for %d names", i, len(row), len(res.Names))
		}
		sol := make(ir.Solution, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			term, err := ir.ParseTerm(*cell, nil)
			if err != nil {
				return nil, fmt.Errorf("decode solutions: row %d %s: %w", i, res.Names[j], err)
			}
			sol[ir.V(res.Names[j]).Name()] = term
		}
		solutions = append(solutions, sol)
	}
	return solutions, nil
}
