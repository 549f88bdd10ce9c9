package domain

import (
	"net/url"
	"sort"
)

// Entrypoint is a named group of taxonomy document locations. Entrypoints
// are read-only: they are reconstructed fresh on every query and have no
// identity beyond (Name, DocURIs) equality. An entrypoint loaded from the
// store always has at least one document URI.
type Entrypoint struct {
	Name    string
	DocURIs URISet
}

// URISet is an unordered, deduplicated set of parsed URIs, keyed by the
// URI's string form.
type URISet map[string]*url.URL

// NewURISet builds a set from the given URIs, collapsing duplicates.
func NewURISet(uris ...*url.URL) URISet {
	s := make(URISet, len(uris))
	for _, u := range uris {
		s.Add(u)
	}
	return s
}

// ParseURISet parses each raw string and collects the results into a set.
func ParseURISet(raws ...string) (URISet, error) {
	s := make(URISet, len(raws))
	for _, raw := range raws {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		s.Add(u)
	}
	return s, nil
}

// Add inserts a URI into the set. Adding an already-present URI is a no-op.
func (s URISet) Add(u *url.URL) {
	s[u.String()] = u
}

// Contains reports whether the set holds the given URI.
func (s URISet) Contains(u *url.URL) bool {
	_, ok := s[u.String()]
	return ok
}

// Len returns the number of distinct URIs in the set.
func (s URISet) Len() int {
	return len(s)
}

// Equal reports whether both sets hold exactly the same URIs, regardless
// of insertion order. A partial overlap is not equality.
func (s URISet) Equal(other URISet) bool {
	if len(s) != len(other) {
		return false
	}
	for key := range s {
		if _, ok := other[key]; !ok {
			return false
		}
	}
	return true
}

// Strings returns the URIs in sorted string form, for logging and display.
func (s URISet) Strings() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
