package browse

import (
	"net/url"
	"strconv"
	"strings"
)

// Values encodes the query and sort of a snapshot as URL parameters.
// Defaults are omitted.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Query.SearchTerm != "" {
		v.Set("q", s.Query.SearchTerm)
	}
	if s.Query.Category != "" {
		v.Set("category", s.Query.Category)
	}
	if s.Sort.Key != SortNone {
		v.Set("sort", s.Sort.Key.String())
		v.Set("dir", s.Sort.Dir.String())
	}
	if p := s.page(); p > 1 {
		v.Set("page", strconv.Itoa(p))
	}
	return v
}

// StateFromValues rebuilds a snapshot from URL parameters. Unknown or
// malformed values fall back to defaults. Page count, products and
// generation are not part of the encoding.
func StateFromValues(v url.Values) State {
	s := NewState()
	s.Query.SearchTerm = strings.TrimSpace(v.Get("q"))
	s.Query.Category = strings.TrimSpace(v.Get("category"))
	if key, err := ParseSortKey(v.Get("sort")); err == nil {
		s.Sort.Key = key
	}
	if dir, err := ParseDirection(v.Get("dir")); err == nil {
		s.Sort.Dir = dir
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 1 {
		s.Query.Page = p
	}
	return s
}
