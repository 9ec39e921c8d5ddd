// Package browse holds the list state for the product explorer: the
// current query, sort order and page, and the rules for turning user
// intents into catalog requests.
//
// State values are snapshots. Reduce never mutates its input; it returns
// the next snapshot and, when the query changed, the single Request that
// snapshot is waiting on. Results are matched back to snapshots by
// generation, so a slow response for an old query is dropped.
package browse

import (
	"fmt"
	"strings"

	"github.com/qyinm/offtui/types"
)

// PageSize is the number of products the catalog returns per page.
const PageSize = 20

// Precedence decides how a selected category and a search term combine.
type Precedence int

const (
	// PrecedenceCategory lists the selected category and ignores the term.
	PrecedenceCategory Precedence = iota
	// PrecedenceCombined searches the term inside the selected category.
	PrecedenceCombined
)

func (p Precedence) String() string {
	switch p {
	case PrecedenceCategory:
		return "category"
	case PrecedenceCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// ParsePrecedence accepts "category" (or "") and "combined".
func ParsePrecedence(raw string) (Precedence, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "category":
		return PrecedenceCategory, nil
	case "combined":
		return PrecedenceCombined, nil
	default:
		return PrecedenceCategory, fmt.Errorf("invalid precedence %q; expected category|combined", raw)
	}
}

// Options tunes Reduce and Resolve.
type Options struct {
	Precedence Precedence
	// ResetPageOnQueryChange sends the user back to page 1 when the
	// search term or category changes.
	ResetPageOnQueryChange bool
	PageSize               int
}

// DefaultOptions returns category precedence with page reset enabled.
func DefaultOptions() Options {
	return Options{
		Precedence:             PrecedenceCategory,
		ResetPageOnQueryChange: true,
		PageSize:               PageSize,
	}
}

func (o Options) pageSize() int {
	if o.PageSize <= 0 {
		return PageSize
	}
	return o.PageSize
}

// Query is the part of the state that determines which request is live.
type Query struct {
	SearchTerm string
	Category   string
	Page       int
}

// State is one immutable snapshot of the list screen.
type State struct {
	Query      Query
	Sort       SortSpec
	Generation uint64
	TotalPages int
	Products   []types.Product
	Loading    bool
	// Err is the failure of the last resolved request, if any.
	Err error
}

// NewState returns the initial snapshot: empty term, no category,
// page 1, unsorted.
func NewState() State {
	return State{
		Query:      Query{Page: 1},
		Sort:       SortSpec{Key: SortNone, Dir: Asc},
		TotalPages: 1,
	}
}

// PageInfo is the pager position derived from a snapshot.
type PageInfo struct {
	Current int
	Total   int
}

// TotalPages returns ceil(count/pageSize), never less than 1.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

func (s State) totalPages() int {
	if s.TotalPages < 1 {
		return 1
	}
	return s.TotalPages
}

func (s State) page() int {
	if s.Query.Page < 1 {
		return 1
	}
	return s.Query.Page
}
