package browse

import (
	"context"

	"github.com/qyinm/offtui/types"
)

// RequestKind selects the catalog endpoint.
type RequestKind int

const (
	KindSearch RequestKind = iota
	KindCategory
)

func (k RequestKind) String() string {
	if k == KindCategory {
		return "category"
	}
	return "search"
}

// Request is the catalog call a snapshot is waiting on.
type Request struct {
	Generation uint64
	Kind       RequestKind
	Term       string
	Category   string
	Page       int
}

func (s State) request(opts Options) Request {
	q := s.Query
	req := Request{Generation: s.Generation, Page: s.page()}
	if q.Category != "" && opts.Precedence == PrecedenceCategory {
		req.Kind = KindCategory
		req.Category = q.Category
		return req
	}
	req.Kind = KindSearch
	req.Term = q.SearchTerm
	if opts.Precedence == PrecedenceCombined {
		req.Category = q.Category
	}
	return req
}

// Result is the outcome of a Request, tagged with its generation.
type Result struct {
	Generation uint64
	Page       types.ProductPage
	Err        error
}

// Fetch performs a request with a single attempt.
func Fetch(ctx context.Context, src types.ProductSource, req Request) Result {
	var (
		page types.ProductPage
		err  error
	)
	switch req.Kind {
	case KindCategory:
		page, err = src.CategoryProducts(ctx, req.Category, req.Page)
	default:
		page, err = src.SearchProducts(ctx, types.SearchQuery{
			Term:     req.Term,
			Category: req.Category,
			Page:     req.Page,
		})
	}
	return Result{Generation: req.Generation, Page: page, Err: err}
}

// Resolve applies a result to the snapshot. Results from an older
// generation are ignored and reported as not applied. A failed result
// clears the loading flag but keeps the previous products and page count.
func (s State) Resolve(res Result, opts Options) (State, bool) {
	if res.Generation != s.Generation {
		return s, false
	}
	s.Loading = false
	if res.Err != nil {
		s.Err = res.Err
		return s, true
	}
	s.Err = nil
	products := res.Page.Products
	if products == nil {
		products = []types.Product{}
	}
	s.Products = products
	s.TotalPages = TotalPages(res.Page.Count, opts.pageSize())
	return s, true
}

// Load reduces an intent and, if that issues a request, fetches and
// resolves it before returning. For request/response callers that hold
// the snapshot for the duration of one call.
func Load(ctx context.Context, src types.ProductSource, s State, in Intent, opts Options) State {
	next, req := Reduce(s, in, opts)
	if req == nil {
		return next
	}
	next, _ = next.Resolve(Fetch(ctx, src, *req), opts)
	return next
}

// LoadInRange refreshes s and, when the requested page turns out to lie
// past the last page, moves to the last page and loads that instead.
// The returned page is always within [1, TotalPages] unless a load failed.
func LoadInRange(ctx context.Context, src types.ProductSource, s State, opts Options) State {
	s = Load(ctx, src, s, Refresh{}, opts)
	if s.Err == nil && s.page() > s.totalPages() {
		s = Load(ctx, src, s, GoToPage{Page: s.totalPages()}, opts)
	}
	return s
}
