package browse

// Intent is a user action on the list screen.
type Intent interface {
	// apply returns the next snapshot and whether the live query changed.
	apply(s State, opts Options) (State, bool)
}

// SetSearchTerm replaces the search term.
type SetSearchTerm struct{ Term string }

// SelectCategory replaces the selected category; "" clears it.
type SelectCategory struct{ ID string }

// ToggleSort flips direction on the current key or switches to a new
// key in ascending order. It never refetches.
type ToggleSort struct{ Key SortKey }

// NextPage moves forward one page unless already on the last one.
type NextPage struct{}

// PreviousPage moves back one page unless already on the first one.
type PreviousPage struct{}

// GoToPage jumps to a page, clamped to the known page range.
type GoToPage struct{ Page int }

// Refresh re-issues the current query.
type Refresh struct{}

func (i SetSearchTerm) apply(s State, opts Options) (State, bool) {
	if s.Query.SearchTerm == i.Term {
		return s, false
	}
	s.Query.SearchTerm = i.Term
	if opts.ResetPageOnQueryChange {
		s.Query.Page = 1
	}
	return s, true
}

func (i SelectCategory) apply(s State, opts Options) (State, bool) {
	if s.Query.Category == i.ID {
		return s, false
	}
	s.Query.Category = i.ID
	if opts.ResetPageOnQueryChange {
		s.Query.Page = 1
	}
	return s, true
}

func (i ToggleSort) apply(s State, _ Options) (State, bool) {
	s.Sort = s.Sort.Toggle(i.Key)
	return s, false
}

func (NextPage) apply(s State, _ Options) (State, bool) {
	if s.page() >= s.totalPages() {
		return s, false
	}
	s.Query.Page = s.page() + 1
	return s, true
}

func (PreviousPage) apply(s State, _ Options) (State, bool) {
	if s.page() <= 1 {
		return s, false
	}
	s.Query.Page = s.page() - 1
	return s, true
}

func (i GoToPage) apply(s State, _ Options) (State, bool) {
	p := min(max(i.Page, 1), s.totalPages())
	if p == s.Query.Page {
		return s, false
	}
	s.Query.Page = p
	return s, true
}

func (Refresh) apply(s State, _ Options) (State, bool) {
	s.Query.Page = s.page()
	return s, true
}

// Reduce applies an intent to a snapshot. When the live query changed it
// starts a new generation, marks the snapshot loading and returns the one
// request that generation waits on; otherwise the request is nil.
func Reduce(s State, in Intent, opts Options) (State, *Request) {
	next, changed := in.apply(s, opts)
	if !changed {
		return next, nil
	}
	next.Generation++
	next.Loading = true
	req := next.request(opts)
	return next, &req
}
