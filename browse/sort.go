package browse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/qyinm/offtui/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey is the client-side sort field.
type SortKey int

const (
	SortNone SortKey = iota
	SortName
	SortGrade
)

func (k SortKey) String() string {
	switch k {
	case SortName:
		return "name"
	case SortGrade:
		return "grade"
	default:
		return "none"
	}
}

// ParseSortKey accepts the short names and the catalog field names.
func ParseSortKey(raw string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return SortNone, nil
	case "name", "product_name":
		return SortName, nil
	case "grade", "nutrition_grade", "nutrition_grades":
		return SortGrade, nil
	default:
		return SortNone, fmt.Errorf("invalid sort key %q; expected none|name|grade", raw)
	}
}

// Direction is the sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// ParseDirection accepts "asc" (or "") and "desc".
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("invalid direction %q; expected asc|desc", raw)
	}
}

// SortSpec is a key and a direction.
type SortSpec struct {
	Key SortKey
	Dir Direction
}

// Toggle flips the direction when key is already selected, otherwise
// selects key in ascending order.
func (s SortSpec) Toggle(key SortKey) SortSpec {
	if s.Key == key {
		if s.Dir == Asc {
			s.Dir = Desc
		} else {
			s.Dir = Asc
		}
		return s
	}
	return SortSpec{Key: key, Dir: Asc}
}

// Arrow returns the direction marker for key, or "" if key is not the
// active sort.
func (s SortSpec) Arrow(key SortKey) string {
	if s.Key != key || key == SortNone {
		return ""
	}
	if s.Dir == Desc {
		return "↓"
	}
	return "↑"
}

// SortProducts returns a sorted copy. Name compares with English
// collation, grade compares the raw grade strings so a missing grade
// sorts first in ascending order. SortNone keeps the server order.
// The sort is stable.
func SortProducts(products []types.Product, spec SortSpec) []types.Product {
	out := slices.Clone(products)
	if spec.Key == SortNone || len(out) < 2 {
		return out
	}

	var cmp func(a, b types.Product) int
	switch spec.Key {
	case SortName:
		// Collators keep scratch buffers; one per sort.
		c := collate.New(language.English)
		cmp = func(a, b types.Product) int {
			return c.CompareString(a.Name(), b.Name())
		}
	case SortGrade:
		cmp = func(a, b types.Product) int {
			return strings.Compare(a.Grade(), b.Grade())
		}
	default:
		return out
	}

	if spec.Dir == Desc {
		asc := cmp
		cmp = func(a, b types.Product) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// View is what a list screen renders.
type View struct {
	Query    Query
	Sort     SortSpec
	Products []types.Product
	Page     PageInfo
	HasPrev  bool
	HasNext  bool
	Loading  bool
}

// View projects the snapshot: the current page sorted by the active
// sort spec, plus pager state.
func (s State) View() View {
	page := s.page()
	total := s.totalPages()
	return View{
		Query:    s.Query,
		Sort:     s.Sort,
		Products: SortProducts(s.Products, s.Sort),
		Page:     PageInfo{Current: page, Total: total},
		HasPrev:  page > 1,
		HasNext:  page < total,
		Loading:  s.Loading,
	}
}
