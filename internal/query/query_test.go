package query

import (
	"strings"
	"testing"
)

type item struct {
	name     string
	brand    string
	category string
	listedAt int64
}

var fixtures = []item{
	{"wool coat", "acme", "outerwear", 100},
	{"denim jacket", "rework", "outerwear", 200},
	{"silk scarf", "acme", "accessories", 150},
	{"canvas tote", "loop", "accessories", 150},
	{"linen shirt", "rework", "tops", 50},
}

func TestFilterAndsPredicates(t *testing.T) {
	byBrand := func(i item) bool { return i.brand == "acme" }
	search := func(i item) bool { return strings.Contains(i.name, "coat") }

	got := Filter(fixtures, byBrand, search)
	if len(got) != 1 || got[0].name != "wool coat" {
		t.Fatalf("search must narrow the filtered set, got %v", got)
	}

	// The search term alone matches nothing under the other brand, so the
	// combined result must be empty rather than falling back to search-only.
	other := func(i item) bool { return i.brand == "rework" }
	if got := Filter(fixtures, other, search); len(got) != 0 {
		t.Fatalf("conflicting predicates should yield empty, got %v", got)
	}
}

func TestFilterSkipsNilPredicates(t *testing.T) {
	got := Filter(fixtures, nil, func(i item) bool { return i.category == "accessories" })
	if len(got) != 2 {
		t.Fatalf("expected 2 accessories, got %d", len(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	before := fixtures[0]
	_ = Filter(fixtures, func(i item) bool { return false })
	if fixtures[0] != before {
		t.Fatal("input slice mutated")
	}
}

func TestAny(t *testing.T) {
	tops := func(i item) bool { return i.category == "tops" }
	accessories := func(i item) bool { return i.category == "accessories" }

	got := Filter(fixtures, Any(tops, accessories))
	if len(got) != 3 {
		t.Fatalf("expected 3 items across two categories, got %d", len(got))
	}
}

func TestSortByIsStable(t *testing.T) {
	got := SortBy(fixtures, func(a, b item) bool { return a.listedAt < b.listedAt })

	if got[0].name != "linen shirt" || got[4].name != "denim jacket" {
		t.Fatalf("wrong order: %v", got)
	}
	// Two items share listedAt 150; their incoming order must survive.
	if got[2].name != "silk scarf" || got[3].name != "canvas tote" {
		t.Fatalf("equal keys must keep incoming order, got %q then %q", got[2].name, got[3].name)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		page       int
		pageSize   int
		wantLen    int
		wantPage   int
		wantTotal  int
	}{
		{"first page", 5, 1, 2, 2, 1, 3},
		{"last partial page", 5, 3, 2, 1, 3, 3},
		{"exact multiple", 4, 2, 2, 2, 2, 2},
		{"page past end clamps", 5, 99, 2, 1, 3, 3},
		{"page zero clamps to one", 5, 0, 2, 2, 1, 3},
		{"empty input one empty page", 0, 1, 10, 0, 1, 1},
		{"empty input high page clamps", 0, 7, 10, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.n)
			for i := range items {
				items[i] = i
			}
			p := Paginate(items, tt.page, tt.pageSize)
			if len(p.Items) != tt.wantLen {
				t.Errorf("len(Items) = %d, want %d", len(p.Items), tt.wantLen)
			}
			if p.PageNumber != tt.wantPage {
				t.Errorf("PageNumber = %d, want %d", p.PageNumber, tt.wantPage)
			}
			if p.TotalPages != tt.wantTotal {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantTotal)
			}
			if p.TotalItems != tt.n {
				t.Errorf("TotalItems = %d, want %d", p.TotalItems, tt.n)
			}
		})
	}
}

func TestPaginateContent(t *testing.T) {
	items := []int{10, 20, 30, 40, 50}
	p := Paginate(items, 2, 2)
	if p.Items[0] != 30 || p.Items[1] != 40 {
		t.Fatalf("page 2 should hold 30,40; got %v", p.Items)
	}
}

func TestPaginateCoversInputExactly(t *testing.T) {
	// Walking every page must reproduce the input: nothing dropped,
	// nothing duplicated, order preserved. Sizes straddle exact
	// multiples and a pageSize larger than the input.
	for _, n := range []int{0, 1, 4, 5, 7, 20} {
		for _, pageSize := range []int{1, 3, 5, 25} {
			items := make([]int, n)
			for i := range items {
				items[i] = i * 11
			}

			var walked []int
			first := Paginate(items, 1, pageSize)
			for page := 1; page <= first.TotalPages; page++ {
				walked = append(walked, Paginate(items, page, pageSize).Items...)
			}

			if len(walked) != n {
				t.Fatalf("n=%d pageSize=%d: walked %d items, want %d", n, pageSize, len(walked), n)
			}
			for i := range walked {
				if walked[i] != items[i] {
					t.Fatalf("n=%d pageSize=%d: item %d = %d, want %d", n, pageSize, i, walked[i], items[i])
				}
			}
		}
	}
}

func TestSortDescIsReversedAsc(t *testing.T) {
	// All timestamps unique, so descending must be exactly the
	// ascending order read backwards.
	unique := []item{
		{"wool coat", "acme", "outerwear", 100},
		{"denim jacket", "rework", "outerwear", 200},
		{"silk scarf", "acme", "accessories", 150},
		{"linen shirt", "rework", "tops", 50},
	}

	asc := SortBy(unique, func(a, b item) bool { return a.listedAt < b.listedAt })
	desc := SortBy(unique, func(a, b item) bool { return a.listedAt > b.listedAt })

	if len(asc) != len(desc) {
		t.Fatalf("length mismatch: %d vs %d", len(asc), len(desc))
	}
	for i := range asc {
		if asc[i] != desc[len(desc)-1-i] {
			t.Fatalf("desc[%d] = %q, want %q", len(desc)-1-i, desc[len(desc)-1-i].name, asc[i].name)
		}
	}
}
