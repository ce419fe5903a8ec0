package content

import (
	"cmp"
	"slices"
)

// SortNewest orders docs by PublishedAt, newest first. Equal dates keep
// their load order.
func SortNewest(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
}

// SortByOrder orders docs by ascending Order. Equal orders keep their load
// order.
func SortByOrder(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		return cmp.Compare(a.Order, b.Order)
	})
}

// SortDefault applies the kind's default order: projects by Order, every
// other kind newest first.
func SortDefault(kind Kind, docs []Document) {
	if kind == Projects {
		SortByOrder(docs)
		return
	}
	SortNewest(docs)
}
