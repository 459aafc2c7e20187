package repository

import "math"

// ObjectOptions controls single-object reads.
type ObjectOptions struct {
	// Filter is a comma separated list of query names; "" or "*" selects all.
	Filter                  string
	IncludeAllowableActions bool
	IncludeACL              bool
}

// ChildrenOptions controls GetChildren.
type ChildrenOptions struct {
	Filter                  string
	IncludeAllowableActions bool
	IncludePathSegment      bool

	// MaxItems nil or negative means unbounded.
	MaxItems *int

	// SkipCount below zero is treated as zero.
	SkipCount int
}

// DescendantsOptions controls GetDescendants and GetFolderTree.
type DescendantsOptions struct {
	// Depth nil means 2. -1 (or anything below it) is unbounded; 0 is invalid.
	Depth                   *int
	Filter                  string
	IncludeAllowableActions bool
	IncludePathSegment      bool
}

// ParentsOptions controls GetObjectParents.
type ParentsOptions struct {
	Filter                     string
	IncludeAllowableActions    bool
	IncludeRelativePathSegment bool
}

// QueryOptions controls Query.
type QueryOptions struct {
	IncludeAllowableActions bool
	MaxItems                *int
	SkipCount               int
}

// defaultDepth applies when a descendants call omits the depth.
const defaultDepth = 2

// page is a normalized skip/limit pair.
type page struct {
	skip int
	max  int
}

func newPage(maxItems *int, skipCount int) page {
	p := page{skip: max(skipCount, 0), max: math.MaxInt}
	if maxItems != nil && *maxItems >= 0 {
		p.max = *maxItems
	}
	return p
}

// pager walks a sequence of visible entries, counting every one of them and
// accepting those inside the page.
type pager struct {
	page
	count    int
	accepted int
	hasMore  bool
}

// next registers one more entry and reports whether it belongs to the page.
func (p *pager) next() bool {
	p.count++
	if p.skip > 0 {
		p.skip--
		return false
	}
	if p.accepted >= p.max {
		p.hasMore = true
		return false
	}
	p.accepted++
	return true
}
