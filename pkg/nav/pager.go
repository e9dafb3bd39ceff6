package nav

// Pager tracks a position within a sequence of fixed length. It never wraps:
// moving past either end is a no-op that reports false.
type Pager struct {
	index  int
	length int
}

// NewPager returns a pager over n pages positioned at page 0.
func NewPager(n int) Pager {
	if n < 0 {
		n = 0
	}
	return Pager{length: n}
}

// Index returns the current page.
func (p Pager) Index() int { return p.index }

// Len returns the number of pages.
func (p Pager) Len() int { return p.length }

// AtStart reports whether the pager is on the first page.
func (p Pager) AtStart() bool { return p.index == 0 }

// AtEnd reports whether the pager is on the last page (or has no pages).
func (p Pager) AtEnd() bool { return p.length == 0 || p.index == p.length-1 }

// Next advances one page.
func (p *Pager) Next() bool {
	if p.index+1 >= p.length {
		return false
	}
	p.index++
	return true
}

// Prev retreats one page.
func (p *Pager) Prev() bool {
	if p.index == 0 {
		return false
	}
	p.index--
	return true
}

// Goto jumps to page i. Out-of-range targets and the current page are no-ops.
func (p *Pager) Goto(i int) bool {
	if i < 0 || i >= p.length || i == p.index {
		return false
	}
	p.index = i
	return true
}

// First jumps to page 0.
func (p *Pager) First() bool { return p.Goto(0) }

// Last jumps to the final page.
func (p *Pager) Last() bool { return p.Goto(p.length - 1) }

// Reset returns to page 0.
func (p *Pager) Reset() { p.index = 0 }
