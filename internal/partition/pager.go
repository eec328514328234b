// Package partition splits an ordered work-unit list into fixed-size
// pages with cursor semantics. Page boundaries are deterministic for a
// given list and page size, which the resume protocol depends on.
package partition

import (
	"fmt"

	"tick-factor-pipeline/internal/domain"
)

// Pager walks an ordered unit-key list page by page. The cursor is a
// 1-based page index; a fresh pager sits at 0, before the first page,
// so a HasNext/Next loop visits every page exactly once.
type Pager struct {
	units    []domain.WorkUnitKey
	pageSize int
	cursor   int
	maxPage  int
}

// New creates a pager over units with the given page size.
func New(units []domain.WorkUnitKey, pageSize int) (*Pager, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("partition: page size must be positive, got %d", pageSize)
	}
	maxPage := (len(units) + pageSize - 1) / pageSize
	return &Pager{units: units, pageSize: pageSize, maxPage: maxPage}, nil
}

// HasNext reports whether a page after the cursor exists.
func (p *Pager) HasNext() bool {
	return p.cursor < p.maxPage
}

// Next advances to the next page and returns it. At the last page the
// cursor does not advance further and the final (possibly short) slice
// is returned again.
func (p *Pager) Next() []domain.WorkUnitKey {
	if p.cursor < p.maxPage {
		p.cursor++
	}
	return p.page(p.cursor)
}

// HasPrev reports whether a page before the cursor exists.
func (p *Pager) HasPrev() bool {
	return p.cursor > 1
}

// Prev moves to the previous page and returns it. At the first page the
// cursor stays put and the first page is returned again.
func (p *Pager) Prev() []domain.WorkUnitKey {
	if p.cursor > 1 {
		p.cursor--
	}
	return p.page(p.cursor)
}

// First jumps to the first page.
func (p *Pager) First() []domain.WorkUnitKey {
	if p.maxPage == 0 {
		return nil
	}
	p.cursor = 1
	return p.page(p.cursor)
}

// Last jumps to the final page.
func (p *Pager) Last() []domain.WorkUnitKey {
	if p.maxPage == 0 {
		return nil
	}
	p.cursor = p.maxPage
	return p.page(p.cursor)
}

// Cursor returns the current 1-based page index (0 before iteration).
func (p *Pager) Cursor() int {
	return p.cursor
}

// MaxPageIndex returns the number of pages.
func (p *Pager) MaxPageIndex() int {
	return p.maxPage
}

// PageOf returns the 1-based page index containing the given unit, or 0
// if the unit is not in the list. Used to locate the resume page.
func (p *Pager) PageOf(unit domain.WorkUnitKey) int {
	for i := range p.units {
		if p.units[i] == unit {
			return i/p.pageSize + 1
		}
	}
	return 0
}

func (p *Pager) page(index int) []domain.WorkUnitKey {
	if index < 1 || index > p.maxPage {
		return nil
	}
	start := (index - 1) * p.pageSize
	end := start + p.pageSize
	if end > len(p.units) {
		end = len(p.units)
	}
	return p.units[start:end]
}
