package feeds

import "Yatube/internal/core/posts"

// Page is one page of a feed.
// Number is 1-based. A Number past the last page yields no posts.
type Page struct {
	Posts    []*posts.PostView
	Total    int
	Number   int
	PageSize int
	NumPages int
}

func newPage(total, number, pageSize int) *Page {
	numPages := 1
	if total > 0 {
		numPages = (total + pageSize - 1) / pageSize
	}
	return &Page{
		Posts:    []*posts.PostView{},
		Total:    total,
		Number:   number,
		PageSize: pageSize,
		NumPages: numPages,
	}
}

// offset is the index of the first post on this page
func (p *Page) offset() int {
	return (p.Number - 1) * p.PageSize
}

// InRange reports whether the page can contain posts
func (p *Page) InRange() bool {
	return p.Number <= p.NumPages && p.offset() < p.Total
}

// HasNext reports whether a later page exists
func (p *Page) HasNext() bool {
	return p.Number < p.NumPages
}

// HasPrevious reports whether an earlier page exists
func (p *Page) HasPrevious() bool {
	return p.Number > 1
}

// HasOtherPages reports whether the paginator should be shown
func (p *Page) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

// NextNumber is the number of the following page
func (p *Page) NextNumber() int {
	return p.Number + 1
}

// PreviousNumber is the number of the preceding page, clamped to the last real page
func (p *Page) PreviousNumber() int {
	if p.Number-1 > p.NumPages {
		return p.NumPages
	}
	return p.Number - 1
}

// Numbers lists every page number, for the paginator
func (p *Page) Numbers() []int {
	numbers := make([]int, p.NumPages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
