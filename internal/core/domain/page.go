package domain

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type Page struct {
	Number int64
	Limit  int64
}

// Normalize applies defaults and caps the limit.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int64 {
	return (p.Number - 1) * p.Limit
}

type Pagination struct {
	Page  int64
	Limit int64
	Total int64
	Pages int64
}

func NewPagination(p Page, total int64) Pagination {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Page: p.Number, Limit: p.Limit, Total: total, Pages: pages}
}
