package pagination

// DefaultLimit applies when a query does not set one.
const DefaultLimit = 50

// MaxLimit caps any single page.
const MaxLimit = 500

// Params selects one page of a result set. Page is 1-based.
type Params struct {
	Limit int
	Page  int
}

// Normalize clamps limit and page to usable values.
func (p Params) Normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	return p
}

// Offset returns the number of rows before the page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Page is the find() result envelope shared by every store.
type Page[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"totalDocs"`
	TotalPages  int  `json:"totalPages"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
}

// New builds a page from docs already sliced by the store and the total count.
func New[T any](docs []T, totalDocs int, params Params) Page[T] {
	params = params.Normalize()
	totalPages := 0
	if totalDocs > 0 {
		totalPages = (totalDocs + params.Limit - 1) / params.Limit
	}
	if docs == nil {
		docs = []T{}
	}
	return Page[T]{
		Docs:        docs,
		TotalDocs:   totalDocs,
		TotalPages:  totalPages,
		Page:        params.Page,
		Limit:       params.Limit,
		HasNextPage: params.Page < totalPages,
	}
}

// Slice pages an in-memory, already sorted collection.
func Slice[T any](items []T, params Params) Page[T] {
	params = params.Normalize()
	start := params.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	docs := make([]T, 0, end-start)
	docs = append(docs, items[start:end]...)
	return New(docs, len(items), params)
}

// First returns the first doc of a page.
func (p Page[T]) First() (T, bool) {
	if len(p.Docs) == 0 {
		var zero T
		return zero, false
	}
	return p.Docs[0], true
}
