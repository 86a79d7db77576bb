package iterator

import "errors"

// PageSize is the number of source rows fetched per round-trip. Bounds peak
// memory for full-table scans while keeping the round-trip count low.
const PageSize = 500

// ErrNoMoreElements is returned by Next when the sequence is exhausted.
var ErrNoMoreElements = errors.New("iterator: no more elements")

// Page is one batch of raw source rows together with the total page count
// reported by the underlying query.
type Page[S any] struct {
	Rows       []S
	TotalPages int
}

// FetchFunc loads one zero-based page of source rows.
type FetchFunc[S any] func(page int) (Page[S], error)

// MapFunc converts one raw source row into an output record.
type MapFunc[S, T any] func(row S) T

// Iterator is a forward-only sequence of records.
type Iterator[T any] interface {
	HasNext() (bool, error)
	Next() (T, error)
}

// Paged streams the results of a paged query one row at a time, fetching
// pages on demand so the full result set is never held in memory.
type Paged[S, T any] struct {
	fetch  FetchFunc[S]
	mapRow MapFunc[S, T]

	rows       []S
	offset     int
	nextPage   int
	totalPages int
	started    bool
	done       bool
}

func NewPaged[S, T any](fetch FetchFunc[S], mapRow MapFunc[S, T]) *Paged[S, T] {
	return &Paged[S, T]{
		fetch:  fetch,
		mapRow: mapRow,
	}
}

// HasNext reports whether another row is available. When the current page is
// exhausted the next page is fetched as a side effect. A fetch error is
// returned once and the iterator stays exhausted afterwards, so a failed scan
// can not loop forever on the same page.
func (it *Paged[S, T]) HasNext() (bool, error) {
	if it.done {
		return false, nil
	}
	if it.offset < len(it.rows) {
		return true, nil
	}
	if it.started && it.nextPage >= it.totalPages {
		it.done = true
		return false, nil
	}

	page, err := it.fetch(it.nextPage)
	if err != nil {
		it.done = true
		return false, err
	}
	it.started = true
	it.totalPages = page.TotalPages
	it.rows = page.Rows
	it.offset = 0
	it.nextPage++

	if len(it.rows) == 0 {
		it.done = true
		return false, nil
	}
	return true, nil
}

// Next returns the mapped record for the next unconsumed row.
func (it *Paged[S, T]) Next() (T, error) {
	var zero T
	ok, err := it.HasNext()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrNoMoreElements
	}
	row := it.rows[it.offset]
	it.offset++
	return it.mapRow(row), nil
}

// Composite chains several iterators into one sequence. Sources are consumed
// strictly in declaration order: source i is fully drained before source i+1
// is touched. Nothing already returned is buffered.
type Composite[T any] struct {
	sources []Iterator[T]
	idx     int
}

func NewComposite[T any](sources ...Iterator[T]) *Composite[T] {
	return &Composite[T]{sources: sources}
}

// HasNext advances past exhausted sources and reports whether any source
// still has rows.
func (it *Composite[T]) HasNext() (bool, error) {
	for it.idx < len(it.sources) {
		ok, err := it.sources[it.idx].HasNext()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		it.idx++
	}
	return false, nil
}

// Next delegates to the current source.
func (it *Composite[T]) Next() (T, error) {
	var zero T
	ok, err := it.HasNext()
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrNoMoreElements
	}
	return it.sources[it.idx].Next()
}
