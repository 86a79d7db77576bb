package iterator

import (
	"errors"
	"fmt"
	"testing"
)

func sliceFetch(rows []string, calls *int) FetchFunc[string] {
	return func(page int) (Page[string], error) {
		*calls++
		total := (len(rows) + PageSize - 1) / PageSize
		start := page * PageSize
		if start > len(rows) {
			start = len(rows)
		}
		end := min(start+PageSize, len(rows))
		return Page[string]{Rows: rows[start:end], TotalPages: total}, nil
	}
}

func identity(s string) string { return s }

func drain(t *testing.T, it Iterator[string]) []string {
	t.Helper()
	var out []string
	for {
		ok, err := it.HasNext()
		if err != nil {
			t.Fatalf("HasNext failed: %v", err)
		}
		if !ok {
			return out
		}
		v, err := it.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, v)
	}
}

func TestPagedYieldsAllRowsAcrossPages(t *testing.T) {
	rows := make([]string, 1200)
	for i := range rows {
		rows[i] = fmt.Sprintf("row-%d", i)
	}

	var calls int
	it := NewPaged(sliceFetch(rows, &calls), identity)

	out := drain(t, it)

	if len(out) != 1200 {
		t.Fatalf("expected 1200 rows, got %d", len(out))
	}
	if calls != 3 {
		t.Fatalf("expected 3 page fetches for 1200 rows, got %d", calls)
	}
	for i, v := range out {
		if v != fmt.Sprintf("row-%d", i) {
			t.Fatalf("row %d out of order: %q", i, v)
		}
	}

	ok, err := it.HasNext()
	if err != nil || ok {
		t.Fatalf("expected exhausted iterator, got ok=%v err=%v", ok, err)
	}
}

func TestPagedEmptySource(t *testing.T) {
	var calls int
	it := NewPaged(sliceFetch(nil, &calls), identity)

	ok, err := it.HasNext()
	if err != nil {
		t.Fatalf("HasNext failed: %v", err)
	}
	if ok {
		t.Fatal("expected no rows")
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}

	if _, err = it.Next(); !errors.Is(err, ErrNoMoreElements) {
		t.Fatalf("expected ErrNoMoreElements, got %v", err)
	}
}

func TestPagedFetchErrorLatchesExhausted(t *testing.T) {
	fetchErr := errors.New("connection reset")
	var calls int
	fetch := func(page int) (Page[string], error) {
		calls++
		if page == 1 {
			return Page[string]{}, fetchErr
		}
		rows := make([]string, PageSize)
		return Page[string]{Rows: rows, TotalPages: 3}, nil
	}

	it := NewPaged(fetch, identity)
	for i := 0; i < PageSize; i++ {
		if _, err := it.Next(); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}

	if _, err := it.HasNext(); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}

	// The error is reported once; afterwards the iterator is exhausted and
	// must not retry the failing page.
	ok, err := it.HasNext()
	if err != nil || ok {
		t.Fatalf("expected exhausted after failure, got ok=%v err=%v", ok, err)
	}
	if calls != 2 {
		t.Fatalf("expected no refetch after failure, got %d calls", calls)
	}
}

func TestCompositeOrder(t *testing.T) {
	var callsA, callsB int
	a := NewPaged(sliceFetch([]string{"a1", "a2"}, &callsA), identity)
	b := NewPaged(sliceFetch([]string{"b1"}, &callsB), identity)

	out := drain(t, NewComposite[string](a, b))

	want := []string{"a1", "a2", "b1"}
	if len(out) != len(want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}

func TestCompositeSkipsExhaustedSources(t *testing.T) {
	var calls int
	empty := NewPaged(sliceFetch(nil, &calls), identity)
	full := NewPaged(sliceFetch([]string{"x"}, &calls), identity)

	out := drain(t, NewComposite[string](empty, full))

	if len(out) != 1 || out[0] != "x" {
		t.Fatalf("expected [x], got %v", out)
	}
}

func TestCompositeEmpty(t *testing.T) {
	it := NewComposite[string]()
	ok, err := it.HasNext()
	if err != nil || ok {
		t.Fatalf("expected empty composite, got ok=%v err=%v", ok, err)
	}
	if _, err = it.Next(); !errors.Is(err, ErrNoMoreElements) {
		t.Fatalf("expected ErrNoMoreElements, got %v", err)
	}
}
