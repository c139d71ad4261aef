package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"freightquote/internal/textnorm"
)

// maritimeStem tolerates the recurring misspellings of the sea tariff tab
// ("Maritmos", "Marítmos", ...).
const maritimeStem = "mari"

// listTimeout bounds one title listing.
const listTimeout = 30 * time.Second

// NotFound is returned by ColumnIndex when no header matches.
const NotFound = -1

type titleIndex struct {
	order  []string          // normalized titles in listing order
	titles map[string]string // normalized -> real
}

// Locator resolves human table hints to real table titles. Title listings are
// cached per collection for the life of the process.
type Locator struct {
	src Source

	mu    sync.RWMutex
	cache map[string]*titleIndex
	group singleflight.Group
}

// NewLocator wraps src with a title cache.
func NewLocator(src Source) *Locator {
	return &Locator{src: src, cache: make(map[string]*titleIndex)}
}

// Source returns the wrapped data source.
func (l *Locator) Source() Source { return l.src }

func (l *Locator) index(ctx context.Context, collectionID string) (*titleIndex, error) {
	l.mu.RLock()
	idx, ok := l.cache[collectionID]
	l.mu.RUnlock()
	if ok {
		return idx, nil
	}
	// The listing outlives the caller that started it; others may be
	// waiting on the same fill.
	ch := l.group.DoChan(collectionID, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listTimeout)
		defer cancel()
		titles, err := l.src.ListTables(fillCtx, collectionID)
		if err != nil {
			return nil, err
		}
		idx := &titleIndex{titles: make(map[string]string, len(titles))}
		for _, t := range titles {
			n := textnorm.Normalize(t)
			if _, dup := idx.titles[n]; dup {
				continue
			}
			idx.titles[n] = t
			idx.order = append(idx.order, n)
		}
		l.mu.Lock()
		l.cache[collectionID] = idx
		l.mu.Unlock()
		return idx, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list tables: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("list tables: %w", res.Err)
		}
		return res.Val.(*titleIndex), nil
	}
}

// ResolveTable finds the real title for hint, trying extraHints after it.
// Per candidate it prefers an exact title, then a title starting with the
// candidate, then a title containing it.
func (l *Locator) ResolveTable(ctx context.Context, collectionID, hint string, extraHints ...string) (string, error) {
	idx, err := l.index(ctx, collectionID)
	if err != nil {
		return "", err
	}
	if real, ok := idx.titles[textnorm.Normalize(hint)]; ok {
		return real, nil
	}

	var candidates []string
	for _, h := range append([]string{hint}, extraHints...) {
		if n := textnorm.Normalize(h); n != "" {
			candidates = append(candidates, n)
		}
	}
	for _, c := range candidates {
		if real, ok := idx.titles[c]; ok {
			return real, nil
		}
		for _, t := range idx.order {
			if strings.HasPrefix(t, c) {
				return idx.titles[t], nil
			}
		}
		for _, t := range idx.order {
			if strings.Contains(t, c) {
				return idx.titles[t], nil
			}
		}
	}

	for _, c := range candidates {
		if !strings.HasPrefix(c, maritimeStem) {
			continue
		}
		for _, t := range idx.order {
			if strings.HasPrefix(t, maritimeStem) {
				return idx.titles[t], nil
			}
		}
	}
	return "", &TableNotFoundError{CollectionID: collectionID, Hint: hint}
}

// Table resolves hint and reads cellRange from the resolved table.
func (l *Locator) Table(ctx context.Context, collectionID, cellRange, hint string, extraHints ...string) ([][]string, error) {
	title, err := l.ResolveTable(ctx, collectionID, hint, extraHints...)
	if err != nil {
		return nil, err
	}
	rows, err := l.src.ReadRange(ctx, collectionID, title, cellRange)
	if err != nil {
		return nil, fmt.Errorf("read %s!%s: %w", title, cellRange, err)
	}
	return rows, nil
}

// ColumnIndex returns the first column whose normalized header equals or
// contains one of labels. Labels are tried in order, so put the most specific
// label first.
func ColumnIndex(header []string, labels ...string) int {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = textnorm.Normalize(h)
	}
	for _, label := range labels {
		want := textnorm.Normalize(label)
		if want == "" {
			continue
		}
		for i, h := range norm {
			if h == want || strings.Contains(h, want) {
				return i
			}
		}
	}
	return NotFound
}

// Cell returns row[i] trimmed, or "" when i is out of range.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
