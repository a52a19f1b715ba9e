// Package view derives the display order of tasks from the cached collection.
//
// Projection never mutates its input and keeps no state between calls. Title
// and status compare with a root-locale collator; due dates compare as parsed
// times, earliest first when ascending. The sort is stable.
package view

import (
	"fmt"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pdxmph/tasks-tui/internal/tasks"
)

// Key is a sortable column
type Key string

// Sortable columns
const (
	KeyTitle   Key = "title"
	KeyStatus  Key = "status"
	KeyDueDate Key = "due_date"
)

// Order is a sort direction
type Order string

// Sort directions
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sort is the active sort key and direction
type Sort struct {
	Key   Key
	Order Order
}

// Default is the sort the list opens with
func Default() Sort {
	return Sort{Key: KeyDueDate, Order: Asc}
}

// ParseKey validates a sort key
func ParseKey(s string) (Key, error) {
	switch Key(s) {
	case KeyTitle, KeyStatus, KeyDueDate:
		return Key(s), nil
	}
	return "", fmt.Errorf("unknown sort key %q (want title, status or due_date)", s)
}

// ParseOrder validates a sort direction
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case Asc, Desc:
		return Order(s), nil
	}
	return "", fmt.Errorf("unknown sort order %q (want asc or desc)", s)
}

// Toggle applies a header click: the active key flips direction, any other
// key becomes active in ascending order
func (s Sort) Toggle(key Key) Sort {
	if s.Key == key {
		if s.Order == Asc {
			return Sort{Key: key, Order: Desc}
		}
		return Sort{Key: key, Order: Asc}
	}
	return Sort{Key: key, Order: Asc}
}

// Indicator returns the arrow shown next to the column header
func (s Sort) Indicator(key Key) string {
	if s.Key != key {
		return ""
	}
	if s.Order == Desc {
		return "▼"
	}
	return "▲"
}

func (s Sort) String() string {
	return fmt.Sprintf("%s %s", s.Key, s.Order)
}

// Project returns a sorted shallow copy of ts
func Project(ts []tasks.Task, s Sort) []tasks.Task {
	out := slices.Clone(ts)
	if len(out) < 2 {
		return out
	}

	var cmp func(a, b tasks.Task) int
	switch s.Key {
	case KeyTitle:
		col := collate.New(language.Und)
		cmp = func(a, b tasks.Task) int { return col.CompareString(a.Title, b.Title) }
	case KeyStatus:
		col := collate.New(language.Und)
		cmp = func(a, b tasks.Task) int { return col.CompareString(string(a.Status), string(b.Status)) }
	default:
		cmp = func(a, b tasks.Task) int { return dueOf(a).Compare(dueOf(b)) }
	}

	if s.Order == Desc {
		asc := cmp
		cmp = func(a, b tasks.Task) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// dueOf parses a task's due date; unparseable dates sort as the zero time
func dueOf(t tasks.Task) time.Time {
	d, err := t.Due()
	if err != nil {
		return time.Time{}
	}
	return d
}
