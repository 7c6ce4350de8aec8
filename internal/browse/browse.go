// Package browse lists the incoming and outgoing connections of a selected
// participant as stable, paginated tables.
package browse

import (
	"sort"
	"sync"

	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/model"
)

// DefaultPageSize is the shared page size for both directions.
const DefaultPageSize = 25

// Direction selects one of the two partitions.
type Direction string

// Directions.
const (
	Incoming Direction = "in"
	Outgoing Direction = "out"
)

// Row is one connection of the selected participant.
type Row struct {
	Edge             elements.Edge `json:"edge"`
	CounterpartyPID  string        `json:"counterparty_pid"`
	CounterpartyName string        `json:"counterparty_name"`
	Direction        Direction     `json:"direction"`
}

// Page is one page of rows plus cursor bookkeeping.
type Page struct {
	Rows      []Row `json:"rows"`
	Page      int   `json:"page"`
	PageCount int   `json:"page_count"`
	Total     int   `json:"total"`
}

// Browser partitions trustlines touching the selected node and maintains one
// independent page cursor per direction, sharing a single page size.
type Browser struct {
	mu sync.Mutex

	pageSize int
	selected string

	incoming []Row
	outgoing []Row

	pageIn  int
	pageOut int
}

// Option applies a configuration option to the Browser.
type Option func(*Browser)

// WithPageSize sets the shared page size.
func WithPageSize(n int) Option {
	return func(b *Browser) {
		if n > 0 {
			b.pageSize = n
		}
	}
}

// NewBrowser creates a connection browser with configuration options.
func NewBrowser(opts ...Option) *Browser {
	b := &Browser{
		pageSize: DefaultPageSize,
		pageIn:   1,
		pageOut:  1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetData rebuilds both partitions for the selected participant from all
// trustlines touching it. Changing the selected node resets both cursors;
// refreshing data for the same node keeps cursors where their lists still
// support them.
func (b *Browser) SetData(selected string, trustlines []model.Trustline, participants map[string]model.Participant, threshold string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if selected != b.selected {
		b.pageIn = 1
		b.pageOut = 1
		b.selected = selected
	}

	b.incoming = b.incoming[:0]
	b.outgoing = b.outgoing[:0]
	for _, t := range trustlines {
		switch selected {
		case t.To:
			b.incoming = append(b.incoming, newRow(t, t.From, participants, threshold, Incoming))
		case t.From:
			b.outgoing = append(b.outgoing, newRow(t, t.To, participants, threshold, Outgoing))
		}
	}
	sortRows(b.incoming)
	sortRows(b.outgoing)

	b.pageIn = clampCursor(b.pageIn, len(b.incoming), b.pageSize)
	b.pageOut = clampCursor(b.pageOut, len(b.outgoing), b.pageSize)
}

func newRow(t model.Trustline, counterparty string, participants map[string]model.Participant, threshold string, dir Direction) Row {
	name := counterparty
	if p, ok := participants[counterparty]; ok && p.DisplayName != "" {
		name = p.DisplayName
	}
	return Row{
		Edge: elements.Edge{
			ID:         t.ID(),
			Source:     t.From,
			Target:     t.To,
			Equivalent: t.Equivalent,
			Status:     t.Status,
			Limit:      t.Limit,
			Used:       t.Used,
			Available:  t.Available,
			Bottleneck: elements.IsBottleneck(t, threshold),
		},
		CounterpartyPID:  counterparty,
		CounterpartyName: name,
		Direction:        dir,
	}
}

// sortRows orders by (equivalent, bottleneck-first, counterparty pid), stable
// ascending.
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Edge.Equivalent != b.Edge.Equivalent {
			return a.Edge.Equivalent < b.Edge.Equivalent
		}
		if a.Edge.Bottleneck != b.Edge.Bottleneck {
			return a.Edge.Bottleneck
		}
		return a.CounterpartyPID < b.CounterpartyPID
	})
}

// clampCursor resets a cursor to page 1 when its list can no longer support
// the current page.
func clampCursor(page, total, size int) int {
	if page < 1 {
		return 1
	}
	if total == 0 {
		return 1
	}
	last := (total + size - 1) / size
	if page > last {
		return 1
	}
	return page
}

// SetPage moves one direction's cursor. A page the list cannot support
// auto-resets that cursor to page 1.
func (b *Browser) SetPage(dir Direction, page int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch dir {
	case Incoming:
		b.pageIn = clampCursor(page, len(b.incoming), b.pageSize)
	case Outgoing:
		b.pageOut = clampCursor(page, len(b.outgoing), b.pageSize)
	}
}

// PageFor returns the current page of rows for one direction.
func (b *Browser) PageFor(dir Direction) Page {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, cursor := b.outgoing, b.pageOut
	if dir == Incoming {
		rows, cursor = b.incoming, b.pageIn
	}

	total := len(rows)
	pageCount := (total + b.pageSize - 1) / b.pageSize
	if pageCount == 0 {
		pageCount = 1
	}

	start := (cursor - 1) * b.pageSize
	if start > total {
		start = total
	}
	end := start + b.pageSize
	if end > total {
		end = total
	}

	out := Page{Page: cursor, PageCount: pageCount, Total: total}
	out.Rows = append([]Row(nil), rows[start:end]...)
	return out
}

// Selected returns the participant the browser is scoped to.
func (b *Browser) Selected() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}
