package source

import (
	"context"
	"sync"

	"github.com/creditmesh/netview/internal/domain/ego"
	"github.com/creditmesh/netview/internal/domain/model"
)

// MemoryClient serves snapshots from an in-memory dataset. It backs the demo
// deployment and the test suite.
type MemoryClient struct {
	mu   sync.RWMutex
	snap *model.Snapshot
}

// NewMemoryClient creates a memory client over the given dataset.
func NewMemoryClient(snap *model.Snapshot) *MemoryClient {
	if snap == nil {
		snap = &model.Snapshot{}
	}
	return &MemoryClient{snap: snap}
}

// Replace swaps the backing dataset.
func (m *MemoryClient) Replace(snap *model.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap != nil {
		m.snap = snap
	}
}

// LoadSnapshot applies the filters to the in-memory dataset and returns a
// fresh copy the caller owns.
func (m *MemoryClient) LoadSnapshot(ctx context.Context, f Filters) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := &model.Snapshot{
		Equivalents: append([]model.Equivalent(nil), m.snap.Equivalents...),
	}

	var keep map[string]bool
	if f.FocusPID != "" {
		scoped := make([]model.Trustline, 0, len(m.snap.Trustlines))
		for _, t := range m.snap.Trustlines {
			if model.EquivalentScope(f.Equivalent, t.Equivalent) {
				scoped = append(scoped, t)
			}
		}
		keep = ego.Extract(scoped, f.FocusPID, f.FocusDepth)
	}

	for _, p := range m.snap.Participants {
		if keep == nil || keep[p.PID] {
			out.Participants = append(out.Participants, p)
		}
	}
	for _, t := range m.snap.Trustlines {
		if !model.EquivalentScope(f.Equivalent, t.Equivalent) {
			continue
		}
		if keep != nil && (!keep[t.From] || !keep[t.To]) {
			continue
		}
		out.Trustlines = append(out.Trustlines, t)
	}
	for _, d := range m.snap.Debts {
		if !model.EquivalentScope(f.Equivalent, d.Equivalent) {
			continue
		}
		if keep != nil && (!keep[d.Debtor] || !keep[d.Creditor]) {
			continue
		}
		out.Debts = append(out.Debts, d)
	}
	for _, inc := range m.snap.Incidents {
		if !model.EquivalentScope(f.Equivalent, inc.Equivalent) {
			continue
		}
		if keep != nil && !keep[inc.InitiatorPID] {
			continue
		}
		out.Incidents = append(out.Incidents, inc)
	}
	for _, a := range m.snap.AuditLog {
		if keep == nil || keep[a.PID] {
			out.AuditLog = append(out.AuditLog, a)
		}
	}
	for _, tx := range m.snap.Transactions {
		if !model.EquivalentScope(f.Equivalent, tx.Equivalent) {
			continue
		}
		if keep != nil && (!keep[tx.From] || !keep[tx.To]) {
			continue
		}
		out.Transactions = append(out.Transactions, tx)
	}
	out.ClearingCycles = append(out.ClearingCycles, m.snap.ClearingCycles...)

	return out, nil
}

// FetchClearingCycles returns the cycles that include the participant.
func (m *MemoryClient) FetchClearingCycles(ctx context.Context, pid string) ([]model.ClearingCycle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var cycles []model.ClearingCycle
	for _, c := range m.snap.ClearingCycles {
		for _, leg := range c.Legs {
			if leg.Debtor == pid || leg.Creditor == pid {
				cycles = append(cycles, c)
				break
			}
		}
	}
	return cycles, nil
}
