// Package source declares the data collaborator contract the engine consumes:
// snapshot loads and on-demand clearing-cycle lookups. The engine treats
// whatever a client returns as its complete current working set.
package source

import (
	"context"
	"errors"

	"github.com/creditmesh/netview/internal/domain/model"
)

// Sentinel errors.
var (
	ErrSnapshotLoad = errors.New("snapshot load failed")
	ErrUnknownPID   = errors.New("unknown participant")
)

// Filters scope a snapshot request. A fetch-based collaborator may return a
// filtered or paginated snapshot; an in-memory one applies them directly.
type Filters struct {
	// Equivalent scopes trustlines/debts/incidents to one unit code.
	// "" or "ALL" requests everything.
	Equivalent string

	// FocusPID and FocusDepth request a neighborhood-scoped snapshot for
	// focus mode. Empty FocusPID means no neighborhood scoping.
	FocusPID   string
	FocusDepth int
}

// Client is the data collaborator.
type Client interface {
	// LoadSnapshot returns the current working set under the filters.
	LoadSnapshot(ctx context.Context, f Filters) (*model.Snapshot, error)

	// FetchClearingCycles returns the clearing cycles touching one
	// participant. Failures are non-fatal to the engine.
	FetchClearingCycles(ctx context.Context, pid string) ([]model.ClearingCycle, error)
}
