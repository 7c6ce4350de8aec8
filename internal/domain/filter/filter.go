// Package filter reduces a raw snapshot to the candidate node/edge set for
// rendering. The pipeline is pure: identical inputs always produce identical
// output sets, and no output edge ever references a dropped node.
package filter

import (
	"sort"

	"github.com/creditmesh/netview/internal/domain/model"
)

// Config holds the operator-selected reduction parameters.
type Config struct {
	// Equivalent scopes edges to one unit code. "" or "ALL" keeps every
	// equivalent.
	Equivalent string

	// Statuses is the allowed trustline status set. Empty means no
	// constraint.
	Statuses map[model.TrustlineStatus]bool

	// Types is the allowed participant type set. Empty means no constraint.
	Types map[model.ParticipantType]bool

	// MinDegree drops nodes whose degree over the visible edge set is below
	// this value. The pinned pid is exempt.
	MinDegree int

	// HideIsolates drops nodes that have no candidate edge at all. A node
	// whose only edges go to a hidden type is NOT an isolate.
	HideIsolates bool

	// PinnedPID is exempt from degree pruning (currently selected or
	// searched node).
	PinnedPID string
}

// Restriction optionally narrows the assembled set to a focus neighborhood.
type Restriction struct {
	// Keep limits nodes (and therefore edges) to this pid set.
	Keep map[string]bool

	// Root is always included in the node set, even with zero edges.
	Root string

	// SkipDegree disables min-degree pruning; the focus bound already
	// limits size.
	SkipDegree bool
}

// Result is the filtered graph.
type Result struct {
	Nodes []model.Participant
	Edges []model.Trustline

	// Degree maps pid to in-degree+out-degree over the visible edge set,
	// computed before min-degree pruning.
	Degree map[string]int
}

func (c Config) statusAllowed(s model.TrustlineStatus) bool {
	return len(c.Statuses) == 0 || c.Statuses[s]
}

func (c Config) typeAllowed(t model.ParticipantType) bool {
	return len(c.Types) == 0 || c.Types[t]
}

// VisibleEdges runs the edge-reduction stages.
//
// Candidate edges match the equivalent and status filters only; the has-any-edge
// set is taken from candidates BEFORE type filtering, so a node whose only
// edges go to a hidden type is never misclassified as a true isolate. Visible
// edges are the candidates whose both endpoints pass the type filter.
//
// When multiple types are selected this keeps cross-type edges (both endpoints
// pass individually), while a single selected type naturally excludes them.
// That asymmetry is intentional; do not normalize it to strict pair matching.
func VisibleEdges(participants []model.Participant, trustlines []model.Trustline, cfg Config) (visible []model.Trustline, hasAnyEdge map[string]bool) {
	types := make(map[string]model.ParticipantType, len(participants))
	for _, p := range participants {
		types[p.PID] = p.Type
	}

	hasAnyEdge = make(map[string]bool)
	visible = make([]model.Trustline, 0, len(trustlines))
	for _, t := range trustlines {
		if !model.EquivalentScope(cfg.Equivalent, t.Equivalent) {
			continue
		}
		if !cfg.statusAllowed(t.Status) {
			continue
		}
		hasAnyEdge[t.From] = true
		hasAnyEdge[t.To] = true

		if cfg.typeAllowed(types[t.From]) && cfg.typeAllowed(types[t.To]) {
			visible = append(visible, t)
		}
	}
	return visible, hasAnyEdge
}

// Assemble runs the node-assembly and pruning stages over a visible edge set.
func Assemble(participants []model.Participant, visible []model.Trustline, hasAnyEdge map[string]bool, cfg Config, r Restriction) Result {
	byPID := make(map[string]model.Participant, len(participants))
	for _, p := range participants {
		byPID[p.PID] = p
	}

	if r.Keep != nil {
		visible = restrictEdges(visible, r.Keep)
	}

	// Node candidates: endpoints of visible edges, plus isolates when not
	// hidden, plus the focus root unconditionally.
	inSet := make(map[string]bool)
	for _, e := range visible {
		inSet[e.From] = true
		inSet[e.To] = true
	}
	if r.Keep == nil && !cfg.HideIsolates {
		for _, p := range participants {
			if !hasAnyEdge[p.PID] && cfg.typeAllowed(p.Type) {
				inSet[p.PID] = true
			}
		}
	}
	if r.Root != "" {
		if _, ok := byPID[r.Root]; ok {
			inSet[r.Root] = true
		}
	}

	degree := make(map[string]int, len(inSet))
	for _, e := range visible {
		degree[e.From]++
		degree[e.To]++
	}

	if cfg.MinDegree > 0 && !r.SkipDegree {
		for pid := range inSet {
			if degree[pid] < cfg.MinDegree && pid != cfg.PinnedPID {
				delete(inSet, pid)
			}
		}
	}

	// An endpoint without a participant record cannot be emitted as a node.
	for pid := range inSet {
		if _, ok := byPID[pid]; !ok {
			delete(inSet, pid)
		}
	}

	// Pruning can orphan edges; drop them to keep the set referentially
	// complete.
	visible = restrictEdges(visible, inSet)

	nodes := make([]model.Participant, 0, len(inSet))
	for pid := range inSet {
		if p, ok := byPID[pid]; ok {
			nodes = append(nodes, p)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].PID < nodes[j].PID })

	return Result{Nodes: nodes, Edges: visible, Degree: degree}
}

// Apply runs the full pipeline without a focus restriction.
func Apply(participants []model.Participant, trustlines []model.Trustline, cfg Config) Result {
	visible, hasAnyEdge := VisibleEdges(participants, trustlines, cfg)
	return Assemble(participants, visible, hasAnyEdge, cfg, Restriction{})
}

func restrictEdges(edges []model.Trustline, keep map[string]bool) []model.Trustline {
	kept := make([]model.Trustline, 0, len(edges))
	for _, e := range edges {
		if keep[e.From] && keep[e.To] {
			kept = append(kept, e)
		}
	}
	return kept
}
