// Package elements converts a filtered graph into renderable node and edge
// records, including classification tags, bottleneck flags, and incident
// overlays.
package elements

import (
	"github.com/creditmesh/netview/internal/domain/filter"
	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/domain/money"
)

// Node is a renderable participant.
type Node struct {
	ID            string                  `json:"id"`
	DisplayName   string                  `json:"display_name"`
	Status        model.ParticipantStatus `json:"status"`
	Type          model.ParticipantType   `json:"type"`
	IncidentRatio float64                 `json:"incident_ratio"`
	Tags          []string                `json:"tags"`
}

// Edge is a renderable trustline.
type Edge struct {
	ID         string                `json:"id"`
	Source     string                `json:"source"`
	Target     string                `json:"target"`
	Equivalent string                `json:"equivalent"`
	Status     model.TrustlineStatus `json:"status"`
	Limit      string                `json:"limit"`
	Used       string                `json:"used"`
	Available  string                `json:"available"`
	Bottleneck bool                  `json:"bottleneck"`
}

// IsBottleneck reports whether an active trustline's available/limit ratio is
// below the operator threshold. A zero (or malformed) limit counts as a
// bottleneck without dividing; the evaluation never throws.
func IsBottleneck(t model.Trustline, threshold string) bool {
	if t.Status != model.TrustlineActive {
		return false
	}
	return money.RatioBelow(t.Available, t.Limit, threshold)
}

// IncidentRatios computes the display overlay ratio per initiator pid: the
// maximum age/SLA over that pid's incidents within the equivalent scope.
// Incidents with a non-positive SLA contribute 0.
func IncidentRatios(incidents []model.Incident, scope string) map[string]float64 {
	ratios := make(map[string]float64)
	for _, inc := range incidents {
		if !model.EquivalentScope(scope, inc.Equivalent) {
			continue
		}
		var r float64
		if inc.SLASeconds > 0 {
			r = float64(inc.AgeSeconds) / float64(inc.SLASeconds)
		}
		if cur, seen := ratios[inc.InitiatorPID]; !seen || r > cur {
			ratios[inc.InitiatorPID] = r
		}
	}
	return ratios
}

// Build emits renderable records for every surviving node and edge.
func Build(res filter.Result, incidents []model.Incident, scope, threshold string) ([]Node, []Edge) {
	ratios := IncidentRatios(incidents, scope)

	nodes := make([]Node, 0, len(res.Nodes))
	for _, p := range res.Nodes {
		ratio, hasIncident := ratios[p.PID]
		n := Node{
			ID:            p.PID,
			DisplayName:   p.DisplayName,
			Status:        p.Status,
			Type:          p.Type,
			IncidentRatio: ratio,
		}
		n.Tags = []string{
			"status-" + string(p.Status),
			"type-" + string(p.Type),
		}
		if hasIncident {
			n.Tags = append(n.Tags, "has-incident")
		}
		nodes = append(nodes, n)
	}

	edges := make([]Edge, 0, len(res.Edges))
	for _, t := range res.Edges {
		edges = append(edges, Edge{
			ID:         t.ID(),
			Source:     t.From,
			Target:     t.To,
			Equivalent: t.Equivalent,
			Status:     t.Status,
			Limit:      t.Limit,
			Used:       t.Used,
			Available:  t.Available,
			Bottleneck: IsBottleneck(t, threshold),
		})
	}
	return nodes, edges
}
