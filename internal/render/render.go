// Package render owns layout, zoom-adaptive styling, label decimation, and
// camera operations for the graph view. The Engine interface is the capability
// contract; any rendering backend implementing it is substitutable. Headless
// is the in-memory implementation the service runs with.
package render

import (
	"math"

	"github.com/creditmesh/netview/internal/domain/elements"
)

// LayoutName selects a layout algorithm.
type LayoutName string

// Supported layouts.
const (
	LayoutForceDirected LayoutName = "force-directed"
	LayoutGrid          LayoutName = "grid"
	LayoutCircle        LayoutName = "circle"
)

// Layout quality tiers.
const (
	QualityDraft   = "draft"
	QualityDefault = "default"
	QualityProof   = "proof"
)

// LayoutParams parameterizes a layout run.
type LayoutParams struct {
	NodeSeparation  float64
	IdealEdgeLength float64
	Repulsion       float64
	Iterations      int
	Quality         string
}

// Force layout base values at spacing 1.0.
const (
	baseNodeSeparation  = 40.0
	baseIdealEdgeLength = 120.0
	baseRepulsion       = 4500.0
	baseIterations      = 1000
	proofSpacingCutoff  = 2.0
)

// ForceParams derives force-directed parameters from the user-controlled
// spacing multiplier. Every parameter scales monotonically with spacing:
// higher spacing means larger separation, longer edges, stronger repulsion,
// and more iterations.
func ForceParams(spacing float64) LayoutParams {
	if spacing <= 0 {
		spacing = 1
	}
	p := LayoutParams{
		NodeSeparation:  baseNodeSeparation * spacing,
		IdealEdgeLength: baseIdealEdgeLength * spacing,
		Repulsion:       baseRepulsion * spacing,
		Iterations:      int(math.Round(baseIterations * spacing)),
		Quality:         QualityDefault,
	}
	if spacing >= proofSpacingCutoff {
		p.Quality = QualityProof
	}
	return p
}

// Engine is the rendering capability contract. Camera ops are no-ops, never
// errors, when nothing is rendered or the pid is absent.
type Engine interface {
	SetElements(nodes []elements.Node, edges []elements.Edge)
	SetStyleRules(rules StyleRules)
	SetLabelPolicy(policy LabelPolicy)
	RunLayout(name LayoutName, params LayoutParams)

	SetZoom(zoom float64)
	Zoom() float64

	Fit()
	CenterOn(pid string)
	FitConnectedComponent(pid string)

	NodeCount() int
	EdgeCount() int
	NodesInViewport() int
	VisibleLabels() map[string]string
	CurrentStyle() StyleValues

	Clear()
}
