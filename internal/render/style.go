package render

import (
	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/model"
)

// Bounds clamps one style property.
type Bounds struct {
	Min float64
	Max float64
}

// Clamp bounds v into [Min, Max].
func (b Bounds) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if b.Max > 0 && v > b.Max {
		return b.Max
	}
	return v
}

// StyleRules holds the base (zoom=1) values and per-property clamp bounds for
// zoom-adaptive styling.
type StyleRules struct {
	BaseFontSize     float64
	BaseOutlineWidth float64
	BaseEdgeWidth    float64
	BaseArrowScale   float64

	FontSize     Bounds
	OutlineWidth Bounds
	EdgeWidth    Bounds
	ArrowScale   Bounds
}

// DefaultStyleRules returns the operator-console defaults.
func DefaultStyleRules() StyleRules {
	return StyleRules{
		BaseFontSize:     12,
		BaseOutlineWidth: 2,
		BaseEdgeWidth:    1.5,
		BaseArrowScale:   1,
		FontSize:         Bounds{Min: 6, Max: 48},
		OutlineWidth:     Bounds{Min: 0.5, Max: 8},
		EdgeWidth:        Bounds{Min: 0.5, Max: 6},
		ArrowScale:       Bounds{Min: 0.4, Max: 3},
	}
}

// StyleValues are the effective rendered property values at some zoom level.
type StyleValues struct {
	FontSize     float64 `json:"font_size"`
	OutlineWidth float64 `json:"outline_width"`
	EdgeWidth    float64 `json:"edge_width"`
	ArrowScale   float64 `json:"arrow_scale"`
}

// AtZoom rescales every property inversely to the zoom level and clamps each
// to its bounds, so elements neither balloon when zoomed in nor vanish when
// zoomed out.
func (r StyleRules) AtZoom(zoom float64) StyleValues {
	if zoom <= 0 {
		zoom = 1
	}
	inv := 1 / zoom
	return StyleValues{
		FontSize:     r.FontSize.Clamp(r.BaseFontSize * inv),
		OutlineWidth: r.OutlineWidth.Clamp(r.BaseOutlineWidth * inv),
		EdgeWidth:    r.EdgeWidth.Clamp(r.BaseEdgeWidth * inv),
		ArrowScale:   r.ArrowScale.Clamp(r.BaseArrowScale * inv),
	}
}

// LabelParts selects what a node label is composed from.
type LabelParts string

// Label part selections, independent per participant type.
const (
	LabelOff  LabelParts = "off"
	LabelName LabelParts = "name"
	LabelPID  LabelParts = "pid"
	LabelBoth LabelParts = "both"
)

// LabelPolicy decides label visibility and composition per participant type.
type LabelPolicy struct {
	// AutoByZoom enables decimation; when false every non-off label shows.
	AutoByZoom bool

	// ZoomThreshold shows a type's labels once zoom reaches the threshold.
	ZoomThreshold map[model.ParticipantType]float64

	// CrowdThreshold shows a type's labels while the in-viewport node count
	// stays at or below the threshold.
	CrowdThreshold map[model.ParticipantType]int

	// Parts selects label composition per type.
	Parts map[model.ParticipantType]LabelParts
}

// DefaultLabelPolicy shows business labels at lower zoom / higher crowding
// than person labels; hubs are always labeled.
func DefaultLabelPolicy() LabelPolicy {
	return LabelPolicy{
		AutoByZoom: true,
		ZoomThreshold: map[model.ParticipantType]float64{
			model.TypePerson:   1.2,
			model.TypeBusiness: 0.8,
			model.TypeHub:      0,
		},
		CrowdThreshold: map[model.ParticipantType]int{
			model.TypePerson:   150,
			model.TypeBusiness: 400,
			model.TypeHub:      10000,
		},
		Parts: map[model.ParticipantType]LabelParts{
			model.TypePerson:   LabelName,
			model.TypeBusiness: LabelName,
			model.TypeHub:      LabelBoth,
		},
	}
}

// Visible reports whether labels of the given type show at the current zoom
// and viewport crowding. Either criterion suffices: the zoom threshold is met,
// or the viewport is uncrowded enough for the type.
func (p LabelPolicy) Visible(t model.ParticipantType, zoom float64, nodesInViewport int) bool {
	if p.Parts[t] == LabelOff {
		return false
	}
	if !p.AutoByZoom {
		return true
	}
	if zoom >= p.ZoomThreshold[t] {
		return true
	}
	if crowd, ok := p.CrowdThreshold[t]; ok && nodesInViewport <= crowd {
		return true
	}
	return false
}

// Compose builds the label text for a node from the type's parts selection.
// Types without an explicit selection default to the display name.
func (p LabelPolicy) Compose(n elements.Node) string {
	parts, ok := p.Parts[n.Type]
	if !ok {
		parts = LabelName
	}
	switch parts {
	case LabelName:
		return n.DisplayName
	case LabelPID:
		return n.ID
	case LabelBoth:
		if n.DisplayName == "" {
			return n.ID
		}
		return n.DisplayName + " (" + n.ID + ")"
	default:
		return ""
	}
}
