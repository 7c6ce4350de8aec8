package render

import (
	"hash/fnv"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/creditmesh/netview/internal/domain/elements"
)

// Logical viewport dimensions at zoom 1.0.
const (
	viewportWidth  = 1280.0
	viewportHeight = 800.0
	fitPadding     = 40.0
	pulseDuration  = 900 * time.Millisecond
	minFitZoom     = 0.05
	maxFitZoom     = 4.0
)

// Point is a node position in layout space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Headless implements Engine entirely in memory. It tracks elements, layout
// positions, camera, and styling, and answers viewport/label queries without a
// display attached.
type Headless struct {
	mu sync.RWMutex

	nodes []elements.Node
	edges []elements.Edge
	byID  map[string]int // pid -> index into nodes

	positions map[string]Point
	rules     StyleRules
	policy    LabelPolicy

	zoom    float64
	centerX float64
	centerY float64

	lastLayout LayoutName
	lastParams LayoutParams

	pulsePID   string
	pulseUntil time.Time

	now func() time.Time
}

// Option applies a configuration option to the Headless engine.
type Option func(*Headless)

// WithStyleRules sets the initial style rules.
func WithStyleRules(rules StyleRules) Option {
	return func(h *Headless) { h.rules = rules }
}

// WithLabelPolicy sets the initial label policy.
func WithLabelPolicy(policy LabelPolicy) Option {
	return func(h *Headless) { h.policy = policy }
}

// WithClock injects the clock used for pulse expiry.
func WithClock(now func() time.Time) Option {
	return func(h *Headless) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHeadless creates a headless render engine with configuration options.
func NewHeadless(opts ...Option) *Headless {
	h := &Headless{
		byID:      make(map[string]int),
		positions: make(map[string]Point),
		rules:     DefaultStyleRules(),
		policy:    DefaultLabelPolicy(),
		zoom:      1,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetElements replaces the rendered element set. Positions of surviving nodes
// are kept so incremental rebuilds do not scramble the view; new nodes get a
// position on the next layout run.
func (h *Headless) SetElements(nodes []elements.Node, edges []elements.Edge) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nodes = nodes
	h.edges = edges
	h.byID = make(map[string]int, len(nodes))
	for i, n := range nodes {
		h.byID[n.ID] = i
	}

	kept := make(map[string]Point, len(nodes))
	for _, n := range nodes {
		if p, ok := h.positions[n.ID]; ok {
			kept[n.ID] = p
		}
	}
	h.positions = kept
}

// SetStyleRules replaces the style rules.
func (h *Headless) SetStyleRules(rules StyleRules) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rules = rules
}

// SetLabelPolicy replaces the label policy.
func (h *Headless) SetLabelPolicy(policy LabelPolicy) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.policy = policy
}

// RunLayout assigns positions to every node with the selected algorithm.
func (h *Headless) RunLayout(name LayoutName, params LayoutParams) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastLayout = name
	h.lastParams = params

	switch name {
	case LayoutGrid:
		h.layoutGrid(params)
	case LayoutCircle:
		h.layoutCircle(params)
	default:
		h.layoutForce(params)
	}
}

// layoutGrid places nodes on a square grid spaced by node separation.
func (h *Headless) layoutGrid(params LayoutParams) {
	sep := params.NodeSeparation
	if sep <= 0 {
		sep = baseNodeSeparation
	}
	cols := int(math.Ceil(math.Sqrt(float64(len(h.nodes)))))
	if cols == 0 {
		return
	}
	for i, n := range h.nodes {
		h.positions[n.ID] = Point{
			X: float64(i%cols) * sep,
			Y: float64(i/cols) * sep,
		}
	}
}

// layoutCircle places nodes evenly on a circle sized by edge length.
func (h *Headless) layoutCircle(params LayoutParams) {
	count := len(h.nodes)
	if count == 0 {
		return
	}
	length := params.IdealEdgeLength
	if length <= 0 {
		length = baseIdealEdgeLength
	}
	// Circumference grows with the node count so neighbors keep roughly the
	// ideal edge length between them.
	radius := length * float64(count) / (2 * math.Pi)
	for i, n := range h.nodes {
		angle := 2 * math.Pi * float64(i) / float64(count)
		h.positions[n.ID] = Point{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		}
	}
}

// layoutForce runs a deterministic spring relaxation. Seeding is derived from
// pid hashes so a given element set always lands in the same arrangement.
func (h *Headless) layoutForce(params LayoutParams) {
	count := len(h.nodes)
	if count == 0 {
		return
	}
	sep := params.NodeSeparation
	if sep <= 0 {
		sep = baseNodeSeparation
	}
	length := params.IdealEdgeLength
	if length <= 0 {
		length = baseIdealEdgeLength
	}
	iterations := params.Iterations
	if iterations <= 0 {
		iterations = baseIterations
	}
	// Headless relaxation converges quickly; cap the work while keeping the
	// requested iteration count monotone in spacing.
	steps := iterations / 20
	if steps < 10 {
		steps = 10
	}
	if steps > 200 {
		steps = 200
	}

	spread := sep * math.Sqrt(float64(count))
	pos := make([]Point, count)
	for i, n := range h.nodes {
		if p, ok := h.positions[n.ID]; ok {
			pos[i] = p
			continue
		}
		hx, hy := seedFor(n.ID)
		pos[i] = Point{X: (hx - 0.5) * spread, Y: (hy - 0.5) * spread}
	}

	type pair struct{ a, b int }
	springs := make([]pair, 0, len(h.edges))
	for _, e := range h.edges {
		ai, aok := h.byID[e.Source]
		bi, bok := h.byID[e.Target]
		if aok && bok && ai != bi {
			springs = append(springs, pair{ai, bi})
		}
	}

	for step := 0; step < steps; step++ {
		cool := 1 - float64(step)/float64(steps)
		for _, s := range springs {
			dx := pos[s.b].X - pos[s.a].X
			dy := pos[s.b].Y - pos[s.a].Y
			dist := math.Hypot(dx, dy)
			if dist == 0 {
				dist = 0.01
			}
			// Hooke pull toward the ideal edge length.
			f := (dist - length) / dist * 0.1 * cool
			pos[s.a].X += dx * f
			pos[s.a].Y += dy * f
			pos[s.b].X -= dx * f
			pos[s.b].Y -= dy * f
		}
	}

	for i, n := range h.nodes {
		h.positions[n.ID] = pos[i]
	}
}

func seedFor(id string) (float64, float64) {
	hx := fnv.New32a()
	hx.Write([]byte(id))
	hy := fnv.New32a()
	hy.Write([]byte(id))
	hy.Write([]byte{0x1f})
	const norm = float64(math.MaxUint32)
	return float64(hx.Sum32()) / norm, float64(hy.Sum32()) / norm
}

// SetZoom sets the camera zoom level.
func (h *Headless) SetZoom(zoom float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if zoom > 0 {
		h.zoom = zoom
	}
}

// Zoom returns the current camera zoom level.
func (h *Headless) Zoom() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.zoom
}

// Fit frames all rendered elements. No-op when nothing is rendered.
func (h *Headless) Fit() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fitPIDs(h.allPIDs())
}

// CenterOn pans the camera to a node and starts a transient highlight pulse.
// No-op when the pid is absent.
func (h *Headless) CenterOn(pid string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.positions[pid]
	if !ok {
		if _, known := h.byID[pid]; !known {
			return
		}
		p = Point{}
	}
	h.centerX = p.X
	h.centerY = p.Y
	h.pulsePID = pid
	h.pulseUntil = h.now().Add(pulseDuration)
}

// FitConnectedComponent frames the connected component containing the start
// node, flood-filling over currently visible edges. No-op when the pid is
// absent or nothing is rendered.
func (h *Headless) FitConnectedComponent(pid string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.byID[pid]; !ok {
		return
	}

	adj := make(map[string][]string, len(h.nodes))
	for _, e := range h.edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	component := map[string]bool{pid: true}
	stack := []string{pid}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range adj[cur] {
			if !component[nb] {
				component[nb] = true
				stack = append(stack, nb)
			}
		}
	}

	pids := make([]string, 0, len(component))
	for p := range component {
		pids = append(pids, p)
	}
	sort.Strings(pids)
	h.fitPIDs(pids)
}

// fitPIDs frames the given pids. Caller holds the lock.
func (h *Headless) fitPIDs(pids []string) {
	if len(pids) == 0 {
		return
	}

	first := true
	var minX, minY, maxX, maxY float64
	for _, pid := range pids {
		p, ok := h.positions[pid]
		if !ok {
			continue
		}
		if first {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			first = false
			continue
		}
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	if first {
		return
	}

	h.centerX = (minX + maxX) / 2
	h.centerY = (minY + maxY) / 2

	w := maxX - minX + 2*fitPadding
	hgt := maxY - minY + 2*fitPadding
	zoom := math.Min(viewportWidth/w, viewportHeight/hgt)
	if zoom < minFitZoom {
		zoom = minFitZoom
	}
	if zoom > maxFitZoom {
		zoom = maxFitZoom
	}
	h.zoom = zoom
}

func (h *Headless) allPIDs() []string {
	pids := make([]string, len(h.nodes))
	for i, n := range h.nodes {
		pids[i] = n.ID
	}
	return pids
}

// NodeCount returns the rendered node count.
func (h *Headless) NodeCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// EdgeCount returns the rendered edge count.
func (h *Headless) EdgeCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.edges)
}

// NodesInViewport counts nodes inside the current camera rectangle.
func (h *Headless) NodesInViewport() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	halfW := viewportWidth / (2 * h.zoom)
	halfH := viewportHeight / (2 * h.zoom)
	count := 0
	for _, n := range h.nodes {
		p, ok := h.positions[n.ID]
		if !ok {
			continue
		}
		if math.Abs(p.X-h.centerX) <= halfW && math.Abs(p.Y-h.centerY) <= halfH {
			count++
		}
	}
	return count
}

// Clear drops every rendered element and resets the camera.
func (h *Headless) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nodes = nil
	h.edges = nil
	h.byID = make(map[string]int)
	h.positions = make(map[string]Point)
	h.zoom = 1
	h.centerX, h.centerY = 0, 0
	h.pulsePID = ""
}

// CurrentStyle returns the effective style values at the current zoom.
func (h *Headless) CurrentStyle() StyleValues {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rules.AtZoom(h.zoom)
}

// VisibleLabels returns pid -> composed label text for every node whose label
// shows under the current zoom, crowding, and parts selection.
func (h *Headless) VisibleLabels() map[string]string {
	h.mu.RLock()
	zoom := h.zoom
	policy := h.policy
	nodes := h.nodes
	h.mu.RUnlock()

	inView := h.NodesInViewport()

	labels := make(map[string]string)
	for _, n := range nodes {
		if !policy.Visible(n.Type, zoom, inView) {
			continue
		}
		if text := policy.Compose(n); text != "" {
			labels[n.ID] = text
		}
	}
	return labels
}

// PulsedPID returns the node currently carrying the transient center pulse,
// or "" once the pulse has expired.
func (h *Headless) PulsedPID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.pulsePID == "" || h.now().After(h.pulseUntil) {
		return ""
	}
	return h.pulsePID
}

// Position returns a node's layout position.
func (h *Headless) Position(pid string) (Point, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.positions[pid]
	return p, ok
}

// LastLayout reports the most recent layout run.
func (h *Headless) LastLayout() (LayoutName, LayoutParams) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastLayout, h.lastParams
}
