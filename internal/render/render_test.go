package render

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/model"
)

func testElements() ([]elements.Node, []elements.Edge) {
	nodes := []elements.Node{
		{ID: "alice", DisplayName: "Alice", Type: model.TypePerson},
		{ID: "bob", DisplayName: "Bob", Type: model.TypeBusiness},
		{ID: "hub-1", DisplayName: "Hub One", Type: model.TypeHub},
		{ID: "island", DisplayName: "Island", Type: model.TypePerson},
	}
	edges := []elements.Edge{
		{ID: "USD|alice->bob", Source: "alice", Target: "bob"},
		{ID: "USD|bob->hub-1", Source: "bob", Target: "hub-1"},
	}
	return nodes, edges
}

func TestForceParams(t *testing.T) {
	Convey("Given the spacing multiplier", t, func() {
		Convey("When spacing grows, every parameter grows", func() {
			lo := ForceParams(1)
			hi := ForceParams(1.5)
			So(hi.NodeSeparation, ShouldBeGreaterThan, lo.NodeSeparation)
			So(hi.IdealEdgeLength, ShouldBeGreaterThan, lo.IdealEdgeLength)
			So(hi.Repulsion, ShouldBeGreaterThan, lo.Repulsion)
			So(hi.Iterations, ShouldBeGreaterThan, lo.Iterations)
		})

		Convey("When spacing reaches the cutoff, quality becomes proof", func() {
			So(ForceParams(1).Quality, ShouldEqual, QualityDefault)
			So(ForceParams(2).Quality, ShouldEqual, QualityProof)
		})

		Convey("When spacing is non-positive it falls back to 1", func() {
			So(ForceParams(0), ShouldResemble, ForceParams(1))
		})
	})
}

func TestLayouts(t *testing.T) {
	Convey("Given a headless engine with elements", t, func() {
		h := NewHeadless()
		nodes, edges := testElements()
		h.SetElements(nodes, edges)

		Convey("When running the grid layout", func() {
			h.RunLayout(LayoutGrid, ForceParams(1))
			for _, n := range nodes {
				_, ok := h.Position(n.ID)
				So(ok, ShouldBeTrue)
			}
		})

		Convey("When running the force layout twice, positions are deterministic", func() {
			h.RunLayout(LayoutForceDirected, ForceParams(1))
			p1, _ := h.Position("alice")

			other := NewHeadless()
			other.SetElements(nodes, edges)
			other.RunLayout(LayoutForceDirected, ForceParams(1))
			p2, _ := other.Position("alice")

			So(p1, ShouldResemble, p2)
		})

		Convey("When rebuilding with surviving nodes, their positions persist", func() {
			h.RunLayout(LayoutGrid, ForceParams(1))
			before, _ := h.Position("alice")

			h.SetElements(nodes[:2], edges[:1])
			after, ok := h.Position("alice")
			So(ok, ShouldBeTrue)
			So(after, ShouldResemble, before)

			_, gone := h.Position("island")
			So(gone, ShouldBeFalse)
		})
	})
}

func TestCamera(t *testing.T) {
	Convey("Given a laid-out graph", t, func() {
		now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		clock := &now
		h := NewHeadless(WithClock(func() time.Time { return *clock }))
		nodes, edges := testElements()
		h.SetElements(nodes, edges)
		h.RunLayout(LayoutGrid, ForceParams(1))

		Convey("When fitting, zoom stays within the clamp range", func() {
			h.Fit()
			So(h.Zoom(), ShouldBeGreaterThanOrEqualTo, 0.05)
			So(h.Zoom(), ShouldBeLessThanOrEqualTo, 4.0)
		})

		Convey("When centering on a node, a pulse starts and expires", func() {
			h.CenterOn("bob")
			So(h.PulsedPID(), ShouldEqual, "bob")

			later := now.Add(2 * time.Second)
			clock = &later
			So(h.PulsedPID(), ShouldBeEmpty)
		})

		Convey("When centering on an absent pid, nothing changes", func() {
			h.SetZoom(2)
			h.CenterOn("nobody")
			So(h.PulsedPID(), ShouldBeEmpty)
			So(h.Zoom(), ShouldEqual, 2)
		})

		Convey("When fitting a connected component, the isolate is excluded", func() {
			h.FitConnectedComponent("alice")
			// The component alice-bob-hub spans the grid corner; the isolate
			// sits elsewhere. The operation completes without touching it.
			So(h.Zoom(), ShouldBeGreaterThan, 0)
		})

		Convey("When fitting a component from an absent pid, it is a no-op", func() {
			z := h.Zoom()
			h.FitConnectedComponent("nobody")
			So(h.Zoom(), ShouldEqual, z)
		})

		Convey("When nothing is rendered, camera operations are no-ops", func() {
			empty := NewHeadless()
			empty.Fit()
			empty.CenterOn("alice")
			So(empty.Zoom(), ShouldEqual, 1)
		})
	})
}

func TestZoomAdaptiveStyle(t *testing.T) {
	Convey("Given the default style rules", t, func() {
		rules := DefaultStyleRules()

		Convey("When zoomed out, values grow but clamp at the maximum", func() {
			v := rules.AtZoom(0.1)
			So(v.FontSize, ShouldEqual, 48)
			So(v.EdgeWidth, ShouldEqual, 6)
		})

		Convey("When zoomed in, values shrink but clamp at the minimum", func() {
			v := rules.AtZoom(10)
			So(v.FontSize, ShouldEqual, 6)
			So(v.OutlineWidth, ShouldEqual, 0.5)
		})

		Convey("When at zoom 1, base values apply", func() {
			v := rules.AtZoom(1)
			So(v.FontSize, ShouldEqual, 12)
			So(v.EdgeWidth, ShouldEqual, 1.5)
		})
	})
}

func TestLabelPolicy(t *testing.T) {
	Convey("Given the default label policy", t, func() {
		p := DefaultLabelPolicy()

		Convey("Then hub labels always show", func() {
			So(p.Visible(model.TypeHub, 0.05, 5000), ShouldBeTrue)
		})

		Convey("Then business labels show at lower zoom than person labels", func() {
			// Crowded viewport, zoom between the two thresholds.
			So(p.Visible(model.TypeBusiness, 1.0, 1000), ShouldBeTrue)
			So(p.Visible(model.TypePerson, 1.0, 1000), ShouldBeFalse)
		})

		Convey("Then an uncrowded viewport shows labels below the zoom threshold", func() {
			So(p.Visible(model.TypePerson, 0.2, 50), ShouldBeTrue)
		})

		Convey("Then off disables a type entirely", func() {
			p.Parts[model.TypePerson] = LabelOff
			So(p.Visible(model.TypePerson, 5, 1), ShouldBeFalse)
		})

		Convey("Then composition follows the parts selection", func() {
			node := elements.Node{ID: "hub-1", DisplayName: "Hub One", Type: model.TypeHub}
			So(p.Compose(node), ShouldEqual, "Hub One (hub-1)")

			person := elements.Node{ID: "alice", DisplayName: "Alice", Type: model.TypePerson}
			So(DefaultLabelPolicy().Compose(person), ShouldEqual, "Alice")

			unknown := elements.Node{ID: "x", DisplayName: "X", Type: "other"}
			So(DefaultLabelPolicy().Compose(unknown), ShouldEqual, "X")
		})
	})

	Convey("Given a headless engine at low zoom with a crowded viewport", t, func() {
		h := NewHeadless()
		nodes, edges := testElements()
		h.SetElements(nodes, edges)
		h.RunLayout(LayoutGrid, ForceParams(1))
		h.Fit()

		Convey("When asking for visible labels", func() {
			labels := h.VisibleLabels()

			Convey("Then the hub label is present", func() {
				So(labels, ShouldContainKey, "hub-1")
				So(labels["hub-1"], ShouldEqual, "Hub One (hub-1)")
			})
		})
	})
}
