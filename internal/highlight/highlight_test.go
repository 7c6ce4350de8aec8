package highlight

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/model"
)

func testNodes() []elements.Node {
	return []elements.Node{
		{ID: "alice", DisplayName: "Alice Person"},
		{ID: "bob", DisplayName: "Bob Builder"},
		{ID: "alina", DisplayName: "Alina"},
	}
}

func TestSearchHits(t *testing.T) {
	Convey("Given rendered nodes", t, func() {
		c := NewController()
		nodes := testNodes()

		Convey("When querying a substring", func() {
			hits := c.SearchHits(nodes, "ali")
			So(hits, ShouldResemble, []string{"alice", "alina"})
		})

		Convey("When matching against display names case-insensitively", func() {
			hits := c.SearchHits(nodes, "BUILDER")
			So(hits, ShouldResemble, []string{"bob"})
		})

		Convey("When using an exact pid query", func() {
			So(c.SearchHits(nodes, "pid:alice"), ShouldResemble, []string{"alice"})
			So(c.SearchHits(nodes, "pid:ali"), ShouldBeEmpty)
		})

		Convey("When the query is blank", func() {
			So(c.SearchHits(nodes, "   "), ShouldBeEmpty)
		})

		Convey("When hits exceed the cap", func() {
			capped := NewController(WithMaxSearchHits(3))
			var many []elements.Node
			for i := 0; i < 10; i++ {
				many = append(many, elements.Node{ID: fmt.Sprintf("node-%d", i)})
			}
			So(capped.SearchHits(many, "node"), ShouldHaveLength, 3)
		})
	})
}

func TestSearchOverlayLifecycle(t *testing.T) {
	Convey("Given an active search overlay", t, func() {
		c := NewController()
		c.ActivateSearch("ali", []string{"alice", "alina"})

		Convey("Then the state reflects the hits", func() {
			st := c.Snapshot()
			So(st.SearchActive, ShouldBeTrue)
			So(st.SearchHits, ShouldResemble, []string{"alice", "alina"})
		})

		Convey("When the selection changes, search survives", func() {
			c.OnSelectionChanged()
			So(c.Snapshot().SearchActive, ShouldBeTrue)
		})

		Convey("When the graph rebuilds, search survives", func() {
			c.OnRebuild()
			So(c.Snapshot().SearchActive, ShouldBeTrue)
		})

		Convey("When cleared explicitly", func() {
			c.ClearSearch()
			st := c.Snapshot()
			So(st.SearchActive, ShouldBeFalse)
			So(st.SearchHits, ShouldBeEmpty)
		})

		Convey("When a search finds nothing it still activates", func() {
			c.ActivateSearch("zzz", nil)
			st := c.Snapshot()
			So(st.SearchActive, ShouldBeTrue)
			So(st.SearchKey, ShouldEqual, "zzz")
			So(st.SearchHits, ShouldBeEmpty)
		})
	})
}

func TestToggleCycle(t *testing.T) {
	Convey("Given a clearing cycle over rendered trustlines", t, func() {
		c := NewController()

		// Debt legs run debtor -> creditor; trustlines run the other way.
		cycle := model.ClearingCycle{Legs: []model.CycleLeg{
			{Debtor: "alice", Creditor: "bob", Equivalent: "USD", Amount: "10"},
			{Debtor: "bob", Creditor: "carol", Equivalent: "USD", Amount: "10"},
			{Debtor: "carol", Creditor: "alice", Equivalent: "USD", Amount: "10"},
		}}
		rendered := []elements.Edge{
			{ID: "USD|bob->alice"},
			{ID: "USD|carol->bob"},
			// carol's incoming line is not rendered.
		}

		Convey("When toggled on", func() {
			active := c.ToggleCycle(cycle, rendered)
			So(active, ShouldBeTrue)

			st := c.Snapshot()
			So(st.CycleActive, ShouldBeTrue)

			Convey("Then legs map to direction-inverted trustline ids", func() {
				So(st.CycleEdges, ShouldResemble, []string{"USD|bob->alice", "USD|carol->bob"})
			})
		})

		Convey("When toggled twice with the same cycle", func() {
			c.ToggleCycle(cycle, rendered)
			active := c.ToggleCycle(cycle, rendered)
			So(active, ShouldBeFalse)
			So(c.Snapshot().CycleActive, ShouldBeFalse)
			So(c.Snapshot().CycleEdges, ShouldBeEmpty)
		})

		Convey("When a different cycle is toggled while one is active", func() {
			c.ToggleCycle(cycle, rendered)
			other := model.ClearingCycle{Legs: []model.CycleLeg{
				{Debtor: "bob", Creditor: "alice", Equivalent: "USD", Amount: "5"},
			}}
			active := c.ToggleCycle(other, rendered)
			So(active, ShouldBeTrue)
			So(c.Snapshot().CycleKey, ShouldEqual, CycleKey(other))
		})

		Convey("When the selection changes, the cycle overlay clears", func() {
			c.ToggleCycle(cycle, rendered)
			c.OnSelectionChanged()
			So(c.Snapshot().CycleActive, ShouldBeFalse)
		})
	})
}

func TestToggleConnection(t *testing.T) {
	Convey("Given a rendered connection", t, func() {
		c := NewController()
		rendered := []elements.Edge{
			{ID: "USD|alice->bob", Source: "alice", Target: "bob"},
		}

		Convey("When toggled on", func() {
			active := c.ToggleConnection("alice", "bob", "USD", rendered)
			So(active, ShouldBeTrue)

			st := c.Snapshot()
			So(st.ConnectionActive, ShouldBeTrue)
			So(st.ConnectionEdge, ShouldEqual, "USD|alice->bob")
			So(st.ConnectionEndpoints, ShouldResemble, []string{"alice", "bob"})
		})

		Convey("When toggled twice", func() {
			c.ToggleConnection("alice", "bob", "USD", rendered)
			active := c.ToggleConnection("alice", "bob", "USD", rendered)
			So(active, ShouldBeFalse)
			So(c.Snapshot().ConnectionActive, ShouldBeFalse)
		})

		Convey("When the edge is not rendered, the overlay still activates", func() {
			active := c.ToggleConnection("alice", "ghost", "USD", rendered)
			So(active, ShouldBeTrue)
			So(c.Snapshot().ConnectionEdge, ShouldBeEmpty)
		})

		Convey("When the graph rebuilds, the connection overlay clears", func() {
			c.ToggleConnection("alice", "bob", "USD", rendered)
			c.OnRebuild()
			So(c.Snapshot().ConnectionActive, ShouldBeFalse)
		})
	})
}
