package elements

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/creditmesh/netview/internal/domain/filter"
	"github.com/creditmesh/netview/internal/domain/model"
)

func TestIsBottleneck(t *testing.T) {
	Convey("Given the 0.10 threshold", t, func() {
		threshold := "0.10"

		Convey("When a line has used 95 of 100", func() {
			t1 := model.Trustline{
				Equivalent: "USD", From: "a", To: "b",
				Limit: "100", Used: "95", Available: "5",
				Status: model.TrustlineActive,
			}
			So(IsBottleneck(t1, threshold), ShouldBeTrue)
		})

		Convey("When a line has used 10 of 50", func() {
			t2 := model.Trustline{
				Equivalent: "USD", From: "b", To: "c",
				Limit: "50", Used: "10", Available: "40",
				Status: model.TrustlineActive,
			}
			So(IsBottleneck(t2, threshold), ShouldBeFalse)
		})

		Convey("When the limit is zero", func() {
			t3 := model.Trustline{
				Equivalent: "USD", From: "a", To: "c",
				Limit: "0", Used: "0", Available: "0",
				Status: model.TrustlineActive,
			}
			So(IsBottleneck(t3, threshold), ShouldBeTrue)
		})

		Convey("When the line is not active", func() {
			t4 := model.Trustline{
				Equivalent: "USD", From: "a", To: "b",
				Limit: "100", Used: "95", Available: "5",
				Status: model.TrustlineFrozen,
			}
			So(IsBottleneck(t4, threshold), ShouldBeFalse)
		})
	})
}

func TestIncidentRatios(t *testing.T) {
	Convey("Given incidents for one initiator", t, func() {
		incidents := []model.Incident{
			{TxID: "t1", InitiatorPID: "alice", Equivalent: "USD", AgeSeconds: 30, SLASeconds: 60},
			{TxID: "t2", InitiatorPID: "alice", Equivalent: "USD", AgeSeconds: 90, SLASeconds: 60},
			{TxID: "t3", InitiatorPID: "bob", Equivalent: "EUR", AgeSeconds: 10, SLASeconds: 0},
		}

		Convey("When computing ratios across all equivalents", func() {
			ratios := IncidentRatios(incidents, "ALL")

			Convey("Then the maximum ratio per initiator wins", func() {
				So(ratios["alice"], ShouldEqual, 1.5)
			})

			Convey("Then a non-positive SLA contributes zero but still registers", func() {
				r, ok := ratios["bob"]
				So(ok, ShouldBeTrue)
				So(r, ShouldEqual, 0)
			})
		})

		Convey("When scoped to one equivalent", func() {
			ratios := IncidentRatios(incidents, "EUR")
			So(ratios, ShouldNotContainKey, "alice")
			So(ratios, ShouldContainKey, "bob")
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a filtered result with incidents", t, func() {
		res := filter.Result{
			Nodes: []model.Participant{
				{PID: "alice", DisplayName: "Alice", Type: model.TypePerson, Status: model.StatusActive},
				{PID: "bob", DisplayName: "Bob", Type: model.TypeBusiness, Status: model.StatusFrozen},
			},
			Edges: []model.Trustline{
				{
					Equivalent: "USD", From: "alice", To: "bob",
					Limit: "100", Used: "95", Available: "5",
					Status: model.TrustlineActive,
				},
			},
		}
		incidents := []model.Incident{
			{TxID: "t1", InitiatorPID: "bob", Equivalent: "USD", AgeSeconds: 10, SLASeconds: 0},
		}

		nodes, edges := Build(res, incidents, "ALL", "0.10")

		Convey("Then nodes carry classification tags", func() {
			So(nodes, ShouldHaveLength, 2)
			So(nodes[0].Tags, ShouldResemble, []string{"status-active", "type-person"})
		})

		Convey("Then an initiator with any incident is tagged even at ratio zero", func() {
			So(nodes[1].IncidentRatio, ShouldEqual, 0)
			So(nodes[1].Tags, ShouldContain, "has-incident")
		})

		Convey("Then edges carry identity and the bottleneck flag", func() {
			So(edges, ShouldHaveLength, 1)
			So(edges[0].ID, ShouldEqual, "USD|alice->bob")
			So(edges[0].Bottleneck, ShouldBeTrue)
		})
	})
}
