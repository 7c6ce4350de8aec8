package filter

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/creditmesh/netview/internal/domain/model"
)

func participant(pid string, typ model.ParticipantType) model.Participant {
	return model.Participant{PID: pid, DisplayName: "name-" + pid, Type: typ, Status: model.StatusActive}
}

func trustline(eq, from, to string, status model.TrustlineStatus) model.Trustline {
	return model.Trustline{
		Equivalent: eq,
		From:       from,
		To:         to,
		Limit:      "100",
		Used:       "20",
		Available:  "80",
		Status:     status,
	}
}

func TestVisibleEdges(t *testing.T) {
	Convey("Given participants of mixed types", t, func() {
		participants := []model.Participant{
			participant("alice", model.TypePerson),
			participant("acme", model.TypeBusiness),
			participant("hub-1", model.TypeHub),
		}
		trustlines := []model.Trustline{
			trustline("USD", "alice", "acme", model.TrustlineActive),
			trustline("USD", "acme", "hub-1", model.TrustlineActive),
			trustline("EUR", "alice", "hub-1", model.TrustlineFrozen),
		}

		Convey("When no constraints are set", func() {
			visible, hasAny := VisibleEdges(participants, trustlines, Config{})
			So(visible, ShouldHaveLength, 3)
			So(hasAny, ShouldContainKey, "alice")
			So(hasAny, ShouldContainKey, "acme")
			So(hasAny, ShouldContainKey, "hub-1")
		})

		Convey("When an equivalent scope is set", func() {
			visible, _ := VisibleEdges(participants, trustlines, Config{Equivalent: "EUR"})
			So(visible, ShouldHaveLength, 1)
			So(visible[0].Equivalent, ShouldEqual, "EUR")
		})

		Convey("When a status constraint is set", func() {
			visible, _ := VisibleEdges(participants, trustlines, Config{
				Statuses: map[model.TrustlineStatus]bool{model.TrustlineActive: true},
			})
			So(visible, ShouldHaveLength, 2)
		})

		Convey("When a single type is selected, cross-type edges drop", func() {
			visible, hasAny := VisibleEdges(participants, trustlines, Config{
				Types: map[model.ParticipantType]bool{model.TypePerson: true},
			})
			So(visible, ShouldBeEmpty)

			// The node still has candidate edges, so it is not a true
			// isolate even though nothing it touches is visible.
			So(hasAny["alice"], ShouldBeTrue)
		})

		Convey("When multiple types are selected, cross-type edges between them survive", func() {
			visible, _ := VisibleEdges(participants, trustlines, Config{
				Types: map[model.ParticipantType]bool{
					model.TypePerson:   true,
					model.TypeBusiness: true,
				},
			})
			So(visible, ShouldHaveLength, 1)
			So(visible[0].From, ShouldEqual, "alice")
			So(visible[0].To, ShouldEqual, "acme")
		})
	})
}

func TestAssemble(t *testing.T) {
	Convey("Given a filtered edge set", t, func() {
		participants := []model.Participant{
			participant("alice", model.TypePerson),
			participant("bob", model.TypePerson),
			participant("carol", model.TypePerson),
			participant("loner", model.TypePerson),
		}
		trustlines := []model.Trustline{
			trustline("USD", "alice", "bob", model.TrustlineActive),
			trustline("USD", "bob", "carol", model.TrustlineActive),
		}

		Convey("When nothing is hidden, true isolates are kept", func() {
			res := Apply(participants, trustlines, Config{})
			So(res.Nodes, ShouldHaveLength, 4)
		})

		Convey("When isolates are hidden, only connected nodes survive", func() {
			res := Apply(participants, trustlines, Config{HideIsolates: true})
			So(res.Nodes, ShouldHaveLength, 3)
			for _, n := range res.Nodes {
				So(n.PID, ShouldNotEqual, "loner")
			}
		})

		Convey("When a node's only edges go to a hidden type", func() {
			mixed := []model.Participant{
				participant("alice", model.TypePerson),
				participant("acme", model.TypeBusiness),
			}
			edges := []model.Trustline{trustline("USD", "alice", "acme", model.TrustlineActive)}

			res := Apply(mixed, edges, Config{
				Types: map[model.ParticipantType]bool{model.TypePerson: true},
			})

			// alice is not emitted as an isolate; her edge exists, it is
			// just not visible.
			So(res.Nodes, ShouldBeEmpty)
			So(res.Edges, ShouldBeEmpty)
		})

		Convey("When min-degree pruning applies", func() {
			res := Apply(participants, trustlines, Config{MinDegree: 2, HideIsolates: true})
			So(res.Nodes, ShouldHaveLength, 1)
			So(res.Nodes[0].PID, ShouldEqual, "bob")
			// Pruning orphaned both edges.
			So(res.Edges, ShouldBeEmpty)
		})

		Convey("When the pinned pid would be pruned, it is exempt", func() {
			res := Apply(participants, trustlines, Config{
				MinDegree:    2,
				HideIsolates: true,
				PinnedPID:    "alice",
			})
			pids := make(map[string]bool)
			for _, n := range res.Nodes {
				pids[n.PID] = true
			}
			So(pids["alice"], ShouldBeTrue)
			So(pids["bob"], ShouldBeTrue)
			// The alice-bob edge survives because both endpoints do.
			So(res.Edges, ShouldHaveLength, 1)
		})

		Convey("When a focus restriction is applied", func() {
			res := Assemble(participants, trustlines, map[string]bool{}, Config{MinDegree: 5},
				Restriction{
					Keep:       map[string]bool{"alice": true, "bob": true},
					Root:       "alice",
					SkipDegree: true,
				})
			So(res.Nodes, ShouldHaveLength, 2)
			So(res.Edges, ShouldHaveLength, 1)
		})

		Convey("When an edge references an unknown participant", func() {
			edges := []model.Trustline{trustline("USD", "alice", "ghost", model.TrustlineActive)}
			res := Apply(participants[:1], edges, Config{})
			for _, e := range res.Edges {
				So(e.To, ShouldNotEqual, "ghost")
			}
			for _, n := range res.Nodes {
				So(n.PID, ShouldNotEqual, "ghost")
			}
		})

		Convey("Then no output edge ever references a dropped node", func() {
			configs := []Config{
				{},
				{HideIsolates: true},
				{MinDegree: 1},
				{MinDegree: 2},
				{MinDegree: 3, PinnedPID: "carol"},
				{Equivalent: "USD", MinDegree: 2},
			}
			for _, cfg := range configs {
				res := Apply(participants, trustlines, cfg)
				nodeSet := make(map[string]bool, len(res.Nodes))
				for _, n := range res.Nodes {
					nodeSet[n.PID] = true
				}
				for _, e := range res.Edges {
					So(nodeSet[e.From], ShouldBeTrue)
					So(nodeSet[e.To], ShouldBeTrue)
				}
			}
		})

		Convey("Then identical inputs produce identical node order", func() {
			a := Apply(participants, trustlines, Config{})
			b := Apply(participants, trustlines, Config{})
			So(a.Nodes, ShouldResemble, b.Nodes)
			So(a.Edges, ShouldResemble, b.Edges)
		})
	})
}
