package snapgen

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/domain/money"
)

func TestDeterminism(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		a := New(WithSeed(7), WithParticipants(50), WithNow(now)).Generate()
		b := New(WithSeed(7), WithParticipants(50), WithNow(now)).Generate()

		Convey("Then the snapshots are identical", func() {
			So(b, ShouldResemble, a)
		})

		Convey("When the seed differs, pids differ", func() {
			c := New(WithSeed(8), WithParticipants(50), WithNow(now)).Generate()
			So(c.Participants[0].PID, ShouldNotEqual, a.Participants[0].PID)
		})
	})
}

func TestGeneratedInvariants(t *testing.T) {
	Convey("Given a generated snapshot", t, func() {
		snap := New(WithSeed(42), WithParticipants(60)).Generate()
		index := snap.ParticipantIndex()

		Convey("Then every trustline references known participants", func() {
			for _, tl := range snap.Trustlines {
				So(index, ShouldContainKey, tl.From)
				So(index, ShouldContainKey, tl.To)
				So(tl.From, ShouldNotEqual, tl.To)
			}
		})

		Convey("Then available equals limit minus used, exactly", func() {
			for _, tl := range snap.Trustlines {
				used, err := money.Add(tl.Used, tl.Available)
				So(err, ShouldBeNil)
				cmp, err := money.Compare(used, tl.Limit)
				So(err, ShouldBeNil)
				So(cmp, ShouldEqual, 0)
			}
		})

		Convey("Then trustline identities are unique", func() {
			seen := make(map[string]bool)
			for _, tl := range snap.Trustlines {
				So(seen[tl.ID()], ShouldBeFalse)
				seen[tl.ID()] = true
			}
		})

		Convey("Then debts mirror used capacity in the inverse direction", func() {
			lines := make(map[string]model.Trustline)
			for _, tl := range snap.Trustlines {
				lines[tl.Equivalent+"|"+tl.From+"|"+tl.To] = tl
			}
			for _, d := range snap.Debts {
				tl, ok := lines[d.Equivalent+"|"+d.Creditor+"|"+d.Debtor]
				So(ok, ShouldBeTrue)
				So(d.Amount, ShouldEqual, tl.Used)
			}
		})

		Convey("Then clearing cycles close on themselves", func() {
			So(snap.ClearingCycles, ShouldNotBeEmpty)
			for _, c := range snap.ClearingCycles {
				So(len(c.Legs), ShouldBeGreaterThanOrEqualTo, 3)
				last := c.Legs[len(c.Legs)-1]
				So(last.Creditor, ShouldEqual, c.Legs[0].Debtor)
				for i := 1; i < len(c.Legs); i++ {
					So(c.Legs[i].Debtor, ShouldEqual, c.Legs[i-1].Creditor)
				}
			}
		})

		Convey("Then the equivalent catalog is present", func() {
			So(snap.Equivalents, ShouldHaveLength, 3)
		})

		Convey("Then the population mixes all three participant types", func() {
			counts := make(map[model.ParticipantType]int)
			for _, p := range snap.Participants {
				counts[p.Type]++
			}
			So(counts[model.TypeHub], ShouldBeGreaterThan, 0)
			So(counts[model.TypeBusiness], ShouldBeGreaterThan, 0)
			So(counts[model.TypePerson], ShouldBeGreaterThan, 0)
		})
	})
}
