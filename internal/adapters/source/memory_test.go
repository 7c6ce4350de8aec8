package source

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/creditmesh/netview/internal/domain/model"
)

func memoryDataset() *model.Snapshot {
	return &model.Snapshot{
		Participants: []model.Participant{
			{PID: "alice", Type: model.TypePerson, Status: model.StatusActive},
			{PID: "bob", Type: model.TypePerson, Status: model.StatusActive},
			{PID: "carol", Type: model.TypePerson, Status: model.StatusActive},
			{PID: "dave", Type: model.TypePerson, Status: model.StatusActive},
		},
		Trustlines: []model.Trustline{
			{Equivalent: "USD", From: "alice", To: "bob", Limit: "10", Used: "0", Available: "10", Status: model.TrustlineActive},
			{Equivalent: "USD", From: "bob", To: "carol", Limit: "10", Used: "0", Available: "10", Status: model.TrustlineActive},
			{Equivalent: "EUR", From: "carol", To: "dave", Limit: "10", Used: "0", Available: "10", Status: model.TrustlineActive},
		},
		Debts: []model.Debt{
			{Debtor: "bob", Creditor: "alice", Equivalent: "USD", Amount: "5"},
			{Debtor: "dave", Creditor: "carol", Equivalent: "EUR", Amount: "5"},
		},
		ClearingCycles: []model.ClearingCycle{
			{Legs: []model.CycleLeg{
				{Debtor: "alice", Creditor: "bob", Equivalent: "USD", Amount: "1"},
				{Debtor: "bob", Creditor: "alice", Equivalent: "USD", Amount: "1"},
			}},
		},
	}
}

func TestLoadSnapshot(t *testing.T) {
	Convey("Given a memory client", t, func() {
		client := NewMemoryClient(memoryDataset())
		ctx := context.Background()

		Convey("When loading without filters", func() {
			snap, err := client.LoadSnapshot(ctx, Filters{})
			So(err, ShouldBeNil)
			So(snap.Participants, ShouldHaveLength, 4)
			So(snap.Trustlines, ShouldHaveLength, 3)
		})

		Convey("When scoping to one equivalent", func() {
			snap, err := client.LoadSnapshot(ctx, Filters{Equivalent: "EUR"})
			So(err, ShouldBeNil)
			So(snap.Trustlines, ShouldHaveLength, 1)
			So(snap.Debts, ShouldHaveLength, 1)
			So(snap.Debts[0].Debtor, ShouldEqual, "dave")

			// Participants are not equivalent-scoped; edges are.
			So(snap.Participants, ShouldHaveLength, 4)
		})

		Convey("When focusing on a participant", func() {
			snap, err := client.LoadSnapshot(ctx, Filters{FocusPID: "bob", FocusDepth: 1})
			So(err, ShouldBeNil)

			pids := make(map[string]bool)
			for _, p := range snap.Participants {
				pids[p.PID] = true
			}
			So(pids, ShouldResemble, map[string]bool{"alice": true, "bob": true, "carol": true})
			So(snap.Trustlines, ShouldHaveLength, 2)
		})

		Convey("When the caller mutates the returned snapshot", func() {
			snap, err := client.LoadSnapshot(ctx, Filters{})
			So(err, ShouldBeNil)
			snap.Participants[0].PID = "mutated"

			again, err := client.LoadSnapshot(ctx, Filters{})
			So(err, ShouldBeNil)
			So(again.Participants[0].PID, ShouldEqual, "alice")
		})

		Convey("When the context is canceled", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := client.LoadSnapshot(canceled, Filters{})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFetchClearingCycles(t *testing.T) {
	Convey("Given a memory client with cycles", t, func() {
		client := NewMemoryClient(memoryDataset())
		ctx := context.Background()

		Convey("When the participant appears in a cycle", func() {
			cycles, err := client.FetchClearingCycles(ctx, "alice")
			So(err, ShouldBeNil)
			So(cycles, ShouldHaveLength, 1)
		})

		Convey("When the participant appears in no cycle", func() {
			cycles, err := client.FetchClearingCycles(ctx, "dave")
			So(err, ShouldBeNil)
			So(cycles, ShouldBeEmpty)
		})
	})
}

func TestReplace(t *testing.T) {
	Convey("Given a memory client", t, func() {
		client := NewMemoryClient(memoryDataset())
		ctx := context.Background()

		Convey("When the dataset is replaced", func() {
			client.Replace(&model.Snapshot{
				Participants: []model.Participant{{PID: "solo"}},
			})
			snap, err := client.LoadSnapshot(ctx, Filters{})
			So(err, ShouldBeNil)
			So(snap.Participants, ShouldHaveLength, 1)
			So(snap.Participants[0].PID, ShouldEqual, "solo")
		})
	})
}
