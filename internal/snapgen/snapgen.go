// Package snapgen produces deterministic synthetic snapshots of a mutual-credit
// network. It backs the built-in demo source and the integration tests.
package snapgen

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/creditmesh/netview/internal/domain/model"
)

// Default generator sizes.
const (
	defaultSeed          = 42
	defaultParticipants  = 120
	defaultHubShare      = 0.05
	defaultBusinessShare = 0.25
	defaultEdgesPerNode  = 3
	defaultIncidents     = 25
	defaultAuditPerPID   = 2
	defaultTransactions  = 400
	defaultCycles        = 8
	maxLimitUnits        = 5000
	historyDays          = 120
)

// Generator builds synthetic snapshots from a seeded random source.
type Generator struct {
	seed         int64
	participants int
	edgesPerNode int
	incidents    int
	transactions int
	cycles       int
	equivalents  []model.Equivalent
	now          time.Time
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed sets the random seed; equal seeds produce equal snapshots.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.seed = seed }
}

// WithParticipants sets the participant count.
func WithParticipants(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.participants = n
		}
	}
}

// WithEdgesPerNode sets the average trustline fan-out.
func WithEdgesPerNode(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.edgesPerNode = n
		}
	}
}

// WithNow pins the generation timestamp so activity windows are reproducible.
func WithNow(now time.Time) Option {
	return func(g *Generator) {
		if !now.IsZero() {
			g.now = now
		}
	}
}

// New creates a Generator with configuration options.
func New(opts ...Option) *Generator {
	g := &Generator{
		seed:         defaultSeed,
		participants: defaultParticipants,
		edgesPerNode: defaultEdgesPerNode,
		incidents:    defaultIncidents,
		transactions: defaultTransactions,
		cycles:       defaultCycles,
		equivalents: []model.Equivalent{
			{Code: "USD", Precision: 2},
			{Code: "EUR", Precision: 2},
			{Code: "HRS", Precision: 1},
		},
		now: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a complete snapshot.
func (g *Generator) Generate() *model.Snapshot {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic seed for reproducible demo data

	snap := &model.Snapshot{Equivalents: append([]model.Equivalent(nil), g.equivalents...)}

	// Participants: a thin layer of hubs, a band of businesses, the rest
	// persons. A few land in non-active lifecycle states.
	statuses := []model.ParticipantStatus{
		model.StatusActive, model.StatusActive, model.StatusActive, model.StatusActive,
		model.StatusActive, model.StatusActive, model.StatusActive, model.StatusFrozen,
		model.StatusSuspended, model.StatusBanned,
	}
	hubCount := int(float64(g.participants) * defaultHubShare)
	if hubCount < 1 {
		hubCount = 1
	}
	businessCount := int(float64(g.participants) * defaultBusinessShare)
	for i := 0; i < g.participants; i++ {
		typ := model.TypePerson
		prefix := "person"
		switch {
		case i < hubCount:
			typ = model.TypeHub
			prefix = "hub"
		case i < hubCount+businessCount:
			typ = model.TypeBusiness
			prefix = "biz"
		}
		pid := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("pid-%d-%d", g.seed, i))).String()
		snap.Participants = append(snap.Participants, model.Participant{
			PID:         pid,
			DisplayName: fmt.Sprintf("%s-%03d", prefix, i),
			Type:        typ,
			Status:      statuses[rng.Intn(len(statuses))],
		})
	}

	// Trustlines: hub-biased mesh. Roughly edgesPerNode lines per
	// participant, with hubs drawing extra connections.
	seen := make(map[string]bool)
	edgeTarget := g.participants * g.edgesPerNode
	for attempts := 0; len(snap.Trustlines) < edgeTarget && attempts < edgeTarget*20; attempts++ {
		from := g.pickPID(rng, snap, true)
		to := g.pickPID(rng, snap, false)
		if from == to {
			continue
		}
		eq := snap.Equivalents[rng.Intn(len(snap.Equivalents))]
		key := eq.Code + "|" + from + "->" + to
		if seen[key] {
			continue
		}
		seen[key] = true

		limitUnits := rng.Intn(maxLimitUnits) + 1
		usedUnits := rng.Intn(limitUnits + 1)
		status := model.TrustlineActive
		switch rng.Intn(12) {
		case 0:
			status = model.TrustlineFrozen
		case 1:
			status = model.TrustlineClosed
		}

		snap.Trustlines = append(snap.Trustlines, model.Trustline{
			Equivalent: eq.Code,
			From:       from,
			To:         to,
			Limit:      units(limitUnits, eq.Precision),
			Used:       units(usedUnits, eq.Precision),
			Available:  units(limitUnits-usedUnits, eq.Precision),
			Status:     status,
			CreatedAt:  g.now.AddDate(0, 0, -rng.Intn(historyDays)),
		})

		// Used capacity implies a debt in the inverse direction:
		// the debtor owes the creditor.
		if usedUnits > 0 && status == model.TrustlineActive {
			snap.Debts = append(snap.Debts, model.Debt{
				Debtor:     to,
				Creditor:   from,
				Equivalent: eq.Code,
				Amount:     units(usedUnits, eq.Precision),
			})
		}
	}

	g.generateIncidents(rng, snap)
	g.generateAuditLog(rng, snap)
	g.generateTransactions(rng, snap)
	g.generateCycles(rng, snap)

	return snap
}

// pickPID picks a participant, biasing creditors toward hubs.
func (g *Generator) pickPID(rng *rand.Rand, snap *model.Snapshot, hubBias bool) string {
	if hubBias && rng.Intn(3) == 0 {
		for i := 0; i < 10; i++ {
			p := snap.Participants[rng.Intn(len(snap.Participants))]
			if p.Type == model.TypeHub {
				return p.PID
			}
		}
	}
	return snap.Participants[rng.Intn(len(snap.Participants))].PID
}

func (g *Generator) generateIncidents(rng *rand.Rand, snap *model.Snapshot) {
	states := []string{"pending", "stuck", "retrying"}
	for i := 0; i < g.incidents; i++ {
		p := snap.Participants[rng.Intn(len(snap.Participants))]
		eq := snap.Equivalents[rng.Intn(len(snap.Equivalents))]
		sla := int64(3600 * (1 + rng.Intn(24)))
		snap.Incidents = append(snap.Incidents, model.Incident{
			TxID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("tx-%d-%d", g.seed, i))).String(),
			State:        states[rng.Intn(len(states))],
			InitiatorPID: p.PID,
			Equivalent:   eq.Code,
			AgeSeconds:   int64(rng.Intn(int(sla * 2))),
			SLASeconds:   sla,
		})
	}
}

func (g *Generator) generateAuditLog(rng *rand.Rand, snap *model.Snapshot) {
	actions := []string{"trustline.update", "participant.review", "limit.change", "freeze", "unfreeze"}
	for _, p := range snap.Participants {
		for i := 0; i < defaultAuditPerPID; i++ {
			snap.AuditLog = append(snap.AuditLog, model.AuditRecord{
				PID:       p.PID,
				Action:    actions[rng.Intn(len(actions))],
				Timestamp: g.now.AddDate(0, 0, -rng.Intn(historyDays)),
			})
		}
	}
}

func (g *Generator) generateTransactions(rng *rand.Rand, snap *model.Snapshot) {
	if len(snap.Trustlines) == 0 {
		return
	}
	for i := 0; i < g.transactions; i++ {
		t := snap.Trustlines[rng.Intn(len(snap.Trustlines))]
		eq := g.precisionOf(t.Equivalent)
		snap.Transactions = append(snap.Transactions, model.Transaction{
			TxID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("settled-%d-%d", g.seed, i))).String(),
			From:       t.To,
			To:         t.From,
			Equivalent: t.Equivalent,
			Amount:     units(rng.Intn(200)+1, eq),
			Timestamp:  g.now.AddDate(0, 0, -rng.Intn(historyDays)),
		})
	}
}

// generateCycles emits closed triangles over existing debts where possible,
// falling back to synthetic loops among random participants.
func (g *Generator) generateCycles(rng *rand.Rand, snap *model.Snapshot) {
	if len(snap.Participants) < 3 {
		return
	}
	for i := 0; i < g.cycles; i++ {
		a := snap.Participants[rng.Intn(len(snap.Participants))].PID
		b := snap.Participants[rng.Intn(len(snap.Participants))].PID
		c := snap.Participants[rng.Intn(len(snap.Participants))].PID
		if a == b || b == c || a == c {
			continue
		}
		eq := snap.Equivalents[rng.Intn(len(snap.Equivalents))]
		amt := units(rng.Intn(100)+1, eq.Precision)
		snap.ClearingCycles = append(snap.ClearingCycles, model.ClearingCycle{
			Legs: []model.CycleLeg{
				{Debtor: a, Creditor: b, Equivalent: eq.Code, Amount: amt},
				{Debtor: b, Creditor: c, Equivalent: eq.Code, Amount: amt},
				{Debtor: c, Creditor: a, Equivalent: eq.Code, Amount: amt},
			},
		})
	}
}

func (g *Generator) precisionOf(code string) int {
	for _, eq := range g.equivalents {
		if eq.Code == code {
			return eq.Precision
		}
	}
	return 2
}

// units renders n whole units as a decimal string at the given precision.
func units(n, precision int) string {
	if precision <= 0 {
		return strconv.Itoa(n)
	}
	return strconv.Itoa(n) + "." + zeros(precision)
}

func zeros(n int) string {
	s := make([]byte, n)
	for i := range s {
		s[i] = '0'
	}
	return string(s)
}
