// Package analytics computes financial metrics for a selected participant
// within an equivalent scope: rank, concentration, capacity, activity, and the
// net-balance distribution.
//
// Every monetary aggregation and comparison runs on exact decimals; only
// count-based fractions (percentiles) use floating point.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/creditmesh/netview/internal/domain/elements"
	"github.com/creditmesh/netview/internal/domain/model"
	"github.com/creditmesh/netview/internal/domain/money"
)

// Default engine configuration constants.
const (
	defaultBucketCount = 10
	sharePrecision     = 8
	ratioPrecision     = 4
	top5Count          = 5
)

// defaultWindowDays are the rolling activity windows, in days.
var defaultWindowDays = []int{7, 30, 90} //nolint:gochecknoglobals // package default, copied per engine

// Input identifies the participant and equivalent scope to analyze.
type Input struct {
	PID   string
	Scope string // "" or "ALL" combines all equivalents
}

// RankReport places the participant's net balance among all participants.
type RankReport struct {
	PID        string  `json:"pid"`
	Net        string  `json:"net"`
	Rank       int     `json:"rank"`
	Population int     `json:"population"`
	Percentile float64 `json:"percentile"`
}

// Share is one counterparty's portion of the participant's debt exposure.
type Share struct {
	CounterpartyPID string `json:"counterparty_pid"`
	Amount          string `json:"amount"`
	Share           string `json:"share"`
}

// ConcentrationSide reports exposure concentration in one direction.
type ConcentrationSide struct {
	Shares []Share `json:"shares"`
	Top1   string  `json:"top1_share"`
	Top5   string  `json:"top5_share"`
	HHI    string  `json:"hhi"`
}

// ConcentrationReport covers both exposure directions.
type ConcentrationReport struct {
	AsCreditor ConcentrationSide `json:"as_creditor"`
	AsDebtor   ConcentrationSide `json:"as_debtor"`
}

// CapacitySide aggregates trustlines in one direction.
type CapacitySide struct {
	Count     int    `json:"count"`
	Limit     string `json:"limit"`
	Used      string `json:"used"`
	Available string `json:"available"`
}

// CapacityReport aggregates the trustlines touching the participant.
type CapacityReport struct {
	Incoming    CapacitySide    `json:"incoming"`
	Outgoing    CapacitySide    `json:"outgoing"`
	TotalLimit  string          `json:"total_limit"`
	TotalUsed   string          `json:"total_used"`
	UsedPct     string          `json:"used_pct"`
	Bottlenecks []elements.Edge `json:"bottlenecks"`
}

// ActivityWindow counts records touching the participant within one rolling
// window, keyed by each record's own timestamp.
type ActivityWindow struct {
	Days         int `json:"days"`
	Trustlines   int `json:"trustlines"`
	Incidents    int `json:"incidents"`
	AuditRecords int `json:"audit_records"`
	Transactions int `json:"transactions"`
}

// Bucket is one histogram bucket of the net-balance distribution.
type Bucket struct {
	Lower string `json:"lower"`
	Upper string `json:"upper"`
	Count int    `json:"count"`
}

// DistributionReport is the net-balance histogram over all participants.
type DistributionReport struct {
	Min     string   `json:"min"`
	Max     string   `json:"max"`
	Buckets []Bucket `json:"buckets"`
}

// Report bundles all metrics for one participant and scope.
type Report struct {
	Rank          RankReport          `json:"rank"`
	Concentration ConcentrationReport `json:"concentration"`
	Capacity      CapacityReport      `json:"capacity"`
	Activity      []ActivityWindow    `json:"activity"`
	Distribution  DistributionReport  `json:"distribution"`
}

// Engine computes participant analytics from a snapshot. Implementations are
// pure and read-only; callers re-run Analyze after any relevant change.
type Engine interface {
	Analyze(ctx context.Context, snap *model.Snapshot, in Input) (Report, error)
}

// Option applies a configuration option to the InMemoryEngine.
type Option func(*InMemoryEngine)

// WithBucketCount sets the histogram bucket count.
func WithBucketCount(n int) Option {
	return func(e *InMemoryEngine) {
		if n > 0 {
			e.bucketCount = n
		}
	}
}

// WithWindowDays sets the rolling activity windows.
func WithWindowDays(days []int) Option {
	return func(e *InMemoryEngine) {
		if len(days) > 0 {
			e.windowDays = append([]int(nil), days...)
		}
	}
}

// WithBottleneckThreshold sets the available/limit threshold used for the
// capacity bottleneck list.
func WithBottleneckThreshold(threshold string) Option {
	return func(e *InMemoryEngine) {
		if threshold != "" {
			e.threshold = threshold
		}
	}
}

// WithClock injects the "now" used for activity windows.
func WithClock(now func() time.Time) Option {
	return func(e *InMemoryEngine) {
		if now != nil {
			e.now = now
		}
	}
}

// InMemoryEngine implements Engine over an in-memory snapshot.
type InMemoryEngine struct {
	bucketCount int
	windowDays  []int
	threshold   string
	now         func() time.Time
}

// NewInMemoryEngine creates an analytics engine with configuration options.
func NewInMemoryEngine(opts ...Option) *InMemoryEngine {
	e := &InMemoryEngine{
		bucketCount: defaultBucketCount,
		windowDays:  append([]int(nil), defaultWindowDays...),
		threshold:   "0.10",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze computes the full report for the input participant and scope.
func (e *InMemoryEngine) Analyze(ctx context.Context, snap *model.Snapshot, in Input) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	nets := netBalances(snap, in.Scope)

	return Report{
		Rank:          rank(in.PID, snap, nets),
		Concentration: concentration(in.PID, snap, in.Scope),
		Capacity:      e.capacity(in.PID, snap, in.Scope),
		Activity:      e.activity(in.PID, snap, in.Scope),
		Distribution:  e.distribution(snap, nets),
	}, nil
}

/// netBalances computes each participant's net balance in scope: debts where
// the participant is creditor add, debts where it is debtor subtract.
func netBalances(snap *model.Snapshot, scope string) map[string]decimal.Decimal {
	nets := make(map[string]decimal.Decimal, len(snap.Participants))
	for _, p := range snap.Participants {
		nets[p.PID] = decimal.Zero
	}
	for _, d := range snap.Debts {
		if !model.EquivalentScope(scope, d.Equivalent) {
			continue
		}
		amt := money.ParseOrZero(d.Amount)
		if cur, ok := nets[d.Creditor]; ok {
			nets[d.Creditor] = cur.Add(amt)
		}
		if cur, ok := nets[d.Debtor]; ok {
			nets[d.Debtor] = cur.Sub(amt)
		}
	}
	return nets
}

func rank(pid string, snap *model.Snapshot, nets map[string]decimal.Decimal) RankReport {
	own, ok := nets[pid]
	if !ok {
		own = decimal.Zero
	}

	population := len(snap.Participants)
	lower, higher := 0, 0
	for _, p := range snap.Participants {
		if p.PID == pid {
			continue
		}
		switch nets[p.PID].Cmp(own) {
		case -1:
			lower++
		case 1:
			higher++
		}
	}

	percentile := 1.0
	if population > 1 {
		percentile = float64(lower) / float64(population-1)
	}

	return RankReport{
		PID:        pid,
		Net:        own.String(),
		Rank:       higher + 1,
		Population: population,
		Percentile: percentile,
	}
}

func concentration(pid string, snap *model.Snapshot, scope string) ConcentrationReport {
	asCreditor := make(map[string]decimal.Decimal)
	asDebtor := make(map[string]decimal.Decimal)
	for _, d := range snap.Debts {
		if !model.EquivalentScope(scope, d.Equivalent) {
			continue
		}
		amt := money.ParseOrZero(d.Amount)
		switch pid {
		case d.Creditor:
			asCreditor[d.Debtor] = asCreditor[d.Debtor].Add(amt)
		case d.Debtor:
			asDebtor[d.Creditor] = asDebtor[d.Creditor].Add(amt)
		}
	}
	return ConcentrationReport{
		AsCreditor: concentrationSide(asCreditor),
		AsDebtor:   concentrationSide(asDebtor),
	}
}

// concentrationSide normalizes counterparty amounts into shares summing to 1
// and derives top-1, top-5, and HHI.
func concentrationSide(amounts map[string]decimal.Decimal) ConcentrationSide {
	side := ConcentrationSide{
		Shares: []Share{},
		Top1:   "0",
		Top5:   "0",
		HHI:    "0",
	}

	total := decimal.Zero
	for _, amt := range amounts {
		total = total.Add(amt)
	}
	if total.Sign() <= 0 {
		return side
	}

	pids := make([]string, 0, len(amounts))
	for cp := range amounts {
		pids = append(pids, cp)
	}
	sort.Slice(pids, func(i, j int) bool {
		c := amounts[pids[i]].Cmp(amounts[pids[j]])
		if c != 0 {
			return c > 0
		}
		return pids[i] < pids[j]
	})

	top1 := decimal.Zero
	top5 := decimal.Zero
	hhi := decimal.Zero
	for i, cp := range pids {
		share := amounts[cp].DivRound(total, sharePrecision)
		side.Shares = append(side.Shares, Share{
			CounterpartyPID: cp,
			Amount:          amounts[cp].String(),
			Share:           share.String(),
		})
		if i == 0 {
			top1 = share
		}
		if i < top5Count {
			top5 = top5.Add(share)
		}
		hhi = hhi.Add(share.Mul(share))
	}

	side.Top1 = top1.String()
	side.Top5 = top5.String()
	side.HHI = hhi.String()
	return side
}

func (e *InMemoryEngine) capacity(pid string, snap *model.Snapshot, scope string) CapacityReport {
	in := CapacitySide{Limit: "0", Used: "0", Available: "0"}
	out := CapacitySide{Limit: "0", Used: "0", Available: "0"}
	inLimit, inUsed, inAvail := decimal.Zero, decimal.Zero, decimal.Zero
	outLimit, outUsed, outAvail := decimal.Zero, decimal.Zero, decimal.Zero
	var bottlenecks []elements.Edge

	for _, t := range snap.Trustlines {
		if !model.EquivalentScope(scope, t.Equivalent) {
			continue
		}
		switch pid {
		case t.To:
			in.Count++
			inLimit = inLimit.Add(money.ParseOrZero(t.Limit))
			inUsed = inUsed.Add(money.ParseOrZero(t.Used))
			inAvail = inAvail.Add(money.ParseOrZero(t.Available))
		case t.From:
			out.Count++
			outLimit = outLimit.Add(money.ParseOrZero(t.Limit))
			outUsed = outUsed.Add(money.ParseOrZero(t.Used))
			outAvail = outAvail.Add(money.ParseOrZero(t.Available))
		default:
			continue
		}
		if elements.IsBottleneck(t, e.threshold) {
			bottlenecks = append(bottlenecks, elements.Edge{
				ID:         t.ID(),
				Source:     t.From,
				Target:     t.To,
				Equivalent: t.Equivalent,
				Status:     t.Status,
				Limit:      t.Limit,
				Used:       t.Used,
				Available:  t.Available,
				Bottleneck: true,
			})
		}
	}

	in.Limit, in.Used, in.Available = inLimit.String(), inUsed.String(), inAvail.String()
	out.Limit, out.Used, out.Available = outLimit.String(), outUsed.String(), outAvail.String()

	totalLimit := inLimit.Add(outLimit)
	totalUsed := inUsed.Add(outUsed)
	usedPct := "0"
	if totalLimit.Sign() > 0 {
		usedPct = totalUsed.DivRound(totalLimit, ratioPrecision).String()
	}

	return CapacityReport{
		Incoming:    in,
		Outgoing:    out,
		TotalLimit:  totalLimit.String(),
		TotalUsed:   totalUsed.String(),
		UsedPct:     usedPct,
		Bottlenecks: bottlenecks,
	}
}

func (e *InMemoryEngine) activity(pid string, snap *model.Snapshot, scope string) []ActivityWindow {
	now := e.now()
	windows := make([]ActivityWindow, len(e.windowDays))
	for i, days := range e.windowDays {
		cutoff := now.AddDate(0, 0, -days)
		w := ActivityWindow{Days: days}

		for _, t := range snap.Trustlines {
			if (t.From == pid || t.To == pid) && model.EquivalentScope(scope, t.Equivalent) && t.CreatedAt.After(cutoff) {
				w.Trustlines++
			}
		}
		for _, inc := range snap.Incidents {
			if inc.InitiatorPID != pid || !model.EquivalentScope(scope, inc.Equivalent) {
				continue
			}
			// An incident's own timestamp is its start, derived from age.
			started := now.Add(-time.Duration(inc.AgeSeconds) * time.Second)
			if started.After(cutoff) {
				w.Incidents++
			}
		}
		for _, a := range snap.AuditLog {
			if a.PID == pid && a.Timestamp.After(cutoff) {
				w.AuditRecords++
			}
		}
		for _, tx := range snap.Transactions {
			if (tx.From == pid || tx.To == pid) && model.EquivalentScope(scope, tx.Equivalent) && tx.Timestamp.After(cutoff) {
				w.Transactions++
			}
		}

		windows[i] = w
	}
	return windows
}

// distribution builds a fixed-bucket-count histogram of all net balances.
// Bucket boundaries derive from the observed min and max, never hardcoded.
func (e *InMemoryEngine) distribution(snap *model.Snapshot, nets map[string]decimal.Decimal) DistributionReport {
	if len(nets) == 0 {
		return DistributionReport{Min: "0", Max: "0", Buckets: []Bucket{}}
	}

	var vals []decimal.Decimal
	for _, p := range snap.Participants {
		vals = append(vals, nets[p.PID])
	}

	minVal, maxVal := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v.Cmp(minVal) < 0 {
			minVal = v
		}
		if v.Cmp(maxVal) > 0 {
			maxVal = v
		}
	}

	report := DistributionReport{Min: minVal.String(), Max: maxVal.String()}

	if minVal.Equal(maxVal) {
		report.Buckets = []Bucket{{Lower: minVal.String(), Upper: maxVal.String(), Count: len(vals)}}
		return report
	}

	span := maxVal.Sub(minVal)
	width := span.DivRound(decimal.NewFromInt(int64(e.bucketCount)), sharePrecision)

	buckets := make([]Bucket, e.bucketCount)
	for i := range buckets {
		lower := minVal.Add(width.Mul(decimal.NewFromInt(int64(i))))
		upper := minVal.Add(width.Mul(decimal.NewFromInt(int64(i + 1))))
		if i == e.bucketCount-1 {
			upper = maxVal
		}
		buckets[i] = Bucket{Lower: lower.String(), Upper: upper.String()}
	}

	for _, v := range vals {
		idx := 0
		if width.Sign() > 0 {
			idx = int(v.Sub(minVal).Div(width).IntPart())
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= e.bucketCount {
			idx = e.bucketCount - 1
		}
		buckets[idx].Count++
	}

	report.Buckets = buckets
	return report
}
