// Package model contains domain models passed between layers.
package model

import "time"

// ParticipantType classifies a participant in the credit network.
type ParticipantType string

// Participant types.
const (
	TypePerson   ParticipantType = "person"
	TypeBusiness ParticipantType = "business"
	TypeHub      ParticipantType = "hub"
)

// ParticipantStatus is the lifecycle status owned by the backend.
type ParticipantStatus string

// Participant statuses.
const (
	StatusActive    ParticipantStatus = "active"
	StatusFrozen    ParticipantStatus = "frozen"
	StatusSuspended ParticipantStatus = "suspended"
	StatusBanned    ParticipantStatus = "banned"
	StatusDeleted   ParticipantStatus = "deleted"
)

// TrustlineStatus is the lifecycle status of a trustline.
type TrustlineStatus string

// Trustline statuses.
const (
	TrustlineActive TrustlineStatus = "active"
	TrustlineFrozen TrustlineStatus = "frozen"
	TrustlineClosed TrustlineStatus = "closed"
)

// Participant is a node in the credit network. Immutable from the engine's
// perspective; the engine only projects it.
type Participant struct {
	PID         string            `json:"pid"`
	DisplayName string            `json:"display_name"`
	Type        ParticipantType   `json:"type"`
	Status      ParticipantStatus `json:"status"`
}

// Trustline is a directed credit relationship, creditor -> debtor, with
// limit/used/available kept as exact decimal strings. available = limit - used.
type Trustline struct {
	Equivalent string          `json:"equivalent"`
	From       string          `json:"from"` // creditor pid
	To         string          `json:"to"`   // debtor pid
	Limit      string          `json:"limit"`
	Used       string          `json:"used"`
	Available  string          `json:"available"`
	Status     TrustlineStatus `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ID returns the canonical identity of a trustline within a snapshot.
func (t Trustline) ID() string {
	return t.Equivalent + "|" + t.From + "->" + t.To
}

// Debt is a directed obligation, debtor -> creditor. Note this is the inverse
// direction of the trustline the debt was incurred on.
type Debt struct {
	Debtor     string `json:"debtor"`
	Creditor   string `json:"creditor"`
	Equivalent string `json:"equivalent"`
	Amount     string `json:"amount"`
}

// Incident is an in-flight or stuck transaction tracked against its SLA.
type Incident struct {
	TxID         string `json:"tx_id"`
	State        string `json:"state"`
	InitiatorPID string `json:"initiator_pid"`
	Equivalent   string `json:"equivalent"`
	AgeSeconds   int64  `json:"age_seconds"`
	SLASeconds   int64  `json:"sla_seconds"`
}

// CycleLeg is one debt edge of a clearing cycle, debtor -> creditor.
type CycleLeg struct {
	Debtor     string `json:"debtor"`
	Creditor   string `json:"creditor"`
	Equivalent string `json:"equivalent"`
	Amount     string `json:"amount"`
}

// ClearingCycle is an ordered closed loop of debt edges eligible for net
// settlement.
type ClearingCycle struct {
	Legs []CycleLeg `json:"legs"`
}

// AuditRecord is an audit-log row touching a participant.
type AuditRecord struct {
	PID       string    `json:"pid"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Transaction is a settled transfer between two participants.
type Transaction struct {
	TxID       string    `json:"tx_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Equivalent string    `json:"equivalent"`
	Amount     string    `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// Equivalent is a unit-of-account code with a fixed decimal precision.
type Equivalent struct {
	Code      string `json:"code"`
	Precision int    `json:"precision"`
}

// Snapshot is the complete working set the engine operates on. Whatever the
// collaborator returns is treated as the full current dataset.
type Snapshot struct {
	Participants   []Participant   `json:"participants"`
	Trustlines     []Trustline     `json:"trustlines"`
	Incidents      []Incident      `json:"incidents"`
	Debts          []Debt          `json:"debts"`
	ClearingCycles []ClearingCycle `json:"clearing_cycles"`
	AuditLog       []AuditRecord   `json:"audit_log"`
	Transactions   []Transaction   `json:"transactions"`
	Equivalents    []Equivalent    `json:"equivalents"`
}

// ParticipantIndex builds a pid -> participant lookup.
func (s *Snapshot) ParticipantIndex() map[string]Participant {
	idx := make(map[string]Participant, len(s.Participants))
	for _, p := range s.Participants {
		idx[p.PID] = p
	}
	return idx
}

// EquivalentScope matches a record equivalent against a scope selector.
// Scope "" or "ALL" matches every equivalent.
func EquivalentScope(scope, equivalent string) bool {
	return scope == "" || scope == "ALL" || scope == equivalent
}
