package order

import "strings"

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusRejected       Status = "rejected"
)

// rank orders the success chain; failure states have no rank.
var rank = map[Status]int{
	StatusPending:        1,
	StatusConfirmed:      2,
	StatusPreparing:      3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

// ParseStatus accepts the canonical values plus the spellings older clients
// send ("Out for Delivery", "Canceled").
func ParseStatus(s string) (Status, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if norm == "canceled" {
		norm = string(StatusCancelled)
	}
	st := Status(norm)
	switch st {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusOutForDelivery,
		StatusDelivered, StatusCancelled, StatusRejected:
		return st, true
	}
	return "", false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusRejected
}

// Failed reports the terminal failure states.
func (s Status) Failed() bool {
	return s == StatusCancelled || s == StatusRejected
}

// RequiresReason reports whether moving into s needs a reason.
func (s Status) RequiresReason() bool { return s.Failed() }

// CanTransition reports whether from -> to is a legal move. Success states
// only move forward, possibly skipping steps; failure states are reachable
// from any non-terminal state; nothing leaves a terminal state.
func CanTransition(from, to Status) bool {
	if from.Terminal() || from == to {
		return false
	}
	if to.Failed() {
		return true
	}
	fr, ok1 := rank[from]
	tr, ok2 := rank[to]
	return ok1 && ok2 && tr > fr
}
