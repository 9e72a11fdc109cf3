// Package licensing verifies license keys against the remote licensing authority.
package licensing

// Outcome classifies an access decision so callers never need to match on reason text.
type Outcome string

// Outcome values. Only OutcomeGranted grants access.
const (
	OutcomeGranted     Outcome = "granted"
	OutcomeMissingKey  Outcome = "missing_key"
	OutcomeInvalidKey  Outcome = "invalid_key"
	OutcomeRefunded    Outcome = "refunded"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeBadResponse Outcome = "bad_response"
)

// Human-readable reasons surfaced to the user.
const (
	ReasonGranted    = "access granted"
	ReasonMissingKey = "missing key"
	ReasonInvalidKey = "invalid key — check your receipt"
	ReasonRefunded   = "refunded"
)

// Decision is the result of one verification attempt.
type Decision struct {
	Granted bool    `json:"granted"`
	Reason  string  `json:"reason"`
	Outcome Outcome `json:"outcome"`
}

// ServiceFailure reports whether the denial came from the licensing service being
// unreachable or misbehaving rather than from the key itself.
func (d Decision) ServiceFailure() bool {
	return d.Outcome == OutcomeUnreachable || d.Outcome == OutcomeBadResponse
}

func granted() Decision {
	return Decision{Granted: true, Reason: ReasonGranted, Outcome: OutcomeGranted}
}

func denied(outcome Outcome, reason string) Decision {
	return Decision{Granted: false, Reason: reason, Outcome: outcome}
}
