package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "IDLE"
	CheckoutStatusValidating CheckoutStatus = "VALIDATING"
	CheckoutStatusSimulating CheckoutStatus = "SIMULATING"
	CheckoutStatusConfirmed  CheckoutStatus = "CONFIRMED"
	CheckoutStatusFailed     CheckoutStatus = "FAILED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusConfirmed || s == CheckoutStatusFailed
}

// InFlight reports whether an attempt is currently running.
func (s CheckoutStatus) InFlight() bool {
	return s == CheckoutStatusValidating || s == CheckoutStatusSimulating
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:       {CheckoutStatusValidating},
	CheckoutStatusValidating: {CheckoutStatusSimulating, CheckoutStatusFailed},
	CheckoutStatusSimulating: {CheckoutStatusConfirmed, CheckoutStatusFailed},
	CheckoutStatusConfirmed:  {CheckoutStatusIdle},
	CheckoutStatusFailed:     {CheckoutStatusIdle},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
