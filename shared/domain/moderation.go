package domain

// Outcome is what delete and redact report to the caller.
type Outcome int

const (
	Success Outcome = iota
	AuthFailure
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "incorrect password"
}

// Decision is the internal result of a moderation check. Only Authorized
// leads to a mutation; the others collapse into AuthFailure (or into the
// neutral acknowledgement for reports).
type Decision int

const (
	Pending Decision = iota
	Invalid
	NotFound
	Denied
	Authorized
)

func (d Decision) String() string {
	switch d {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not_found"
	case Denied:
		return "denied"
	case Authorized:
		return "authorized"
	default:
		return "pending"
	}
}

func (d Decision) Outcome() Outcome {
	if d == Authorized {
		return Success
	}
	return AuthFailure
}
