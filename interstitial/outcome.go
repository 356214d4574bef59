package interstitial

// State is the controller's lifecycle position.
type State uint8

const (
	// StateWaiting means no target URL is known yet. The countdown does
	// not run in this state.
	StateWaiting State = iota
	// StateCounting means the countdown is running toward an automatic
	// redirect.
	StateCounting
	// StateRedirecting means the latch is held and navigation is in
	// flight.
	StateRedirecting
	// StateDone means navigation succeeded. Terminal.
	StateDone
	// StateFailed means navigation threw; the latch was released and a
	// manual retry may follow.
	StateFailed
	// StateAbandoned means the visitor left before any redirect attempt.
	// Terminal.
	StateAbandoned
)

// String returns the state name used in telemetry.
func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateCounting:
		return "counting"
	case StateRedirecting:
		return "redirecting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Method identifies which trigger won the redirect race.
type Method uint8

const (
	// MethodNone tags outcomes with no navigation attached.
	MethodNone Method = iota
	// MethodAuto means the countdown expired.
	MethodAuto
	// MethodManual means the visitor skipped ahead.
	MethodManual
)

func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodManual:
		return "manual"
	default:
		return "none"
	}
}

// OutcomeKind classifies a reported outcome.
type OutcomeKind uint8

const (
	// OutcomePerformed means exactly one navigation succeeded.
	OutcomePerformed OutcomeKind = iota
	// OutcomeFailed means navigation threw and the latch was released.
	OutcomeFailed
	// OutcomeAbandoned means the visitor left before any attempt, by
	// unload or by backing out.
	OutcomeAbandoned
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePerformed:
		return "redirect_performed"
	case OutcomeFailed:
		return "redirect_failed"
	case OutcomeAbandoned:
		return "redirect_abandoned"
	default:
		return "unknown"
	}
}

// Outcome is one terminal (or recoverable-failure) event of a page view,
// carrying the countdown value and time-on-page at the moment it happened.
type Outcome struct {
	Kind     OutcomeKind
	Method   Method
	TimeLeft int
	Elapsed  int
	Err      error
}

// ReportFunc receives outcomes. It is called from the controller's own
// goroutine or from the triggering caller; implementations must not call
// back into the controller and must not block.
type ReportFunc func(Outcome)
