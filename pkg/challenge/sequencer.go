package challenge

import "log/slog"

// Kind identifies a challenge step type. It is a closed enum: anything the
// parser does not recognize maps to KindUnknown, which Decide treats as a
// failed step so an unrecognized challenge name can never satisfy the
// sequence.
type Kind int

const (
	KindUnknown Kind = iota
	KindPassword
	KindOneTimeCode
)

const (
	passwordChallengeName    = "PASSWORD"
	oneTimeCodeChallengeName = "CUSTOM_CHALLENGE"
)

// ParseKind maps a provider challenge name to a Kind.
func ParseKind(name string) Kind {
	switch name {
	case passwordChallengeName:
		return KindPassword
	case oneTimeCodeChallengeName:
		return KindOneTimeCode
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindPassword:
		return passwordChallengeName
	case KindOneTimeCode:
		return oneTimeCodeChallengeName
	default:
		return "UNKNOWN"
	}
}

// Step is one completed challenge/result pair of the current attempt.
// The orchestrator owns the history; the Sequencer only reads it.
type Step struct {
	Kind   Kind
	Passed bool
}

// Action is the outcome of a Decide call.
type Action int

const (
	ActionFail Action = iota
	ActionIssueChallenge
	ActionGrantTokens
)

func (a Action) String() string {
	switch a {
	case ActionIssueChallenge:
		return "issue_challenge"
	case ActionGrantTokens:
		return "grant_tokens"
	default:
		return "fail"
	}
}

// Decision tells the orchestrator what to do next. Challenge is only
// meaningful when Action is ActionIssueChallenge.
type Decision struct {
	Action    Action
	Challenge Kind
}

// Sequencer decides the next step of an authentication attempt. It is a pure
// function of the step history; both configuration knobs are fixed at
// construction time.
type Sequencer struct {
	firstFactor Kind
	codeRetries int
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithPasswordFirstFactor makes the flow open with an explicit password
// challenge instead of assuming the provider verified the password before
// entering custom auth.
func WithPasswordFirstFactor() SequencerOption {
	return func(s *Sequencer) {
		s.firstFactor = KindPassword
	}
}

// WithCodeRetries sets how many fresh one-time-code challenges are issued
// after a wrong code before the attempt fails. Zero gives the strict
// single-shot policy.
func WithCodeRetries(retries int) SequencerOption {
	return func(s *Sequencer) {
		if retries >= 0 {
			s.codeRetries = retries
		}
	}
}

// NewSequencer creates a Sequencer. The default flow issues the one-time-code
// challenge immediately and allows one retry on a wrong code.
func NewSequencer(opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		firstFactor: KindOneTimeCode,
		codeRetries: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide returns the next action for the given attempt history. It has no
// side effects and inspects only the history length and its most recent
// entries, never unbounded content.
func (s *Sequencer) Decide(history []Step) Decision {
	depth := len(history)

	if s.firstFactor == KindPassword {
		if depth == 0 {
			return Decision{Action: ActionIssueChallenge, Challenge: KindPassword}
		}
		// A failed or tampered first factor never proceeds to a code.
		if history[0].Kind != KindPassword || !history[0].Passed {
			slog.Warn("Failing attempt, first factor not a passed password step", "depth", depth)
			return Decision{Action: ActionFail}
		}
	}

	codeSteps := depth
	if s.firstFactor == KindPassword {
		codeSteps--
	}

	if codeSteps == 0 {
		return Decision{Action: ActionIssueChallenge, Challenge: KindOneTimeCode}
	}

	// Hard cap on attempt depth, regardless of results.
	if codeSteps > s.codeRetries+1 {
		slog.Warn("Failing attempt, depth cap exceeded", "depth", depth)
		return Decision{Action: ActionFail}
	}

	last := history[depth-1]
	if last.Kind != KindOneTimeCode {
		slog.Warn("Failing attempt, unexpected challenge kind in history", "depth", depth)
		return Decision{Action: ActionFail}
	}
	if last.Passed {
		return Decision{Action: ActionGrantTokens}
	}
	if codeSteps <= s.codeRetries {
		return Decision{Action: ActionIssueChallenge, Challenge: KindOneTimeCode}
	}
	return Decision{Action: ActionFail}
}
