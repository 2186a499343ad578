package types

// TurnOutcome distinguishes how a consultation turn resolved
type TurnOutcome string

const (
	// TurnOutcomeReplied means the assistant reply was generated and persisted
	TurnOutcomeReplied TurnOutcome = "replied"
	// TurnOutcomeServiceFailure means the language model failed; only the user message was persisted
	TurnOutcomeServiceFailure TurnOutcome = "service_failure"
)

func (o TurnOutcome) String() string {
	return string(o)
}
