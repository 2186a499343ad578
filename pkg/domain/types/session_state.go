package types

// SessionState is the lifecycle state of a consultation session
type SessionState string

const (
	// SessionStateIdle means no conversation is bound to the session
	SessionStateIdle SessionState = "idle"
	// SessionStateActive means a conversation is open and turns may be exchanged
	SessionStateActive SessionState = "active"
	// SessionStateEnding means a summary was drafted and awaits confirmation
	SessionStateEnding SessionState = "ending"
)

// IsValid checks if the session state is valid
func (s SessionState) IsValid() bool {
	switch s {
	case SessionStateIdle,
		SessionStateActive,
		SessionStateEnding:
		return true
	default:
		return false
	}
}

// HasConversation reports whether a conversation is bound in this state
func (s SessionState) HasConversation() bool {
	return s == SessionStateActive || s == SessionStateEnding
}

// String returns the string representation of the session state
func (s SessionState) String() string {
	return string(s)
}
