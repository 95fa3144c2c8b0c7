package session

// Status is the coarse connection phase published to observers.
type Status int

const (
	// StatusIdle means no connection exists and none is being attempted.
	StatusIdle Status = iota

	// StatusConnecting means the initial dial is in flight.
	StatusConnecting

	// StatusReconnecting means an automatic reconnection attempt is in flight.
	StatusReconnecting

	// StatusConnected means the transport is open.
	StatusConnected

	// StatusFailed means reconnection was exhausted; the session is terminal
	// until the next explicit Connect.
	StatusFailed
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusReconnecting:
		return "reconnecting"
	case StatusConnected:
		return "connected"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ConnectionState is one published value of the status stream. Attempt is
// meaningful only for StatusReconnecting, Reason only for StatusFailed.
type ConnectionState struct {
	Status  Status
	Attempt int
	Reason  string
}
