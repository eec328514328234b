package normalization

import "errors"

// Normalization errors. All of them are fatal for the unit being
// normalized; the orchestrator does not retry them.
var (
	// ErrMalformedTimestamp is returned when a tick timestamp cannot
	// be parsed as HH:MM:SS.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrUnorderedTicks is returned when input ticks are not strictly
	// ascending by timestamp within the session.
	ErrUnorderedTicks = errors.New("ticks not strictly ascending by timestamp")
)
