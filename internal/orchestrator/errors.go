package orchestrator

import "errors"

// ErrInconsistentResume is returned when the checkpoint set and the
// temp blob disagree at resume time (for example, checkpoints exist but
// the temp blob is gone, or the resume unit is not in the work list).
// The run must be reset explicitly; the orchestrator never guesses
// which source is correct.
var ErrInconsistentResume = errors.New("checkpoint state and temp blob disagree; reset the run before resuming")
