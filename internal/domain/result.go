package domain

// UnitOutcome classifies the result of computing one work unit.
type UnitOutcome int

const (
	// UnitOK: the unit produced factor rows.
	UnitOK UnitOutcome = iota

	// UnitMissing: the source had no data for the unit. Not an error;
	// the run continues and the unit is checkpointed as MISSING.
	UnitMissing

	// UnitFatal: the unit failed hard (malformed input, computation
	// error). The orchestrator aborts the page and the run.
	UnitFatal
)

// UnitResult is the value a worker returns for one unit. Workers never
// write to shared stores; the orchestrator merges Ok results and
// commits checkpoints after gathering the whole page.
type UnitResult struct {
	Unit    WorkUnitKey
	Outcome UnitOutcome
	Rows    []FactorRow // populated only for UnitOK
	Err     error       // populated only for UnitFatal
}

// OkResult builds a successful result.
func OkResult(unit WorkUnitKey, rows []FactorRow) UnitResult {
	return UnitResult{Unit: unit, Outcome: UnitOK, Rows: rows}
}

// MissingResult builds a known-missing-data result.
func MissingResult(unit WorkUnitKey) UnitResult {
	return UnitResult{Unit: unit, Outcome: UnitMissing}
}

// FatalResult builds a hard-failure result.
func FatalResult(unit WorkUnitKey, err error) UnitResult {
	return UnitResult{Unit: unit, Outcome: UnitFatal, Err: err}
}
