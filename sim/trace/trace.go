package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every assignment decision.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// AssignmentTrace collects assignment records in generation order.
// A nil *AssignmentTrace is valid and records nothing.
type AssignmentTrace struct {
	Level       TraceLevel
	Assignments []AssignmentRecord
}

// NewAssignmentTrace creates an AssignmentTrace ready for recording.
func NewAssignmentTrace(level TraceLevel) *AssignmentTrace {
	return &AssignmentTrace{
		Level:       level,
		Assignments: make([]AssignmentRecord, 0),
	}
}

// Enabled reports whether records will be kept.
func (at *AssignmentTrace) Enabled() bool {
	return at != nil && at.Level == TraceLevelDecisions
}

// RecordAssignment appends an assignment record when tracing is enabled.
func (at *AssignmentTrace) RecordAssignment(record AssignmentRecord) {
	if !at.Enabled() {
		return
	}
	at.Assignments = append(at.Assignments, record)
}
