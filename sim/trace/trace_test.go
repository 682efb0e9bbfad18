package trace

import (
	"testing"
)

func TestAssignmentTrace_RecordAssignment_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	at := NewAssignmentTrace(TraceLevelDecisions)

	// WHEN an assignment record is recorded
	at.RecordAssignment(AssignmentRecord{
		CloudletID: 0,
		RecordID:   1,
		Tier:       "basic",
		VmID:       6,
		Rule:       2,
	})

	// THEN the trace contains one record with correct data
	if len(at.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(at.Assignments))
	}
	if at.Assignments[0].VmID != 6 {
		t.Errorf("expected vm 6, got %d", at.Assignments[0].VmID)
	}
	if at.Assignments[0].Tier != "basic" {
		t.Errorf("expected tier basic, got %s", at.Assignments[0].Tier)
	}
}

func TestAssignmentTrace_LevelNone_RecordsNothing(t *testing.T) {
	// GIVEN a trace with tracing disabled
	at := NewAssignmentTrace(TraceLevelNone)

	// WHEN a record is offered
	at.RecordAssignment(AssignmentRecord{CloudletID: 3, Tier: "premium"})

	// THEN nothing is kept
	if len(at.Assignments) != 0 {
		t.Errorf("expected 0 assignments, got %d", len(at.Assignments))
	}
}

func TestAssignmentTrace_Nil_IsSafe(t *testing.T) {
	// GIVEN a nil trace
	var at *AssignmentTrace

	// WHEN recording THEN no panic occurs and tracing reports disabled
	at.RecordAssignment(AssignmentRecord{CloudletID: 1})
	if at.Enabled() {
		t.Error("nil trace must report disabled")
	}
}

func TestAssignmentTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	at := NewAssignmentTrace(TraceLevelDecisions)

	// WHEN multiple records are added
	at.RecordAssignment(AssignmentRecord{CloudletID: 0, VmID: 1})
	at.RecordAssignment(AssignmentRecord{CloudletID: 1, VmID: 3})
	at.RecordAssignment(AssignmentRecord{CloudletID: 20, VmID: 3, FollowUp: true})

	// THEN insertion order is preserved
	want := []int{0, 1, 20}
	for i, id := range want {
		if at.Assignments[i].CloudletID != id {
			t.Errorf("record %d: expected cloudlet %d, got %d", i, id, at.Assignments[i].CloudletID)
		}
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true},
		{"verbose", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
		}
	}
}
