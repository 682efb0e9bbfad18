package trace

// TraceSummary aggregates statistics from an AssignmentTrace.
type TraceSummary struct {
	TotalAssignments int            `json:"total_assignments"`
	FollowUps        int            `json:"follow_ups"`
	UniqueVMs        int            `json:"unique_vms"`
	TierDistribution map[string]int `json:"tier_distribution"` // tier name → cloudlets assigned
	VmDistribution   map[int]int    `json:"vm_distribution"`   // VM id → cloudlets assigned
	RuleHits         map[int]int    `json:"rule_hits"`         // rule index → primary cloudlets matched
}

// Summarize computes aggregate statistics from an AssignmentTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(at *AssignmentTrace) *TraceSummary {
	summary := &TraceSummary{
		TierDistribution: make(map[string]int),
		VmDistribution:   make(map[int]int),
		RuleHits:         make(map[int]int),
	}
	if at == nil {
		return summary
	}

	summary.TotalAssignments = len(at.Assignments)
	for _, a := range at.Assignments {
		summary.TierDistribution[a.Tier]++
		summary.VmDistribution[a.VmID]++
		if a.FollowUp {
			summary.FollowUps++
		} else {
			summary.RuleHits[a.Rule]++
		}
	}
	summary.UniqueVMs = len(summary.VmDistribution)

	return summary
}
