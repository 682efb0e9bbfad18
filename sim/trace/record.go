// Package trace records tier-assignment decisions for post-run analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// AssignmentRecord captures one routing decision for a cloudlet.
type AssignmentRecord struct {
	CloudletID int    `json:"cloudlet_id"`
	RecordID   int64  `json:"record_id"`
	Tier       string `json:"tier"`
	VmID       int    `json:"vm_id"`
	Rule       int    `json:"rule"` // index of the tier rule that matched
	FollowUp   bool   `json:"follow_up,omitempty"`
}
