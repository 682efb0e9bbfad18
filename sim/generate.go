package sim

import (
	"fmt"

	"github.com/tiersim/tiersim/sim/trace"
)

// GenerateCloudlets classifies and routes every record, returning the full cloudlet set
// in submission order: each primary is immediately followed by its follow-up, if any.
// A follow-up runs on the same VM as its primary.
//
// Primary ids are record id - 1. Follow-up ids are allocated after the largest primary
// id, in record order, so they never collide with a later record's primary.
//
// at may be nil. Any classification or routing error aborts generation; an undefined
// category surfaces as a *ConfigError before the engine ever sees a cloudlet.
func GenerateCloudlets(records []WorkloadRecord, c Classifier, r *TierRouter, at *trace.AssignmentTrace) ([]CloudletSpec, error) {
	type routed struct {
		cls Classification
		asg Assignment
	}

	items := make([]routed, 0, len(records))
	seen := make(map[int64]bool, len(records))
	maxID := -1
	for _, rec := range records {
		if seen[rec.ID] {
			return nil, &ConfigError{Err: fmt.Errorf("record %d: duplicate id", rec.ID)}
		}
		seen[rec.ID] = true

		cls, err := c.Classify(rec)
		if err != nil {
			return nil, fmt.Errorf("classifying record %d: %w", rec.ID, err)
		}
		asg, err := r.Assign(rec)
		if err != nil {
			return nil, fmt.Errorf("assigning record %d: %w", rec.ID, err)
		}
		if cls.Primary.ID > maxID {
			maxID = cls.Primary.ID
		}
		items = append(items, routed{cls: cls, asg: asg})
	}

	nextID := maxID + 1
	cloudlets := make([]CloudletSpec, 0, len(items))
	for _, it := range items {
		primary := it.cls.Primary
		primary.VmID = it.asg.VmID
		cloudlets = append(cloudlets, primary)
		at.RecordAssignment(trace.AssignmentRecord{
			CloudletID: primary.ID,
			RecordID:   primary.RecordID,
			Tier:       it.asg.Tier,
			VmID:       it.asg.VmID,
			Rule:       it.asg.Rule,
		})

		if it.cls.FollowUp == nil {
			continue
		}
		fu := *it.cls.FollowUp
		fu.ID = nextID
		fu.VmID = it.asg.VmID
		nextID++
		cloudlets = append(cloudlets, fu)
		at.RecordAssignment(trace.AssignmentRecord{
			CloudletID: fu.ID,
			RecordID:   fu.RecordID,
			Tier:       it.asg.Tier,
			VmID:       it.asg.VmID,
			Rule:       it.asg.Rule,
			FollowUp:   true,
		})
	}
	return cloudlets, nil
}
