package sim

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tiersim/tiersim/sim/trace"
)

// RunOptions carries optional collaborators of a run.
type RunOptions struct {
	Exporter   *Exporter        // receives samples and outcomes when non-nil
	TraceLevel trace.TraceLevel // "decisions" keeps every assignment
}

// Report is everything a run produces.
type Report struct {
	RunID       string              `json:"run_id"`
	Profile     string              `json:"profile"`
	Records     int                 `json:"records"`
	Results     Results             `json:"results"`
	Tiers       []TierResults       `json:"tiers"`
	Hosts       []OwnerUtilization  `json:"hosts"`
	VMs         []OwnerUtilization  `json:"vms"`
	Assignments *trace.TraceSummary `json:"assignments,omitempty"`

	Cloudlets []CloudletSpec         `json:"-"`
	Finished  []FinishedCloudlet     `json:"-"`
	Trace     *trace.AssignmentTrace `json:"-"`
}

// Run executes one profile end to end:
//  1. validate the profile and build the fleet
//  2. classify and route every selected record
//  3. register sample sequences, subscribe the sampler, submit to the engine
//  4. run the engine and aggregate its finished list and the sample store
//
// Every configuration problem is returned before the engine starts.
func Run(p *Profile, newEngine EngineFactory, opts RunOptions) (*Report, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	fleet, err := BuildFleet(p.Fleet)
	if err != nil {
		return nil, err
	}
	router, err := NewTierRouter(fleet.Layout, p.Rules, p.RouteKey)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(p.Classifier, p.FollowUp)
	if err != nil {
		return nil, err
	}

	records := p.SelectedRecords()
	var at *trace.AssignmentTrace
	if opts.TraceLevel == trace.TraceLevelDecisions {
		at = trace.NewAssignmentTrace(opts.TraceLevel)
	}
	cloudlets, err := GenerateCloudlets(records, classifier, router, at)
	if err != nil {
		return nil, err
	}
	logProfile(p, fleet, len(records), len(cloudlets))

	eng, err := newEngine(fleet.Hosts)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	store := NewSampleStore()
	for _, h := range fleet.Hosts {
		store.Register(OwnerHost, h.ID)
	}
	for _, vm := range fleet.VMs {
		store.Register(OwnerVM, vm.ID)
	}
	sampler := NewSampler(p.SamplingInterval, store)
	if opts.Exporter != nil {
		opts.Exporter.layout = fleet.Layout
		sampler.Observer = opts.Exporter
	}
	eng.OnClockTick(func(now float64, snap Snapshot) {
		sampler.OnTick(now, snap)
	})

	if err := eng.Submit(fleet.VMs, cloudlets); err != nil {
		return nil, fmt.Errorf("submitting to engine: %w", err)
	}
	if err := eng.Run(); err != nil {
		return nil, fmt.Errorf("running engine: %w", err)
	}

	finished := eng.Finished()
	if opts.Exporter != nil {
		opts.Exporter.RecordFinished(finished)
	}

	report := &Report{
		RunID:     uuid.New().String(),
		Profile:   p.Name,
		Records:   len(records),
		Results:   Summarize(len(cloudlets), finished, p.CostRate),
		Tiers:     SummarizeByTier(fleet.Layout, finished),
		Hosts:     SummarizeUtilization(store, OwnerHost),
		VMs:       SummarizeUtilization(store, OwnerVM),
		Cloudlets: cloudlets,
		Finished:  finished,
		Trace:     at,
	}
	if at != nil {
		report.Assignments = trace.Summarize(at)
	}

	if report.Results.LatencyAvailable() {
		logrus.Infof("Run %s complete: %d/%d cloudlets succeeded, avg latency %.2fs, avg cost %.4f",
			report.RunID, report.Results.Completed, report.Results.Submitted, *report.Results.AvgLatency, *report.Results.AvgCost)
	} else {
		logrus.Warnf("Run %s complete: no cloudlets completed successfully (%d submitted)", report.RunID, report.Results.Submitted)
	}
	return report, nil
}

func logProfile(p *Profile, fleet *Fleet, records, cloudlets int) {
	logrus.Infof("Profile %s: %d hosts, %d VMs, %d records -> %d cloudlets, sampling every %gs, cost rate %g/s",
		p.Name, len(fleet.Hosts), len(fleet.VMs), records, cloudlets, p.SamplingInterval, p.CostRate)
	for _, t := range fleet.Layout {
		logrus.Infof("  tier %-10s %d VMs (ids %d..%d)", t.Name, t.Size, t.Offset, t.Offset+t.Size-1)
	}
}
