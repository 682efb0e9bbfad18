// Package sim provides the placement and measurement core of tiersim.
//
// # Reading Guide
//
// Start with these files to understand a run:
//   - fleet.go: hosts and tiered VMs, with contiguous VM ids grouped by tier
//   - classifier.go: WorkloadRecord → CloudletSpec (+ optional follow-up)
//   - assignment.go: ordered tier rules and modulo routing inside a tier
//   - sampler.go: cadence-gated utilization sampling into a SampleStore
//   - results.go: completion, latency, cost and utilization averages
//   - runner.go: wires the above around an Engine
//
// # Architecture
//
// The sim package owns the policy and data types; the discrete-event engine that
// executes cloudlets is a collaborator behind the Engine interface (engine.go).
// Sub-packages:
//   - sim/datacenter/: fixed-step reference engine implementing Engine
//   - sim/trace/: assignment decision recording
//
// # Key Interfaces
//
//   - Classifier: maps a record to cloudlet resource demands
//   - Engine: accepts VMs and cloudlets, drives clock ticks, reports finished cloudlets
//   - SampleObserver: receives every utilization sample (metrics export)
//
// Nothing in this package is safe for concurrent use. All callbacks are invoked
// synchronously from the engine's clock.
package sim
