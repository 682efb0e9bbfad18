// Package datacenter provides a minimal fixed-step engine implementing sim.Engine.
//
// It is a reference collaborator for the CLI and end-to-end tests, not a model of
// any particular simulator's internals:
//   - VMs are placed first-fit on hosts once their startup delay elapses
//   - each VM shares its capacity among its cloudlets in proportion to demand
//   - the clock advances in fixed steps; listeners are notified after each step
package datacenter

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tiersim/tiersim/sim"
)

const (
	DefaultStep    = 1.0
	DefaultHorizon = 24 * 3600.0
)

// ErrNotSubmitted is returned by Run when Submit was never called.
var ErrNotSubmitted = errors.New("datacenter: run before submit")

// Config controls the clock.
type Config struct {
	Step    float64 // seconds per clock step (default 1)
	Horizon float64 // no event later than this is processed (default one day)
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if c.Horizon <= 0 {
		c.Horizon = DefaultHorizon
	}
	return c
}

// Datacenter runs submitted cloudlets on its hosts.
//
// Thread-safety: NOT thread-safe. Listeners run synchronously on the Run goroutine.
type Datacenter struct {
	cfg Config

	hosts     []*hostState
	vms       []*vmState
	vmByID    map[int]*vmState
	cloudlets []*cloudletState
	listeners []sim.TickListener

	events      *EventHeap
	clock       float64
	lastStep    float64
	nextEventID uint64

	submitted bool
	running   bool
	pending   int // cloudlets neither finished nor failed
	finished  []sim.FinishedCloudlet
}

// New creates a datacenter over hosts.
func New(cfg Config, hosts []sim.HostSpec) (*Datacenter, error) {
	if len(hosts) == 0 {
		return nil, fmt.Errorf("datacenter: at least one host required")
	}
	dc := &Datacenter{
		cfg:    cfg.withDefaults(),
		vmByID: make(map[int]*vmState),
		events: NewEventHeap(),
	}
	for _, h := range hosts {
		dc.hosts = append(dc.hosts, &hostState{spec: h})
	}
	return dc, nil
}

// Factory adapts New to sim.EngineFactory.
func Factory(cfg Config) sim.EngineFactory {
	return func(hosts []sim.HostSpec) (sim.Engine, error) {
		return New(cfg, hosts)
	}
}

// OnClockTick implements sim.Engine.
func (dc *Datacenter) OnClockTick(fn sim.TickListener) {
	dc.listeners = append(dc.listeners, fn)
}

// Submit implements sim.Engine. Every cloudlet must reference a submitted VM.
func (dc *Datacenter) Submit(vms []sim.VmSpec, cloudlets []sim.CloudletSpec) error {
	if dc.submitted {
		return fmt.Errorf("datacenter: already submitted")
	}
	for _, spec := range vms {
		if _, dup := dc.vmByID[spec.ID]; dup {
			return fmt.Errorf("datacenter: duplicate vm id %d", spec.ID)
		}
		vm := &vmState{spec: spec}
		dc.vms = append(dc.vms, vm)
		dc.vmByID[spec.ID] = vm
	}
	seen := make(map[int]bool, len(cloudlets))
	for _, spec := range cloudlets {
		if seen[spec.ID] {
			return fmt.Errorf("datacenter: duplicate cloudlet id %d", spec.ID)
		}
		seen[spec.ID] = true
		vm, ok := dc.vmByID[spec.VmID]
		if !ok {
			return fmt.Errorf("datacenter: cloudlet %d references unknown vm %d", spec.ID, spec.VmID)
		}
		cl := &cloudletState{spec: spec, remaining: float64(spec.Length)}
		dc.cloudlets = append(dc.cloudlets, cl)
		vm.cloudlets = append(vm.cloudlets, cl)
	}
	dc.pending = len(dc.cloudlets)

	for _, vm := range dc.vms {
		dc.schedule(&VMCreateEvent{baseEvent: dc.newBase(vm.spec.StartupDelay, EventTypeVMCreate), vm: vm})
	}
	dc.submitted = true
	return nil
}

// Run implements sim.Engine. It processes events until every cloudlet has finished
// or failed, or the horizon is reached. Cloudlets still running at the horizon are
// absent from Finished.
func (dc *Datacenter) Run() error {
	if !dc.submitted {
		return ErrNotSubmitted
	}
	dc.running = true
	dc.schedule(&StepEvent{baseEvent: dc.newBase(0, EventTypeStep), index: 0})

	for dc.events.Len() > 0 {
		event := dc.events.PopNext()

		if event.Timestamp() > dc.cfg.Horizon {
			break
		}

		if event.Timestamp() < dc.clock {
			panic(fmt.Sprintf("Clock went backwards: %f < %f", event.Timestamp(), dc.clock))
		}
		dc.clock = event.Timestamp()

		event.Execute(dc)
	}
	dc.running = false

	if dc.pending > 0 {
		logrus.Warnf("datacenter: horizon %.0fs reached with %d cloudlets unfinished", dc.cfg.Horizon, dc.pending)
	}
	sort.SliceStable(dc.finished, func(i, j int) bool {
		return dc.finished[i].Finish < dc.finished[j].Finish
	})
	return nil
}

// Finished implements sim.Engine, ordered by finish time.
func (dc *Datacenter) Finished() []sim.FinishedCloudlet {
	return dc.finished
}

// Clock returns the time of the last processed event.
func (dc *Datacenter) Clock() float64 {
	return dc.clock
}

func (dc *Datacenter) schedule(e Event) {
	dc.events.Schedule(e)
}

func (dc *Datacenter) newBase(at float64, t EventType) baseEvent {
	dc.nextEventID++
	return baseEvent{timestamp: at, eventID: dc.nextEventID, eventType: t}
}

func (dc *Datacenter) handleVMCreate(e *VMCreateEvent) {
	vm := e.vm
	for _, h := range dc.hosts {
		if h.fits(vm.spec) {
			h.allocate(vm)
			vm.created = true
			for _, cl := range vm.cloudlets {
				cl.start = dc.clock
			}
			logrus.Debugf("datacenter: vm %d (%s) created on host %d at t=%.2f", vm.spec.ID, vm.spec.Tier, h.spec.ID, dc.clock)
			return
		}
	}

	logrus.Warnf("datacenter: no host can fit vm %d (%s); failing its %d cloudlets", vm.spec.ID, vm.spec.Tier, len(vm.cloudlets))
	for _, cl := range vm.cloudlets {
		dc.complete(cl, sim.StatusFailed, dc.clock, dc.clock)
	}
}

func (dc *Datacenter) handleStep(e *StepEvent) {
	dc.advance(dc.lastStep, dc.clock-dc.lastStep)
	dc.lastStep = dc.clock
	if dc.pending == 0 {
		dc.running = false
	}

	snap := dc.snapshot()
	for _, fn := range dc.listeners {
		fn(dc.clock, snap)
	}

	if dc.pending > 0 {
		next := e.index + 1
		dc.schedule(&StepEvent{baseEvent: dc.newBase(float64(next)*dc.cfg.Step, EventTypeStep), index: next})
	}
}

// advance executes dt seconds of work starting at t0 on every provisioned VM.
// A cloudlet accrues no work before its VM was created.
// Rates are fixed for the whole step; a cloudlet finishing mid-step does not speed
// up its neighbours until the next step.
func (dc *Datacenter) advance(t0, dt float64) {
	for _, vm := range dc.vms {
		if !vm.created {
			continue
		}
		active := vm.active()
		rates := vm.rates(active)
		for i, cl := range active {
			r := rates[i]
			from := math.Max(t0, cl.start)
			avail := t0 + dt - from
			if r <= 0 || avail < 0 {
				continue
			}
			if cl.remaining <= r*avail {
				dc.complete(cl, sim.StatusSuccess, cl.start, from+cl.remaining/r)
				cl.remaining = 0
				continue
			}
			cl.remaining -= r * avail
		}
	}
}

func (dc *Datacenter) complete(cl *cloudletState, status sim.CloudletStatus, start, finish float64) {
	if cl.done {
		return
	}
	cl.done = true
	dc.pending--
	dc.finished = append(dc.finished, sim.FinishedCloudlet{
		ID:     cl.spec.ID,
		VmID:   cl.spec.VmID,
		Status: status,
		Start:  start,
		Finish: finish,
	})
}

func (dc *Datacenter) snapshot() sim.Snapshot {
	snap := sim.Snapshot{
		Running: dc.running,
		Hosts:   make([]sim.HostObservation, 0, len(dc.hosts)),
		VMs:     make([]sim.VMObservation, 0, len(dc.vms)),
	}

	for _, vm := range dc.vms {
		obs := sim.VMObservation{ID: vm.spec.ID, Created: vm.created}
		if vm.created {
			obs.CPU, obs.RAM, obs.BW = vm.utilization(dc.clock)
		}
		snap.VMs = append(snap.VMs, obs)
	}
	for _, h := range dc.hosts {
		cpu, ram, bw := h.utilization(dc.clock)
		snap.Hosts = append(snap.Hosts, sim.HostObservation{ID: h.spec.ID, CPU: cpu, RAM: ram, BW: bw})
	}
	return snap
}
