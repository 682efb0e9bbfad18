package sim

// HostObservation is an engine's instantaneous view of one host.
// Utilizations are fractions in [0,1].
type HostObservation struct {
	ID  int
	CPU float64
	RAM float64
	BW  float64
}

// VMObservation is an engine's instantaneous view of one VM. Created is false until
// the engine has provisioned the VM on a host.
type VMObservation struct {
	ID      int
	Created bool
	CPU     float64
	RAM     float64
	BW      float64
}

// Snapshot is the engine state handed to tick listeners.
type Snapshot struct {
	Running bool
	Hosts   []HostObservation
	VMs     []VMObservation
}

// TickListener is invoked synchronously by the engine after every clock advance.
type TickListener func(now float64, snap Snapshot)

// CloudletStatus is the terminal state of a cloudlet reported by the engine.
type CloudletStatus string

const (
	StatusSuccess CloudletStatus = "success"
	StatusFailed  CloudletStatus = "failed"
)

// FinishedCloudlet is one entry of the engine's finished list. Start and Finish are
// simulated seconds; they are meaningful only when Status is StatusSuccess.
type FinishedCloudlet struct {
	ID     int            `json:"id"`
	VmID   int            `json:"vm_id"`
	Status CloudletStatus `json:"status"`
	Start  float64        `json:"start"`
	Finish float64        `json:"finish"`
}

// Latency returns Finish - Start.
func (c FinishedCloudlet) Latency() float64 {
	return c.Finish - c.Start
}

// Engine is the discrete-event simulation collaborator. The core never reimplements
// scheduling; it submits work, listens to ticks, and reads the finished list.
//
// Call order: OnClockTick and Submit before Run; Finished after Run returns.
type Engine interface {
	Submit(vms []VmSpec, cloudlets []CloudletSpec) error
	OnClockTick(fn TickListener)
	Run() error
	Finished() []FinishedCloudlet
}

// EngineFactory creates an engine for a fixed host pool.
type EngineFactory func(hosts []HostSpec) (Engine, error)
