package datacenter

import (
	"math"

	"github.com/tiersim/tiersim/sim"
)

type hostState struct {
	spec sim.HostSpec

	usedPEs     int
	usedRAM     int64
	usedBW      int64
	usedStorage int64
	vms         []*vmState
}

// fits reports whether vm can be placed: enough free cores, RAM, bandwidth and
// storage, and a per-core rate the host can deliver.
func (h *hostState) fits(vm sim.VmSpec) bool {
	return h.spec.PEs-h.usedPEs >= vm.PEs &&
		vm.MIPS <= h.spec.MIPS &&
		h.spec.RAM-h.usedRAM >= vm.RAM &&
		h.spec.BW-h.usedBW >= vm.BW &&
		h.spec.Storage-h.usedStorage >= vm.Size
}

func (h *hostState) allocate(vm *vmState) {
	h.usedPEs += vm.spec.PEs
	h.usedRAM += vm.spec.RAM
	h.usedBW += vm.spec.BW
	h.usedStorage += vm.spec.Size
	h.vms = append(h.vms, vm)
	vm.host = h
}

// utilization aggregates what the host's VMs actually use, as fractions of host capacity.
func (h *hostState) utilization(now float64) (cpu, ram, bw float64) {
	var mips, ramUsed, bwUsed float64
	for _, vm := range h.vms {
		vcpu, vram, vbw := vm.utilization(now)
		mips += vcpu * vm.spec.TotalMIPS()
		ramUsed += vram * float64(vm.spec.RAM)
		bwUsed += vbw * float64(vm.spec.BW)
	}
	return fraction(mips, h.spec.TotalMIPS()), fraction(ramUsed, float64(h.spec.RAM)), fraction(bwUsed, float64(h.spec.BW))
}

type vmState struct {
	spec      sim.VmSpec
	host      *hostState
	created   bool
	cloudlets []*cloudletState
}

func (vm *vmState) active() []*cloudletState {
	out := make([]*cloudletState, 0, len(vm.cloudlets))
	for _, cl := range vm.cloudlets {
		if !cl.done {
			out = append(out, cl)
		}
	}
	return out
}

// rates returns the MIPS granted to each active cloudlet. A cloudlet asks for one
// VM core per PE; when the VM is oversubscribed every request is scaled down by
// the same factor.
func (vm *vmState) rates(active []*cloudletState) []float64 {
	rates := make([]float64, len(active))
	demand := 0.0
	for i, cl := range active {
		rates[i] = float64(min(cl.spec.PEs, vm.spec.PEs)) * vm.spec.MIPS
		demand += rates[i]
	}
	capacity := vm.spec.TotalMIPS()
	if demand > capacity && demand > 0 {
		scale := capacity / demand
		for i := range rates {
			rates[i] *= scale
		}
	}
	return rates
}

// utilization returns CPU as granted MIPS over capacity, and RAM/BW as the summed
// utilization models of active cloudlets, capped at 1.
func (vm *vmState) utilization(now float64) (cpu, ram, bw float64) {
	if !vm.created {
		return 0, 0, 0
	}
	active := vm.active()
	granted := 0.0
	for _, r := range vm.rates(active) {
		granted += r
	}
	requested := 0.0
	for _, cl := range active {
		requested += cl.spec.Utilization.ValueAt(now - cl.start)
	}
	requested = math.Min(1, requested)
	return fraction(granted, vm.spec.TotalMIPS()), requested, requested
}

type cloudletState struct {
	spec      sim.CloudletSpec
	remaining float64 // MI left to execute
	start     float64
	done      bool
}

func fraction(used, capacity float64) float64 {
	if capacity <= 0 {
		return 0
	}
	return math.Min(1, used/capacity)
}
