package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// HostSpec is one physical host. Immutable after BuildFleet.
type HostSpec struct {
	ID      int     `json:"id"`
	PEs     int     `json:"pes"`
	MIPS    float64 `json:"mips"` // per core
	RAM     int64   `json:"ram"`
	BW      int64   `json:"bw"`
	Storage int64   `json:"storage"`
}

// TotalMIPS returns the host's aggregate compute rate.
func (h HostSpec) TotalMIPS() float64 {
	return float64(h.PEs) * h.MIPS
}

// VmSpec is one virtual machine belonging to exactly one tier.
type VmSpec struct {
	ID           int     `json:"id"`
	Tier         string  `json:"tier"`
	PEs          int     `json:"pes"`
	MIPS         float64 `json:"mips"` // per core
	RAM          int64   `json:"ram"`
	BW           int64   `json:"bw"`
	Size         int64   `json:"size"`
	StartupDelay float64 `json:"startup_delay,omitempty"`
}

// TotalMIPS returns the VM's aggregate compute rate.
func (v VmSpec) TotalMIPS() float64 {
	return float64(v.PEs) * v.MIPS
}

// Tier is the position of one tier inside the contiguous VM id space:
// its VMs have ids [Offset, Offset+Size).
type Tier struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Size   int    `json:"size"`
}

// Contains reports whether vmID belongs to this tier.
func (t Tier) Contains(vmID int) bool {
	return vmID >= t.Offset && vmID < t.Offset+t.Size
}

// TierLayout lists tiers in declaration order.
type TierLayout []Tier

// Lookup returns the tier with the given name.
func (l TierLayout) Lookup(name string) (Tier, bool) {
	for _, t := range l {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// Total returns the number of VMs across all tiers.
func (l TierLayout) Total() int {
	n := 0
	for _, t := range l {
		n += t.Size
	}
	return n
}

// TierOf returns the name of the tier owning vmID.
func (l TierLayout) TierOf(vmID int) (string, bool) {
	for _, t := range l {
		if t.Contains(vmID) {
			return t.Name, true
		}
	}
	return "", false
}

// Fleet is the static pool of hosts and tiered VMs.
type Fleet struct {
	Hosts  []HostSpec
	VMs    []VmSpec
	Layout TierLayout
}

// Tier returns the layout entry of the named tier.
func (f *Fleet) Tier(name string) (Tier, bool) {
	return f.Layout.Lookup(name)
}

// TotalVMs returns the number of VMs in the fleet.
func (f *Fleet) TotalVMs() int {
	return len(f.VMs)
}

// BuildFleet constructs hosts and VMs from cfg. Host ids are 0-based in creation order;
// VM ids are contiguous and grouped by tier in declaration order, so that a tier's
// VMs can be addressed as Offset + index.
func BuildFleet(cfg FleetConfig) (*Fleet, error) {
	if err := validateFleet(cfg); err != nil {
		return nil, err
	}

	f := &Fleet{
		Hosts:  make([]HostSpec, 0, cfg.Hosts.Count),
		Layout: make(TierLayout, 0, len(cfg.Tiers)),
	}
	for i := 0; i < cfg.Hosts.Count; i++ {
		f.Hosts = append(f.Hosts, HostSpec{
			ID:      i,
			PEs:     cfg.Hosts.PEs,
			MIPS:    cfg.Hosts.MIPS,
			RAM:     cfg.Hosts.RAM,
			BW:      cfg.Hosts.BW,
			Storage: cfg.Hosts.Storage,
		})
	}

	vmID := 0
	for _, tc := range cfg.Tiers {
		f.Layout = append(f.Layout, Tier{Name: tc.Name, Offset: vmID, Size: tc.Count})
		for i := 0; i < tc.Count; i++ {
			f.VMs = append(f.VMs, VmSpec{
				ID:           vmID,
				Tier:         tc.Name,
				PEs:          tc.PEs,
				MIPS:         tc.MIPS,
				RAM:          tc.RAM,
				BW:           tc.BW,
				Size:         tc.Size,
				StartupDelay: tc.StartupDelay,
			})
			vmID++
		}
		if tc.Count == 0 {
			logrus.Debugf("tier %q has no VMs and must not be routable", tc.Name)
		}
	}

	logrus.Infof("Fleet built: %d hosts, %d VMs across %d tiers", len(f.Hosts), len(f.VMs), len(f.Layout))
	return f, nil
}

func validateFleet(cfg FleetConfig) error {
	var errs error
	if err := validate.Struct(cfg); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("fleet: %w", err))
	}
	seen := make(map[string]bool, len(cfg.Tiers))
	for i, tc := range cfg.Tiers {
		if seen[tc.Name] {
			errs = multierr.Append(errs, fmt.Errorf("fleet: tiers[%d]: duplicate tier name %q", i, tc.Name))
		}
		seen[tc.Name] = true
	}
	return asConfigError(errs)
}
