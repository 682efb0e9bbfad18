package datacenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiersim/tiersim/sim"
)

func testHost(id int) sim.HostSpec {
	return sim.HostSpec{ID: id, PEs: 4, MIPS: 1000, RAM: 8192, BW: 10000, Storage: 100000}
}

func testVM(id int, pes int) sim.VmSpec {
	return sim.VmSpec{ID: id, Tier: "basic", PEs: pes, MIPS: 1000, RAM: 1024, BW: 1000, Size: 1000}
}

func testCloudlet(id, vmID int, length int64) sim.CloudletSpec {
	return sim.CloudletSpec{
		ID:          id,
		Length:      length,
		PEs:         1,
		Utilization: sim.UtilizationModel{Initial: 0.5, Max: 1},
		VmID:        vmID,
	}
}

func runDC(t *testing.T, cfg Config, hosts []sim.HostSpec, vms []sim.VmSpec, cloudlets []sim.CloudletSpec) *Datacenter {
	t.Helper()
	dc, err := New(cfg, hosts)
	require.NoError(t, err)
	require.NoError(t, dc.Submit(vms, cloudlets))
	require.NoError(t, dc.Run())
	return dc
}

func TestDatacenter_SingleCloudlet_FinishesAtLengthOverMIPS(t *testing.T) {
	// GIVEN one host, one 1-PE VM at 1000 MIPS and a 10000 MI cloudlet
	dc := runDC(t, Config{}, []sim.HostSpec{testHost(0)}, []sim.VmSpec{testVM(0, 1)},
		[]sim.CloudletSpec{testCloudlet(0, 0, 10000)})

	// THEN it starts at 0 and finishes at 10
	finished := dc.Finished()
	require.Len(t, finished, 1)
	assert.Equal(t, sim.StatusSuccess, finished[0].Status)
	assert.InDelta(t, 0, finished[0].Start, 1e-9)
	assert.InDelta(t, 10, finished[0].Finish, 1e-9)
}

func TestDatacenter_SharedVM_SplitsCapacity(t *testing.T) {
	// GIVEN two 1-PE cloudlets of 10000 MI on a single 1-PE VM
	dc := runDC(t, Config{}, []sim.HostSpec{testHost(0)}, []sim.VmSpec{testVM(0, 1)},
		[]sim.CloudletSpec{testCloudlet(0, 0, 10000), testCloudlet(1, 0, 10000)})

	// THEN each runs at half speed and both finish at 20
	finished := dc.Finished()
	require.Len(t, finished, 2)
	for _, c := range finished {
		assert.InDelta(t, 20, c.Finish, 1e-9, "cloudlet %d", c.ID)
	}
}

func TestDatacenter_StartupDelay_ShiftsStart(t *testing.T) {
	// GIVEN a VM that becomes available after 5 seconds
	vm := testVM(0, 1)
	vm.StartupDelay = 5
	dc := runDC(t, Config{}, []sim.HostSpec{testHost(0)}, []sim.VmSpec{vm},
		[]sim.CloudletSpec{testCloudlet(0, 0, 3000)})

	// THEN the cloudlet starts at creation time and latency excludes the delay
	finished := dc.Finished()
	require.Len(t, finished, 1)
	assert.InDelta(t, 5, finished[0].Start, 1e-9)
	assert.InDelta(t, 8, finished[0].Finish, 1e-9)
	assert.InDelta(t, 3, finished[0].Latency(), 1e-9)
}

func TestDatacenter_VMDoesNotFit_CloudletsFail(t *testing.T) {
	// GIVEN a VM needing more cores than any host has
	big := testVM(1, 8)
	dc := runDC(t, Config{}, []sim.HostSpec{testHost(0)}, []sim.VmSpec{testVM(0, 1), big},
		[]sim.CloudletSpec{testCloudlet(0, 0, 1000), testCloudlet(1, 1, 1000)})

	// THEN its cloudlet is reported failed and the other succeeds
	statuses := map[int]sim.CloudletStatus{}
	for _, c := range dc.Finished() {
		statuses[c.ID] = c.Status
	}
	assert.Equal(t, sim.StatusSuccess, statuses[0])
	assert.Equal(t, sim.StatusFailed, statuses[1])
}

func TestDatacenter_FirstFit_FillsFirstHostBeforeSecond(t *testing.T) {
	// GIVEN two 4-core hosts and three 2-core VMs
	hosts := []sim.HostSpec{testHost(0), testHost(1)}
	vms := []sim.VmSpec{testVM(0, 2), testVM(1, 2), testVM(2, 2)}
	dc, err := New(Config{}, hosts)
	require.NoError(t, err)
	require.NoError(t, dc.Submit(vms, []sim.CloudletSpec{testCloudlet(0, 2, 1000)}))
	require.NoError(t, dc.Run())

	// THEN the third VM lands on the second host
	assert.Equal(t, 0, dc.vmByID[0].host.spec.ID)
	assert.Equal(t, 0, dc.vmByID[1].host.spec.ID)
	assert.Equal(t, 1, dc.vmByID[2].host.spec.ID)
}

func TestDatacenter_Horizon_LeavesLongCloudletsUnfinished(t *testing.T) {
	// GIVEN a horizon shorter than the cloudlet's runtime
	dc := runDC(t, Config{Horizon: 5}, []sim.HostSpec{testHost(0)}, []sim.VmSpec{testVM(0, 1)},
		[]sim.CloudletSpec{testCloudlet(0, 0, 10000)})

	// THEN it is absent from the finished list
	assert.Empty(t, dc.Finished())
	assert.LessOrEqual(t, dc.Clock(), 5.0)
}

func TestDatacenter_Ticks_ReportRunningAndProvisioning(t *testing.T) {
	// GIVEN a delayed VM and a listener recording every tick
	vm := testVM(0, 1)
	vm.StartupDelay = 2
	dc, err := New(Config{}, []sim.HostSpec{testHost(0)})
	require.NoError(t, err)

	var times []float64
	var created []bool
	var running []bool
	dc.OnClockTick(func(now float64, snap sim.Snapshot) {
		times = append(times, now)
		created = append(created, snap.VMs[0].Created)
		running = append(running, snap.Running)
	})
	require.NoError(t, dc.Submit([]sim.VmSpec{vm}, []sim.CloudletSpec{testCloudlet(0, 0, 3000)}))
	require.NoError(t, dc.Run())

	// THEN ticks are one second apart, the VM appears at t=2 and the last tick reports idle
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, times)
	assert.Equal(t, []bool{false, false, true, true, true, true}, created)
	assert.Equal(t, []bool{true, true, true, true, true, false}, running)
}

func TestDatacenter_Snapshot_ReportsFractions(t *testing.T) {
	// GIVEN a 2-PE VM on a 4-PE host running one 1-PE cloudlet at 50% utilization
	dc, err := New(Config{}, []sim.HostSpec{testHost(0)})
	require.NoError(t, err)
	var first *sim.Snapshot
	dc.OnClockTick(func(now float64, snap sim.Snapshot) {
		if first == nil {
			first = &snap
		}
	})
	require.NoError(t, dc.Submit([]sim.VmSpec{testVM(0, 2)}, []sim.CloudletSpec{testCloudlet(0, 0, 5000)}))
	require.NoError(t, dc.Run())

	// THEN the VM reports half its CPU and the host a quarter
	require.NotNil(t, first)
	assert.InDelta(t, 0.5, first.VMs[0].CPU, 1e-9)
	assert.InDelta(t, 0.5, first.VMs[0].RAM, 1e-9)
	assert.InDelta(t, 0.25, first.Hosts[0].CPU, 1e-9)
	assert.InDelta(t, 0.5*1024/8192, first.Hosts[0].RAM, 1e-9)
}

func TestDatacenter_Submit_Errors(t *testing.T) {
	tests := []struct {
		name      string
		vms       []sim.VmSpec
		cloudlets []sim.CloudletSpec
	}{
		{"unknown vm", []sim.VmSpec{testVM(0, 1)}, []sim.CloudletSpec{testCloudlet(0, 7, 100)}},
		{"duplicate vm", []sim.VmSpec{testVM(0, 1), testVM(0, 1)}, nil},
		{"duplicate cloudlet", []sim.VmSpec{testVM(0, 1)}, []sim.CloudletSpec{testCloudlet(0, 0, 100), testCloudlet(0, 0, 100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc, err := New(Config{}, []sim.HostSpec{testHost(0)})
			require.NoError(t, err)
			assert.Error(t, dc.Submit(tt.vms, tt.cloudlets))
		})
	}
}

func TestDatacenter_RunBeforeSubmit_ReturnsError(t *testing.T) {
	dc, err := New(Config{}, []sim.HostSpec{testHost(0)})
	require.NoError(t, err)
	assert.ErrorIs(t, dc.Run(), ErrNotSubmitted)
}

func TestNew_NoHosts_ReturnsError(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestFactory_SatisfiesEngineFactory(t *testing.T) {
	var f sim.EngineFactory = Factory(Config{Step: 0.5})
	eng, err := f([]sim.HostSpec{testHost(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.5, eng.(*Datacenter).cfg.Step)
}
