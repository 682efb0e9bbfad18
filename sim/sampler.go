package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// OwnerKind distinguishes host and VM sample sequences.
type OwnerKind string

const (
	OwnerHost OwnerKind = "host"
	OwnerVM   OwnerKind = "vm"
)

// UtilizationSample is one timestamped observation on a 0-100 scale.
type UtilizationSample struct {
	Kind    OwnerKind `json:"kind"`
	OwnerID int       `json:"owner_id"`
	Time    float64   `json:"time"`
	CPU     float64   `json:"cpu"`
	RAM     float64   `json:"ram"`
	BW      float64   `json:"bw"`
}

// SampleStore holds one append-only, time-ordered sample sequence per owner.
// It is written by a Sampler during the run and read by the aggregator afterwards.
//
// Thread-safety: NOT thread-safe. A concurrent engine must confine the store to its
// tick goroutine or guard it with a mutex.
type SampleStore struct {
	series map[OwnerKind]map[int][]UtilizationSample
}

// NewSampleStore creates an empty store.
func NewSampleStore() *SampleStore {
	return &SampleStore{
		series: map[OwnerKind]map[int][]UtilizationSample{
			OwnerHost: {},
			OwnerVM:   {},
		},
	}
}

// Register creates an empty sequence for the owner if none exists, so that owners
// never sampled still show up (with no data) in summaries.
func (s *SampleStore) Register(kind OwnerKind, id int) {
	byID, ok := s.series[kind]
	if !ok {
		byID = make(map[int][]UtilizationSample)
		s.series[kind] = byID
	}
	if _, ok := byID[id]; !ok {
		byID[id] = make([]UtilizationSample, 0)
	}
}

// Append adds sample to its owner's sequence, creating the sequence on first sight.
func (s *SampleStore) Append(sample UtilizationSample) {
	s.Register(sample.Kind, sample.OwnerID)
	s.series[sample.Kind][sample.OwnerID] = append(s.series[sample.Kind][sample.OwnerID], sample)
}

// Series returns the owner's samples in append order. Unknown owners yield nil.
func (s *SampleStore) Series(kind OwnerKind, id int) []UtilizationSample {
	return s.series[kind][id]
}

// Owners returns the ids with a sequence of the given kind, ascending.
func (s *SampleStore) Owners(kind OwnerKind) []int {
	ids := make([]int, 0, len(s.series[kind]))
	for id := range s.series[kind] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the total number of samples of the given kind.
func (s *SampleStore) Len(kind OwnerKind) int {
	n := 0
	for _, seq := range s.series[kind] {
		n += len(seq)
	}
	return n
}

// SampleObserver receives every sample appended by a Sampler.
type SampleObserver interface {
	Observe(sample UtilizationSample)
}

// cadenceTolerance absorbs floating-point drift from accumulated clock steps.
const cadenceTolerance = 1e-9

// ShouldSample reports whether a tick at now falls on the sampling cadence:
// the engine must be running and now must be a multiple of interval.
// A non-positive interval disables sampling.
func ShouldSample(now, interval float64, running bool) bool {
	if !running || interval <= 0 || now < 0 {
		return false
	}
	r := math.Mod(now, interval)
	return r < cadenceTolerance || interval-r < cadenceTolerance
}

// Sampler snapshots host and VM utilization into a SampleStore on a fixed cadence.
type Sampler struct {
	Interval float64
	Store    *SampleStore
	Observer SampleObserver // optional
}

// NewSampler creates a Sampler writing into store.
func NewSampler(interval float64, store *SampleStore) *Sampler {
	return &Sampler{Interval: interval, Store: store}
}

// OnTick is the engine tick callback. Outside the cadence it is a no-op. On a
// qualifying tick it appends one sample per host and one per provisioned VM;
// VMs not yet created are skipped without a placeholder. Engine fractions are
// converted to percentages. Returns the number of samples appended.
func (s *Sampler) OnTick(now float64, snap Snapshot) int {
	if !ShouldSample(now, s.Interval, snap.Running) {
		return 0
	}

	n := 0
	for _, h := range snap.Hosts {
		s.add(UtilizationSample{Kind: OwnerHost, OwnerID: h.ID, Time: now, CPU: h.CPU * 100, RAM: h.RAM * 100, BW: h.BW * 100})
		n++
	}
	skipped := 0
	for _, vm := range snap.VMs {
		if !vm.Created {
			skipped++
			continue
		}
		s.add(UtilizationSample{Kind: OwnerVM, OwnerID: vm.ID, Time: now, CPU: vm.CPU * 100, RAM: vm.RAM * 100, BW: vm.BW * 100})
		n++
	}
	logrus.Debugf("sampled %d owners at t=%.2f (%d VMs not yet provisioned)", n, now, skipped)
	return n
}

func (s *Sampler) add(sample UtilizationSample) {
	s.Store.Append(sample)
	if s.Observer != nil {
		s.Observer.Observe(sample)
	}
}
