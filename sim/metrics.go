// Exports sampled utilization and run outcomes as Prometheus metrics.

package sim

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// latencyBuckets covers cloudlet latencies in simulated seconds.
var latencyBuckets = []float64{1, 2, 5, 10, 20, 30, 60, 120, 300, 600}

// Exporter mirrors every utilization sample into gauges on a private registry and
// records run outcomes. It implements SampleObserver.
type Exporter struct {
	registry *prometheus.Registry
	layout   TierLayout

	hostUtilization *prometheus.GaugeVec
	vmUtilization   *prometheus.GaugeVec
	samples         *prometheus.CounterVec
	cloudlets       *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// NewExporter creates an Exporter whose VM series carry the tier from layout.
// Run replaces the layout with the one of the fleet it builds, so callers may pass nil.
func NewExporter(layout TierLayout) *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		layout:   layout,
		hostUtilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tiersim_host_utilization_percent",
			Help: "Last sampled host utilization per resource",
		}, []string{"host", "resource"}),
		vmUtilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tiersim_vm_utilization_percent",
			Help: "Last sampled VM utilization per resource",
		}, []string{"vm", "tier", "resource"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tiersim_samples_total",
			Help: "Utilization samples taken per owner kind",
		}, []string{"kind"}),
		cloudlets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tiersim_cloudlets_finished_total",
			Help: "Finished cloudlets per tier and status",
		}, []string{"tier", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tiersim_cloudlet_latency_seconds",
			Help:    "Simulated execution time of successful cloudlets",
			Buckets: latencyBuckets,
		}, []string{"tier"}),
	}
	e.registry.MustRegister(e.hostUtilization, e.vmUtilization, e.samples, e.cloudlets, e.latency)
	return e
}

// Registry returns the exporter's registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe implements SampleObserver.
func (e *Exporter) Observe(s UtilizationSample) {
	id := strconv.Itoa(s.OwnerID)
	e.samples.WithLabelValues(string(s.Kind)).Inc()
	switch s.Kind {
	case OwnerHost:
		e.hostUtilization.WithLabelValues(id, "cpu").Set(s.CPU)
		e.hostUtilization.WithLabelValues(id, "ram").Set(s.RAM)
		e.hostUtilization.WithLabelValues(id, "bw").Set(s.BW)
	case OwnerVM:
		tier := e.tierOf(s.OwnerID)
		e.vmUtilization.WithLabelValues(id, tier, "cpu").Set(s.CPU)
		e.vmUtilization.WithLabelValues(id, tier, "ram").Set(s.RAM)
		e.vmUtilization.WithLabelValues(id, tier, "bw").Set(s.BW)
	}
}

// RecordFinished counts finished cloudlets and observes successful latencies.
func (e *Exporter) RecordFinished(finished []FinishedCloudlet) {
	for _, c := range finished {
		tier := e.tierOf(c.VmID)
		e.cloudlets.WithLabelValues(tier, string(c.Status)).Inc()
		if c.Status == StatusSuccess {
			e.latency.WithLabelValues(tier).Observe(c.Latency())
		}
	}
}

// WriteText gathers the registry and writes it in the Prometheus text format.
func (e *Exporter) WriteText(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func (e *Exporter) tierOf(vmID int) string {
	if name, ok := e.layout.TierOf(vmID); ok {
		return name
	}
	return "unknown"
}
