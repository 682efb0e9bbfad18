package sim

// Results summarizes completed work. AvgLatency and AvgCost are nil when no cloudlet
// completed: zero is a legitimate average and must stay distinguishable from "no data".
type Results struct {
	Submitted  int      `json:"submitted"`
	Finished   int      `json:"finished"`
	Completed  int      `json:"completed"`
	CostRate   float64  `json:"cost_rate"`
	AvgLatency *float64 `json:"avg_latency_s"`
	AvgCost    *float64 `json:"avg_cost"`
}

// LatencyAvailable reports whether latency and cost averages were computed.
func (r Results) LatencyAvailable() bool {
	return r.AvgLatency != nil
}

// Summarize computes counts and averages over the engine's finished list.
// Latency is Finish - Start of each successful cloudlet; cost is latency × costRate.
func Summarize(submitted int, finished []FinishedCloudlet, costRate float64) Results {
	res := Results{
		Submitted: submitted,
		Finished:  len(finished),
		CostRate:  costRate,
	}

	totalLatency := 0.0
	totalCost := 0.0
	for _, c := range finished {
		if c.Status != StatusSuccess {
			continue
		}
		latency := c.Latency()
		totalLatency += latency
		totalCost += latency * costRate
		res.Completed++
	}

	if res.Completed == 0 {
		return res
	}
	avgLatency := totalLatency / float64(res.Completed)
	avgCost := totalCost / float64(res.Completed)
	res.AvgLatency = &avgLatency
	res.AvgCost = &avgCost
	return res
}

// TierResults breaks completion and latency down per tier.
type TierResults struct {
	Tier       string   `json:"tier"`
	Finished   int      `json:"finished"`
	Completed  int      `json:"completed"`
	AvgLatency *float64 `json:"avg_latency_s"`
}

// SummarizeByTier groups finished cloudlets by the tier of their VM, in layout order.
// Cloudlets on VMs outside the layout are ignored.
func SummarizeByTier(layout TierLayout, finished []FinishedCloudlet) []TierResults {
	out := make([]TierResults, len(layout))
	sums := make([]float64, len(layout))
	for i, t := range layout {
		out[i].Tier = t.Name
	}
	for _, c := range finished {
		for i, t := range layout {
			if !t.Contains(c.VmID) {
				continue
			}
			out[i].Finished++
			if c.Status == StatusSuccess {
				out[i].Completed++
				sums[i] += c.Latency()
			}
			break
		}
	}
	for i := range out {
		if out[i].Completed > 0 {
			avg := sums[i] / float64(out[i].Completed)
			out[i].AvgLatency = &avg
		}
	}
	return out
}

// ResourceAverage is the mean of an owner's samples per resource, on a 0-100 scale.
type ResourceAverage struct {
	CPU float64 `json:"cpu"`
	RAM float64 `json:"ram"`
	BW  float64 `json:"bw"`
}

// OwnerUtilization is the averaged utilization of one host or VM.
// Average is nil when the owner has no samples.
type OwnerUtilization struct {
	Kind    OwnerKind        `json:"kind"`
	ID      int              `json:"id"`
	Samples int              `json:"samples"`
	Average *ResourceAverage `json:"average"`
}

// HasData reports whether the owner was sampled at least once.
func (u OwnerUtilization) HasData() bool {
	return u.Average != nil
}

// SummarizeUtilization averages every sequence of the given kind, ascending by id.
func SummarizeUtilization(store *SampleStore, kind OwnerKind) []OwnerUtilization {
	ids := store.Owners(kind)
	out := make([]OwnerUtilization, 0, len(ids))
	for _, id := range ids {
		out = append(out, averageOf(kind, id, store.Series(kind, id)))
	}
	return out
}

func averageOf(kind OwnerKind, id int, seq []UtilizationSample) OwnerUtilization {
	u := OwnerUtilization{Kind: kind, ID: id, Samples: len(seq)}
	if len(seq) == 0 {
		return u
	}
	var avg ResourceAverage
	for _, s := range seq {
		avg.CPU += s.CPU
		avg.RAM += s.RAM
		avg.BW += s.BW
	}
	n := float64(len(seq))
	avg.CPU /= n
	avg.RAM /= n
	avg.BW /= n
	u.Average = &avg
	return u
}
