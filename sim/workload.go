package sim

import "math"

// Record field names usable in tier conditions and follow-up rules.
const (
	FieldID        = "id"
	FieldCategory  = "category"
	FieldMagnitude = "magnitude"
	FieldScore     = "score"
	FieldVolume    = "volume"
)

// validFields maps accepted record field names.
var validFields = map[string]bool{
	FieldID:        true,
	FieldCategory:  true,
	FieldMagnitude: true,
	FieldScore:     true,
	FieldVolume:    true,
}

// WorkloadRecord is one raw input row. Interpretation of the generic attributes
// depends on the profile:
//   - customer: Magnitude = annual income, Score = spending score, Volume = purchase frequency
//   - financial: Category = transaction type, Magnitude = amount, Score = priority (1-10),
//     Volume = data volume in KB
//
// IDs are 1-based as in the source datasets; the primary cloudlet id is ID-1.
type WorkloadRecord struct {
	ID        int64 `yaml:"id" validate:"gt=0"`
	Category  int   `yaml:"category,omitempty" validate:"gte=0"`
	Magnitude int64 `yaml:"magnitude" validate:"gte=0"`
	Score     int64 `yaml:"score" validate:"gte=0"`
	Volume    int64 `yaml:"volume" validate:"gte=0"`
}

// Field returns the named attribute as a float64. ok is false for unknown names.
func (r WorkloadRecord) Field(name string) (v float64, ok bool) {
	switch name {
	case FieldID:
		return float64(r.ID), true
	case FieldCategory:
		return float64(r.Category), true
	case FieldMagnitude:
		return float64(r.Magnitude), true
	case FieldScore:
		return float64(r.Score), true
	case FieldVolume:
		return float64(r.Volume), true
	}
	return 0, false
}

// UtilizationModel describes how much of a VM's CPU, RAM and bandwidth a cloudlet
// requests over its lifetime. Initial and Max are fractions in [0,1]; Growth is the
// increase per simulated second (0 keeps the utilization constant at Initial).
type UtilizationModel struct {
	Initial float64 `json:"initial"`
	Max     float64 `json:"max"`
	Growth  float64 `json:"growth,omitempty"`
}

// ValueAt returns the requested fraction after elapsed seconds of execution.
func (m UtilizationModel) ValueAt(elapsed float64) float64 {
	if elapsed < 0 {
		elapsed = 0
	}
	return math.Min(m.Max, m.Initial+m.Growth*elapsed)
}

// CloudletSpec is one unit of work derived from a WorkloadRecord.
// VmID is fixed at generation time; no migration is modeled.
type CloudletSpec struct {
	ID          int              `json:"id"`
	RecordID    int64            `json:"record_id"`
	Length      int64            `json:"length_mi"`
	PEs         int              `json:"pes"`
	FileSize    int64            `json:"file_size"`
	OutputSize  int64            `json:"output_size"`
	Utilization UtilizationModel `json:"utilization"`
	VmID        int              `json:"vm_id"`
	FollowUp    bool             `json:"follow_up,omitempty"`
}
