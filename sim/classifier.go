package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Classifier names accepted in Profile.Classifier.
const (
	ClassifierCustomer    = "customer"
	ClassifierTransaction = "transaction"
)

// validClassifiers maps accepted classifier names.
var validClassifiers = map[string]bool{
	ClassifierCustomer:    true,
	ClassifierTransaction: true,
}

// Transaction categories of the financial profile.
const (
	CategoryDeposit     = 0
	CategoryWithdrawal  = 1
	CategoryStockTrade  = 2
	CategoryPayment     = 3
	CategoryBatchReport = 4
)

// Classification is the result of classifying one record.
// FollowUp is nil unless the profile's follow-up rule triggered; its ID and VmID are
// filled in by GenerateCloudlets.
type Classification struct {
	Primary  CloudletSpec
	FollowUp *CloudletSpec
}

// Classifier maps a raw record to cloudlet resource demands. Implementations are pure.
type Classifier interface {
	Classify(rec WorkloadRecord) (Classification, error)
}

// NewClassifier returns the classifier registered under kind.
func NewClassifier(kind string, followUp FollowUpRule) (Classifier, error) {
	switch kind {
	case ClassifierCustomer:
		logrus.Debugf("customer classifier: core count is always 1 (score/80 is capped at 1 before the floor of 1)")
		return &CustomerClassifier{FollowUp: followUp}, nil
	case ClassifierTransaction:
		return &TransactionClassifier{FollowUp: followUp}, nil
	}
	return nil, &ConfigError{Err: fmt.Errorf("unknown classifier %q; valid: customer, transaction", kind)}
}

// CustomerClassifier sizes cloudlets from customer income, spending score and
// purchase frequency.
type CustomerClassifier struct {
	FollowUp FollowUpRule
}

// Classify implements Classifier for CustomerClassifier.
//
// The core count formula max(1, min(1, score/80)) always yields 1. This is kept as
// observed; a score-dependent core count would change every downstream latency.
func (c *CustomerClassifier) Classify(rec WorkloadRecord) (Classification, error) {
	income, score, freq := rec.Magnitude, rec.Score, rec.Volume

	pes := max(1, min(1, int(float64(score)/80.0)))
	initial := (0.1 + float64(score)/300.0) / 2
	maxUtil := (0.6 + float64(freq)/150.0) / 2

	primary := CloudletSpec{
		ID:         int(rec.ID) - 1,
		RecordID:   rec.ID,
		Length:     (3000 + income/300 + score*30) / 2,
		PEs:        pes,
		FileSize:   (150 + freq*20) / 2,
		OutputSize: (150 + score*2) / 2,
		Utilization: UtilizationModel{
			Initial: clampUtilization(initial, "initial", rec.ID),
			Max:     clampUtilization(maxUtil, "max", rec.ID),
		},
	}
	return Classification{Primary: primary, FollowUp: followUpFor(c.FollowUp, rec, primary, initial)}, nil
}

// TransactionClassifier sizes cloudlets by transaction type, amount, priority and
// data volume.
type TransactionClassifier struct {
	FollowUp FollowUpRule
}

// Classify implements Classifier for TransactionClassifier.
// An undefined category is a configuration error.
func (c *TransactionClassifier) Classify(rec WorkloadRecord) (Classification, error) {
	amount, priority, volume := rec.Magnitude, rec.Score, rec.Volume
	p := float64(priority)

	var (
		length     int64
		pes        = 1
		fileSize   = volume
		outputSize = volume / 2
		initial    float64
		maxUtil    float64
	)

	switch rec.Category {
	case CategoryDeposit, CategoryWithdrawal:
		length = 5000 + amount/100
		initial = 0.4 + p/20.0
		maxUtil = 0.7 + p/30.0
	case CategoryStockTrade:
		length = 20000 + amount/1000
		pes = max(1, int(p/5.0))
		initial = 0.6 + p/15.0
		maxUtil = 0.9 + p/20.0
	case CategoryPayment:
		length = 3000 + amount/50
		initial = 0.3 + p/25.0
		maxUtil = 0.6 + p/35.0
	case CategoryBatchReport:
		length = 50000 + amount/100
		pes = 2
		fileSize = volume * 5
		outputSize = volume * 3
		initial = 0.2 + p/40.0
		maxUtil = 0.5 + p/50.0
	default:
		return Classification{}, &ConfigError{Err: fmt.Errorf("record %d: undefined category %d", rec.ID, rec.Category)}
	}

	primary := CloudletSpec{
		ID:         int(rec.ID) - 1,
		RecordID:   rec.ID,
		Length:     length,
		PEs:        pes,
		FileSize:   fileSize,
		OutputSize: outputSize,
		Utilization: UtilizationModel{
			Initial: clampUtilization(initial, "initial", rec.ID),
			Max:     clampUtilization(maxUtil, "max", rec.ID),
		},
	}
	return Classification{Primary: primary, FollowUp: followUpFor(c.FollowUp, rec, primary, initial)}, nil
}

// followUpFor builds the scaled-down follow-up cloudlet when rule triggers.
// rawInitial is the unclamped initial utilization of the primary; the follow-up
// derives from it before clamping, and runs with an uncapped (1.0) maximum.
func followUpFor(rule FollowUpRule, rec WorkloadRecord, primary CloudletSpec, rawInitial float64) *CloudletSpec {
	if !rule.Triggered(rec) {
		return nil
	}
	return &CloudletSpec{
		ID:         -1,
		RecordID:   rec.ID,
		Length:     primary.Length / rule.Divisor,
		PEs:        primary.PEs,
		FileSize:   primary.FileSize / rule.Divisor,
		OutputSize: primary.OutputSize / rule.Divisor,
		Utilization: UtilizationModel{
			Initial: clampUtilization(rawInitial/rule.UtilizationDivisor, "follow-up initial", rec.ID),
			Max:     1.0,
		},
		FollowUp: true,
	}
}

// clampUtilization forces v into [0,1]. Formulas can exceed 1 for outlier inputs
// (e.g. priority-10 stock trades); the engine must never see such values.
func clampUtilization(v float64, what string, recordID int64) float64 {
	switch {
	case v > 1:
		logrus.Warnf("record %d: %s utilization %.3f clamped to 1", recordID, what, v)
		return 1
	case v < 0:
		logrus.Warnf("record %d: %s utilization %.3f clamped to 0", recordID, what, v)
		return 0
	}
	return v
}
