// Package testutil provides shared test infrastructure for tiersim.
// It holds the golden dataset types and assertion helpers used by sim/ tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is the expected cloudlet set of one built-in profile.
type GoldenTestCase struct {
	Profile   string           `json:"profile"`
	Records   int              `json:"records"`
	Cloudlets []GoldenCloudlet `json:"cloudlets"`
}

// GoldenCloudlet is one expected cloudlet, in submission order.
type GoldenCloudlet struct {
	ID       int     `json:"id"`
	RecordID int64   `json:"record_id"`
	VmID     int     `json:"vm_id"`
	Length   int64   `json:"length_mi"`
	PEs      int     `json:"pes"`
	Initial  float64 `json:"initial"`
	FollowUp bool    `json:"follow_up"`
}

// RepoPath resolves elems relative to the repository root.
// The path is resolved relative to this source file: sim/internal/testutil/ → repo root.
func RepoPath(t *testing.T, elems ...string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	root := filepath.Join(filepath.Dir(thisFile), "..", "..", "..")
	return filepath.Join(append([]string{root}, elems...)...)
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	data, err := os.ReadFile(RepoPath(t, "testdata", "goldendataset.json"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
