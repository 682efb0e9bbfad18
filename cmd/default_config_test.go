package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiersim/tiersim/sim"
)

func TestDefaultProfiles_ParseAndValidate(t *testing.T) {
	// GIVEN the embedded defaults.yaml
	set, err := loadProfileSet("")
	require.NoError(t, err)

	// THEN both built-in profiles exist, customer is the default, and each validates
	assert.Equal(t, []string{"customer", "financial"}, set.Names())
	assert.Equal(t, "customer", set.Default)
	for _, name := range set.Names() {
		p, err := set.Get(name)
		require.NoError(t, err)
		assert.NoError(t, p.Validate(), name)
		assert.Len(t, p.Records, 20, name)
	}
}

func TestDefaultProfiles_MatchSourcePrograms(t *testing.T) {
	set, err := loadProfileSet("")
	require.NoError(t, err)

	customer, _ := set.Get("customer")
	assert.Equal(t, sim.ClassifierCustomer, customer.Classifier)
	assert.Equal(t, sim.RouteByID, customer.RouteKey)
	assert.Equal(t, 5.0, customer.SamplingInterval)
	assert.Equal(t, 0.1, customer.CostRate)
	assert.Equal(t, 10, customer.RecordLimit)

	financial, _ := set.Get("financial")
	assert.Equal(t, sim.ClassifierTransaction, financial.Classifier)
	assert.Equal(t, sim.RouteByScore, financial.RouteKey)
	assert.Equal(t, 10.0, financial.SamplingInterval)
	assert.Equal(t, 0.05, financial.CostRate)

	// Both programs use tiers of size {2,3,2}.
	for _, p := range []*sim.Profile{customer, financial} {
		f, err := sim.BuildFleet(p.Fleet)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 2}, []int{f.Layout[0].Size, f.Layout[1].Size, f.Layout[2].Size})
	}
}

func TestLoadProfileSet_ExternalFile(t *testing.T) {
	_, err := loadProfileSet("does-not-exist.yaml")
	assert.Error(t, err)
}
