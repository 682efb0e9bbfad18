package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiersim/tiersim/sim/trace"
)

func TestGenerateCloudlets_FollowUpsFollowPrimaryOnSameVM(t *testing.T) {
	// GIVEN the ten customer records, of which only record 3 has frequency > 18
	p := testProfile()
	f := mustFleet(p.Fleet)
	r := mustRouter(f.Layout, p.Rules, p.RouteKey)
	c, err := NewClassifier(p.Classifier, p.FollowUp)
	require.NoError(t, err)
	at := trace.NewAssignmentTrace(trace.TraceLevelDecisions)

	// WHEN cloudlets are generated
	cloudlets, err := GenerateCloudlets(p.Records, c, r, at)
	require.NoError(t, err)

	// THEN there are ten primaries plus one follow-up right after record 3's primary
	require.Len(t, cloudlets, 11)
	primary, fu := cloudlets[2], cloudlets[3]
	assert.Equal(t, 2, primary.ID)
	assert.False(t, primary.FollowUp)
	assert.True(t, fu.FollowUp)
	assert.Equal(t, primary.VmID, fu.VmID)
	assert.Equal(t, int64(3), fu.RecordID)

	// AND the follow-up id comes after every primary id
	assert.Equal(t, 10, fu.ID)
	ids := map[int]bool{}
	for _, cl := range cloudlets {
		assert.False(t, ids[cl.ID], "duplicate cloudlet id %d", cl.ID)
		ids[cl.ID] = true
	}

	// AND every assignment was traced
	require.Len(t, at.Assignments, 11)
	assert.True(t, at.Assignments[3].FollowUp)
	assert.Equal(t, fu.ID, at.Assignments[3].CloudletID)
}

func TestGenerateCloudlets_FollowUpIdsDoNotCollideWithLaterPrimaries(t *testing.T) {
	// GIVEN a follow-up-triggering first record and a sparse later id
	c := &CustomerClassifier{FollowUp: customerFollowUp()}
	r := mustRouter(mustFleet(testFleetConfig()).Layout, customerRules(), RouteByID)
	records := []WorkloadRecord{
		{ID: 1, Volume: 20},
		{ID: 2, Volume: 1},
		{ID: 3, Volume: 1},
	}

	cloudlets, err := GenerateCloudlets(records, c, r, nil)
	require.NoError(t, err)

	// THEN the follow-up takes id 3, not the size of the list at creation time (1)
	require.Len(t, cloudlets, 4)
	assert.Equal(t, []int{0, 3, 1, 2}, []int{cloudlets[0].ID, cloudlets[1].ID, cloudlets[2].ID, cloudlets[3].ID})
}

func TestGenerateCloudlets_UndefinedCategory_AbortsWithConfigError(t *testing.T) {
	c := &TransactionClassifier{FollowUp: transactionFollowUp()}
	r := mustRouter(mustFleet(testFleetConfig()).Layout, []TierRule{{Tier: "basic"}}, RouteByScore)
	records := []WorkloadRecord{
		{ID: 1, Category: CategoryPayment, Score: 5},
		{ID: 2, Category: 7, Score: 5},
	}

	cloudlets, err := GenerateCloudlets(records, c, r, nil)

	assert.Nil(t, cloudlets)
	var ce *ConfigError
	assert.True(t, errors.As(err, &ce), "expected ConfigError, got %v", err)
}

func TestGenerateCloudlets_DuplicateRecordID_IsConfigError(t *testing.T) {
	c := &CustomerClassifier{FollowUp: customerFollowUp()}
	r := mustRouter(mustFleet(testFleetConfig()).Layout, customerRules(), RouteByID)

	_, err := GenerateCloudlets([]WorkloadRecord{{ID: 4}, {ID: 4}}, c, r, nil)

	var ce *ConfigError
	assert.True(t, errors.As(err, &ce))
}

func TestGenerateCloudlets_NoMatchingTier_PropagatesSentinel(t *testing.T) {
	c := &CustomerClassifier{FollowUp: customerFollowUp()}
	rules := []TierRule{{Tier: "premium", AnyOf: []Condition{{Field: FieldScore, Op: ">=", Value: 80}}}}
	r := mustRouter(mustFleet(testFleetConfig()).Layout, rules, RouteByID)

	_, err := GenerateCloudlets([]WorkloadRecord{{ID: 1, Score: 10}}, c, r, nil)

	assert.ErrorIs(t, err, ErrNoMatchingTier)
}
