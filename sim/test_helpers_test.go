package sim

// testFleetConfig returns a 4-host fleet with tiers of size {2,3,2}.
func testFleetConfig() FleetConfig {
	return FleetConfig{
		Hosts: HostConfig{Count: 4, PEs: 16, MIPS: 3000, RAM: 131072, BW: 40000, Storage: 1000000},
		Tiers: []TierConfig{
			{Name: "premium", Count: 2, PEs: 2, MIPS: 1500, RAM: 16384, BW: 2000, Size: 5000},
			{Name: "standard", Count: 3, PEs: 1, MIPS: 1000, RAM: 8192, BW: 1000, Size: 2500},
			{Name: "basic", Count: 2, PEs: 1, MIPS: 500, RAM: 4096, BW: 500, Size: 1250},
		},
	}
}

// customerRules mirrors the built-in customer profile thresholds.
func customerRules() []TierRule {
	return []TierRule{
		{Tier: "premium", AnyOf: []Condition{
			{Field: FieldMagnitude, Op: ">=", Value: 80000},
			{Field: FieldScore, Op: ">=", Value: 80},
			{Field: FieldVolume, Op: ">=", Value: 16},
		}},
		{Tier: "standard", AnyOf: []Condition{
			{Field: FieldMagnitude, Op: ">=", Value: 40000},
			{Field: FieldScore, Op: ">=", Value: 50},
			{Field: FieldVolume, Op: ">=", Value: 10},
		}},
		{Tier: "basic"},
	}
}

func customerFollowUp() FollowUpRule {
	return FollowUpRule{Field: FieldVolume, Above: 18, Divisor: 6, UtilizationDivisor: 3}
}

func transactionFollowUp() FollowUpRule {
	return FollowUpRule{Field: FieldScore, Above: 8, Categories: []int{CategoryStockTrade}, Divisor: 5, UtilizationDivisor: 2}
}

// testProfile returns a valid customer profile over the first ten built-in records.
func testProfile() *Profile {
	return &Profile{
		Name:             "customer",
		Classifier:       ClassifierCustomer,
		RouteKey:         RouteByID,
		Fleet:            testFleetConfig(),
		Rules:            customerRules(),
		FollowUp:         customerFollowUp(),
		SamplingInterval: 5,
		CostRate:         0.1,
		Records: []WorkloadRecord{
			{ID: 1, Magnitude: 15000, Score: 39, Volume: 5},
			{ID: 2, Magnitude: 40000, Score: 75, Volume: 12},
			{ID: 3, Magnitude: 1000000, Score: 60, Volume: 20},
			{ID: 4, Magnitude: 25000, Score: 40, Volume: 7},
			{ID: 5, Magnitude: 60000, Score: 55, Volume: 10},
			{ID: 6, Magnitude: 85000, Score: 90, Volume: 15},
			{ID: 7, Magnitude: 30000, Score: 50, Volume: 9},
			{ID: 8, Magnitude: 1100000, Score: 85, Volume: 18},
			{ID: 9, Magnitude: 20000, Score: 30, Volume: 4},
			{ID: 10, Magnitude: 75000, Score: 70, Volume: 14},
		},
	}
}

func mustFleet(cfg FleetConfig) *Fleet {
	f, err := BuildFleet(cfg)
	if err != nil {
		panic(err)
	}
	return f
}

func mustRouter(layout TierLayout, rules []TierRule, key RouteKey) *TierRouter {
	r, err := NewTierRouter(layout, rules, key)
	if err != nil {
		panic(err)
	}
	return r
}
