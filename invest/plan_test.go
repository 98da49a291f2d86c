package invest

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyRate_ExtractsFirstPercentage(t *testing.T) {
	cases := []struct {
		label string
		want  string
	}{
		{"Moderate - 20% Monthly", "0.2"},
		{"Premium - 25% Monthly RoI", "0.25"},
		{"5% intro then 10% later", "0.05"}, // first match wins
		{"No rate at all", "0"},
		{"", "0"},
		{"% Monthly", "0"}, // pattern requires digits
	}
	for _, tc := range cases {
		got := MonthlyRate(tc.label)
		assert.True(t, decimal.RequireFromString(tc.want).Equal(got),
			"MonthlyRate(%q) = %s, want %s", tc.label, got, tc.want)
	}
}

func TestPlanName_SplitsLabel(t *testing.T) {
	assert.Equal(t, "Moderate", PlanName("Moderate - 20% Monthly"))
	assert.Equal(t, "Standalone", PlanName("Standalone"))
}

func TestPlanByID(t *testing.T) {
	plans := DefaultPlans()

	p, ok := PlanByID(plans, "moderate")
	require.True(t, ok)
	assert.Equal(t, "Moderate - 20% Monthly", p.Label)
	// Catalog rate and label-derived rate must agree.
	assert.True(t, p.Rate.Equal(MonthlyRate(p.Label)))

	_, ok = PlanByID(plans, "missing")
	assert.False(t, ok)
}

func TestPlanValidateAmount_Bounds(t *testing.T) {
	p, _ := PlanByID(DefaultPlans(), "moderate")

	assert.Error(t, p.ValidateAmount(decimal.NewFromInt(49999)))
	assert.NoError(t, p.ValidateAmount(decimal.NewFromInt(50000)))
	assert.NoError(t, p.ValidateAmount(decimal.NewFromInt(5000000)))
	assert.Error(t, p.ValidateAmount(decimal.NewFromInt(5000001)))

	err := p.ValidateAmount(decimal.NewFromInt(100))
	assert.True(t, IsClientError(err))
}
