/*
plan.go - Plan catalog and monthly rate extraction

Historically the plan's rate lives only inside the free-text type label
("Moderate - 20% Monthly") and is regex-extracted wherever it is needed. That
stays supported for every record already written. New submissions go through
the structured Plan catalog instead, and the label is derived for display.
*/
package invest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ratePattern = regexp.MustCompile(`(\d+)%`)

// MonthlyRate extracts the monthly rate from a plan label: the first
// integer-percentage match, as a fraction ("20%" -> 0.20). Returns zero when
// the label carries no percentage.
func MonthlyRate(label string) decimal.Decimal {
	m := ratePattern.FindStringSubmatch(label)
	if m == nil {
		return decimal.Zero
	}
	pct, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(pct).Div(decimal.NewFromInt(100))
}

// PlanName returns the display name portion of a plan label
// ("Moderate - 20% Monthly" -> "Moderate").
func PlanName(label string) string {
	name, _, _ := strings.Cut(label, " - ")
	return strings.TrimSpace(name)
}

// =============================================================================
// PLAN CATALOG
// =============================================================================

// Plan is a structured investment plan. The Label is what gets stored on the
// investment record and shown to users; Rate is authoritative for new records.
type Plan struct {
	ID           string
	Label        string
	Rate         decimal.Decimal // monthly, as a fraction
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	TenureMonths int
}

// DefaultPlans is the catalog currently offered.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:           "moderate",
			Label:        "Moderate - 20% Monthly",
			Rate:         decimal.NewFromInt(20).Div(decimal.NewFromInt(100)),
			MinAmount:    decimal.NewFromInt(50000),
			MaxAmount:    decimal.NewFromInt(5000000),
			TenureMonths: 12,
		},
	}
}

// PlanByID looks a plan up in the catalog.
func PlanByID(plans []Plan, id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// ValidateAmount checks a proposed principal against the plan bounds.
func (p Plan) ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThan(p.MinAmount) {
		return &ValidationError{Field: "amount", Message: "below plan minimum of " + p.MinAmount.StringFixed(0)}
	}
	if p.MaxAmount.IsPositive() && amount.GreaterThan(p.MaxAmount) {
		return &ValidationError{Field: "amount", Message: "above plan maximum of " + p.MaxAmount.StringFixed(0)}
	}
	return nil
}
