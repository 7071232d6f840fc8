package payroll

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// componentAmount resolves a fixed or percentage-of-base line.
func componentAmount(c PayComponent, base decimal.Decimal) decimal.Decimal {
	if c.Type == ComponentPercentage {
		return base.Mul(c.Amount).Div(hundred)
	}
	return c.Amount
}

func componentLines(components []PayComponent, base decimal.Decimal) []LineItem {
	lines := make([]LineItem, 0, len(components))
	for _, c := range components {
		lines = append(lines, LineItem{Name: c.Name, Amount: round(componentAmount(c, base))})
	}
	return lines
}

func claimLines(staffID string, month Month, claims []ClaimRequest) []LineItem {
	lines := []LineItem{}
	for _, c := range claims {
		if c.StaffID != staffID || c.Status != StatusApproved || !month.Contains(c.ClaimDate.Time) {
			continue
		}
		name := c.Description
		if name == "" {
			name = c.Type
		}
		lines = append(lines, LineItem{Name: name, Amount: round(c.Amount)})
	}
	return lines
}

func kpiFor(lookup KPILookup, staffID string, month Month) (score, bonus decimal.Decimal) {
	if lookup == nil {
		return decimal.Zero, decimal.Zero
	}
	rec, ok := lookup.StaffKPI(staffID, month)
	if !ok {
		return decimal.Zero, decimal.Zero
	}
	return rec.OverallScore, rec.BonusAmount
}

func sumLines(lines []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

// round is the single rounding rule: half away from zero to cents.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
