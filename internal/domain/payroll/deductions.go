package payroll

import (
	"github.com/shopspring/decimal"
)

func statutoryFor(rates StatutoryRates, contributionBase decimal.Decimal) Statutory {
	out := Statutory{
		TAP:         decimal.Zero,
		SCP:         decimal.Zero,
		TAPEmployer: decimal.Zero,
		SCPEmployer: decimal.Zero,
		TAPEnabled:  rates.TAPEnabled,
		SCPEnabled:  rates.SCPEnabled,
	}
	if rates.TAPEnabled {
		out.TAP = round(contributionBase.Mul(rates.TAPEmployeeRate).Div(hundred))
		out.TAPEmployer = round(contributionBase.Mul(rates.TAPEmployerRate).Div(hundred))
	}
	if rates.SCPEnabled {
		out.SCP = round(contributionBase.Mul(rates.SCPEmployeeRate).Div(hundred))
		out.SCPEmployer = round(contributionBase.Mul(rates.SCPEmployerRate).Div(hundred))
	}
	return out
}

// advancesFor sums the advances due in month. An advance pinned to a
// deduction month is due only then; an unpinned one is due in the month it
// was requested. Advances already marked deducted stay in the month they were
// deducted from, so recomputing a closed month gives the same net pay.
func advancesFor(staffID string, month Month, advances []SalaryAdvance) decimal.Decimal {
	total := decimal.Zero
	for _, adv := range advances {
		if adv.StaffID != staffID {
			continue
		}
		pinned := adv.DeductedMonth != nil && !adv.DeductedMonth.IsZero()
		switch {
		case adv.Status == StatusDeducted:
			if !pinned || *adv.DeductedMonth != month {
				continue
			}
		case adv.Status != StatusApproved:
			continue
		case pinned:
			if *adv.DeductedMonth != month {
				continue
			}
		case !adv.RequestedAt.IsZero() && MonthOf(adv.RequestedAt) != month:
			continue
		}
		total = total.Add(adv.Amount)
	}
	return round(total)
}
