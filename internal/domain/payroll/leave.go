package payroll

import (
	"github.com/shopspring/decimal"

	"outlethr/internal/domain/leave"
)

type leaveTotals struct {
	PaidDays   decimal.Decimal
	UnpaidDays decimal.Decimal
}

// accountLeave sums approved leave touching month. In prorate mode a request
// spanning a month boundary contributes only the share of its duration that
// falls inside the month; in legacy mode it contributes its full duration to
// every month its start or end falls in.
func accountLeave(staffID string, month Month, requests []LeaveRequest, mode string) leaveTotals {
	totals := leaveTotals{PaidDays: decimal.Zero, UnpaidDays: decimal.Zero}
	for _, req := range requests {
		if req.StaffID != staffID || req.Status != StatusApproved {
			continue
		}
		days := leaveDaysInMonth(req, month, mode)
		if !days.IsPositive() {
			continue
		}
		if req.Type == LeaveTypeUnpaid {
			totals.UnpaidDays = totals.UnpaidDays.Add(days)
		} else {
			totals.PaidDays = totals.PaidDays.Add(days)
		}
	}
	return totals
}

func leaveDaysInMonth(req LeaveRequest, month Month, mode string) decimal.Decimal {
	start, end := req.StartDate.Time, req.EndDate.Time
	switch {
	case start.IsZero() && end.IsZero():
		return decimal.Zero
	case start.IsZero():
		start = end
	case end.IsZero():
		end = start
	}

	legacy := func() decimal.Decimal {
		if leave.Touches(start, end, month.Start(), month.End()) {
			return req.Duration
		}
		return decimal.Zero
	}
	if mode == LeaveProrationLegacy {
		return legacy()
	}

	span, err := leave.CalculateDays(start, end)
	if err != nil {
		// Inverted range: nothing to prorate against.
		return legacy()
	}
	overlap, err := leave.OverlapDays(start, end, month.Start(), month.End())
	if err != nil || overlap == 0 {
		return decimal.Zero
	}
	if overlap == span {
		return req.Duration
	}
	return req.Duration.Mul(decimal.NewFromFloat(overlap)).Div(decimal.NewFromFloat(span))
}
