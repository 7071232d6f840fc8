package payroll

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var defaultHolidayMultiplier = decimal.NewFromInt(2)

type holidayCalendar struct {
	holidays []PublicHoliday
	policies []HolidayPolicy
	logs     []HolidayWorkLog
}

func (c holidayCalendar) holidayOn(day time.Time) (PublicHoliday, bool) {
	for _, h := range c.holidays {
		if h.Date.IsZero() {
			continue
		}
		if h.Date.Key() == DateOf(day).Key() {
			return h, true
		}
		if h.Recurring && h.Date.Month() == day.Month() && h.Date.Day() == day.Day() {
			return h, true
		}
	}
	return PublicHoliday{}, false
}

func (c holidayCalendar) policyFor(holidayID string, year int) (HolidayPolicy, bool) {
	for _, p := range c.policies {
		if p.HolidayID == holidayID && p.Year == year {
			return p, true
		}
	}
	return HolidayPolicy{}, false
}

func (c holidayCalendar) workLog(staffID, dateKey string) (HolidayWorkLog, bool) {
	for _, l := range c.logs {
		if l.StaffID == staffID && l.WorkDate.Key() == dateKey {
			return l, true
		}
	}
	return HolidayWorkLog{}, false
}

type holidayOutcome struct {
	Pay        decimal.Decimal
	Unresolved bool
}

// computeHolidayPay returns the premium on top of the regular pay already
// counted for each worked public holiday.
func computeHolidayPay(staffID string, att attendanceTotals, cal holidayCalendar, rate decimal.Decimal, unresolved string) holidayOutcome {
	out := holidayOutcome{Pay: decimal.Zero}

	dates := make([]string, 0, len(att.MinutesByDate))
	for key := range att.MinutesByDate {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	for _, key := range dates {
		day, err := time.Parse(dateLayout, key)
		if err != nil {
			continue
		}
		holiday, ok := cal.holidayOn(day)
		if !ok {
			continue
		}
		policy, ok := cal.policyFor(holiday.ID, day.Year())
		if !ok {
			continue
		}

		eligible := false
		if log, found := cal.workLog(staffID, key); found {
			eligible = log.CompensationChoice == CompensationDoublePay
		} else {
			switch policy.CompensationType {
			case CompensationDoublePay:
				eligible = true
			case CompensationStaffChoice:
				switch unresolved {
				case UnresolvedChoicePay:
					eligible = true
				case UnresolvedChoiceFlag:
					out.Unresolved = true
				}
			}
		}
		if !eligible {
			continue
		}

		multiplier := defaultHolidayMultiplier
		if policy.PayMultiplier != nil && !policy.PayMultiplier.IsZero() {
			multiplier = *policy.PayMultiplier
		}
		extra := att.HoursOn(key).Mul(rate).Mul(multiplier.Sub(decimal.NewFromInt(1)))
		out.Pay = out.Pay.Add(extra)
	}
	return out
}
