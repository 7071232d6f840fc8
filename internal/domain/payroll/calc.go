package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Compute produces a payroll entry for every active staff member in
// inputs.Month. It is pure: the same inputs and settings always yield the
// same result. A staff member whose entry cannot be computed is reported in
// Result.Failures and does not affect anyone else. The only error returned
// is for settings that make the whole run meaningless.
func Compute(inputs Inputs, settings Settings) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}
	if inputs.Month.IsZero() {
		return Result{}, ErrInvalidMonth
	}

	cal := holidayCalendar{
		holidays: inputs.Holidays,
		policies: inputs.HolidayPolicies,
		logs:     inputs.HolidayWorkLogs,
	}

	result := Result{
		Month:    inputs.Month,
		Entries:  []PayrollEntry{},
		Failures: []ComputationError{},
	}
	for _, staff := range inputs.Staff {
		if staff.Status != StaffStatusActive {
			continue
		}
		entry, err := computeGuarded(staff, inputs, cal, settings)
		if err != nil {
			result.Failures = append(result.Failures, ComputationError{StaffID: staff.ID, StaffName: staff.Name, Err: err})
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	sortByNetPay(result.Entries)
	result.Summary = summarize(inputs.Month, result.Entries, len(result.Failures))
	return result, nil
}

func computeGuarded(staff StaffProfile, inputs Inputs, cal holidayCalendar, settings Settings) (entry PayrollEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry = PayrollEntry{}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return computeEntry(staff, inputs, cal, settings)
}

func computeEntry(staff StaffProfile, inputs Inputs, cal holidayCalendar, settings Settings) (PayrollEntry, error) {
	month := inputs.Month
	att := aggregateAttendance(staff.ID, month, inputs.Attendance)
	lv := accountLeave(staff.ID, month, inputs.Leaves, settings.LeaveProration)

	pay, err := computeBasePay(staff, att, lv, settings)
	if err != nil {
		return PayrollEntry{}, err
	}
	holiday := computeHolidayPay(staff.ID, att, cal, pay.HourlyRate, settings.UnresolvedHolidayChoice)

	entry := PayrollEntry{
		StaffID:         staff.ID,
		StaffName:       staff.Name,
		Role:            staff.Role,
		SalaryType:      staff.SalaryType,
		Month:           month,
		DaysWorked:      att.DaysWorked,
		PaidLeaveDays:   round(lv.PaidDays),
		UnpaidLeaveDays: round(lv.UnpaidDays),
		DaysAbsent:      round(pay.DaysAbsent),
		TotalHours:      round(att.TotalHours()),
		OTHours:         round(pay.OTHours),
		HourlyRate:      round(pay.HourlyRate),
		BasePay:         round(pay.BasePay),
		OTPay:           round(pay.OTPay),
		HolidayPay:      round(holiday.Pay),
		OtherDeductions: decimal.Zero,
	}
	if entry.SalaryType == "" {
		entry.SalaryType = SalaryTypeMonthly
	}

	score, bonus := kpiFor(inputs.KPI, staff.ID, month)
	entry.KPIScore = score
	entry.KPIBonus = round(bonus)

	entry.Allowances = componentLines(staff.Allowances, entry.BasePay)
	entry.Claims = claimLines(staff.ID, month, inputs.Claims)
	allowances := sumLines(entry.Allowances)
	entry.GrossPay = entry.BasePay.
		Add(entry.OTPay).
		Add(entry.HolidayPay).
		Add(entry.KPIBonus).
		Add(allowances).
		Add(sumLines(entry.Claims))

	contributionBase := entry.BasePay.
		Add(entry.OTPay).
		Add(entry.HolidayPay).
		Add(allowances).
		Add(entry.KPIBonus)
	entry.Statutory = statutoryFor(staff.Statutory.Resolve(settings.DefaultStatutory), contributionBase)
	entry.FixedDeductions = componentLines(staff.FixedDeductions, entry.BasePay)
	entry.Advances = advancesFor(staff.ID, month, inputs.Advances)
	entry.TotalDeductions = entry.Statutory.TAP.
		Add(entry.Statutory.SCP).
		Add(sumLines(entry.FixedDeductions)).
		Add(entry.Advances).
		Add(entry.OtherDeductions)
	entry.NetPay = entry.GrossPay.Sub(entry.TotalDeductions)

	if att.DaysWorked == 0 {
		entry.Warnings = append(entry.Warnings, WarningNoAttendance)
	}
	if holiday.Unresolved {
		entry.Warnings = append(entry.Warnings, WarningHolidayChoiceUnresolved)
	}
	if entry.NetPay.IsNegative() {
		entry.Warnings = append(entry.Warnings, WarningNegativeNet)
	}
	return entry, nil
}
