package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type basePay struct {
	BasePay    decimal.Decimal
	OTHours    decimal.Decimal
	OTPay      decimal.Decimal
	DaysAbsent decimal.Decimal
	// HourlyRate is the rate holiday premiums are paid at.
	HourlyRate decimal.Decimal
}

func computeBasePay(staff StaffProfile, att attendanceTotals, lv leaveTotals, settings Settings) (basePay, error) {
	workingDays := decimal.NewFromInt(int64(settings.WorkingDaysPerMonth))
	daysWorked := decimal.NewFromInt(int64(att.DaysWorked))
	totalHours := att.TotalHours()
	regularLimit := daysWorked.Mul(settings.RegularHoursPerDay)
	otHours := decimal.Max(decimal.Zero, totalHours.Sub(regularLimit))

	out := basePay{OTHours: otHours, DaysAbsent: decimal.Zero}
	switch staff.SalaryType {
	case SalaryTypeMonthly, "":
		accountable := daysWorked.Add(lv.PaidDays).Add(lv.UnpaidDays)
		out.DaysAbsent = decimal.Max(decimal.Zero, workingDays.Sub(accountable))
		unpaidDays := lv.UnpaidDays.Add(out.DaysAbsent)
		out.BasePay = staff.BaseSalary.Sub(staff.BaseSalary.Mul(unpaidDays).Div(workingDays))
		out.HourlyRate = staff.BaseSalary.Div(workingDays).Div(settings.RegularHoursPerDay)
	case SalaryTypeHourly:
		regularHours := decimal.Min(totalHours, regularLimit)
		leaveHours := lv.PaidDays.Mul(settings.RegularHoursPerDay)
		out.BasePay = regularHours.Add(leaveHours).Mul(staff.HourlyRate)
		out.HourlyRate = staff.HourlyRate
	case SalaryTypeDaily:
		dailyRate := staff.DailyRate
		if !dailyRate.IsPositive() {
			dailyRate = staff.BaseSalary.Div(workingDays)
		}
		out.BasePay = daysWorked.Add(lv.PaidDays).Mul(dailyRate)
		out.HourlyRate = dailyRate.Div(settings.RegularHoursPerDay)
	default:
		return basePay{}, fmt.Errorf("%w: %q", ErrUnknownSalaryType, staff.SalaryType)
	}
	out.OTPay = otHours.Mul(out.HourlyRate).Mul(settings.OTRateMultiplier)
	return out, nil
}
