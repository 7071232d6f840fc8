package payrollhandler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"outlethr/internal/domain/payroll"
	"outlethr/internal/transport/http/shared"
)

type settingsOverrides struct {
	OTRateMultiplier        *decimal.Decimal                `json:"otRateMultiplier" validate:"omitempty,gt=0"`
	RegularHoursPerDay      *decimal.Decimal                `json:"regularHoursPerDay" validate:"omitempty,gt=0"`
	WorkingDaysPerMonth     *int                            `json:"workingDaysPerMonth" validate:"omitempty,gt=0"`
	UnresolvedHolidayChoice string                          `json:"unresolvedHolidayChoice" validate:"omitempty,oneof=pay leave flag"`
	LeaveProration          string                          `json:"leaveProration" validate:"omitempty,oneof=prorate legacy"`
	DefaultStatutory        *payroll.StatutoryContributions `json:"defaultStatutory"`
}

func (o *settingsOverrides) apply(base payroll.Settings) payroll.Settings {
	if o == nil {
		return base
	}
	out := base
	if o.OTRateMultiplier != nil {
		out.OTRateMultiplier = *o.OTRateMultiplier
	}
	if o.RegularHoursPerDay != nil {
		out.RegularHoursPerDay = *o.RegularHoursPerDay
	}
	if o.WorkingDaysPerMonth != nil {
		out.WorkingDaysPerMonth = *o.WorkingDaysPerMonth
	}
	if o.UnresolvedHolidayChoice != "" {
		out.UnresolvedHolidayChoice = o.UnresolvedHolidayChoice
	}
	if o.LeaveProration != "" {
		out.LeaveProration = o.LeaveProration
	}
	// Fields left out of the body keep their configured values.
	out.DefaultStatutory = o.DefaultStatutory.Resolve(base.DefaultStatutory)
	return out
}

type computeRequest struct {
	Month           string                     `json:"month" validate:"required"`
	Staff           []payroll.StaffProfile     `json:"staff" validate:"max=5000"`
	Attendance      []payroll.AttendanceRecord `json:"attendance"`
	Leaves          []payroll.LeaveRequest     `json:"leaves"`
	Advances        []payroll.SalaryAdvance    `json:"advances"`
	Claims          []payroll.ClaimRequest     `json:"claims"`
	KPI             []payroll.KPIRecord        `json:"kpi"`
	Holidays        []payroll.PublicHoliday    `json:"holidays"`
	HolidayPolicies []payroll.HolidayPolicy    `json:"holidayPolicies"`
	HolidayWorkLogs []payroll.HolidayWorkLog   `json:"holidayWorkLogs"`
	Settings        *settingsOverrides         `json:"settings"`
}

func (req computeRequest) validate(v *shared.Validator) {
	v.Struct(req)
	for i, staff := range req.Staff {
		v.Required("staff["+strconv.Itoa(i)+"].id", staff.ID, "is required")
	}
	for i, rec := range req.Attendance {
		v.Required("attendance["+strconv.Itoa(i)+"].staffId", rec.StaffID, "is required")
	}
}

func (req computeRequest) inputs(month payroll.Month) payroll.Inputs {
	return payroll.Inputs{
		Month:           month,
		Staff:           req.Staff,
		Attendance:      req.Attendance,
		Leaves:          req.Leaves,
		Advances:        req.Advances,
		Claims:          req.Claims,
		KPI:             payroll.KPIRecords(req.KPI),
		Holidays:        req.Holidays,
		HolidayPolicies: req.HolidayPolicies,
		HolidayWorkLogs: req.HolidayWorkLogs,
	}
}

type runRequest struct {
	Month    string             `json:"month" validate:"required"`
	Settings *settingsOverrides `json:"settings"`
}

type runDetails struct {
	Summary  payroll.Summary            `json:"summary"`
	Failures []payroll.ComputationError `json:"failures,omitempty"`
}

// settingsFromQuery layers otRate, regularHoursPerDay, workingDaysPerMonth,
// unresolvedChoice and leaveProration query parameters over base.
func settingsFromQuery(q url.Values, base payroll.Settings, v *shared.Validator) payroll.Settings {
	var o settingsOverrides
	if raw := strings.TrimSpace(q.Get("otRate")); raw != "" {
		if d, err := decimal.NewFromString(raw); err != nil {
			v.Add("otRate", "must be a number")
		} else {
			o.OTRateMultiplier = &d
		}
	}
	if raw := strings.TrimSpace(q.Get("regularHoursPerDay")); raw != "" {
		if d, err := decimal.NewFromString(raw); err != nil {
			v.Add("regularHoursPerDay", "must be a number")
		} else {
			o.RegularHoursPerDay = &d
		}
	}
	if raw := strings.TrimSpace(q.Get("workingDaysPerMonth")); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil {
			v.Add("workingDaysPerMonth", "must be an integer")
		} else {
			o.WorkingDaysPerMonth = &n
		}
	}
	o.UnresolvedHolidayChoice = strings.ToLower(strings.TrimSpace(q.Get("unresolvedChoice")))
	v.Enum("unresolvedChoice", o.UnresolvedHolidayChoice, payroll.UnresolvedChoices, "must be one of: "+strings.Join(payroll.UnresolvedChoices, " "))
	o.LeaveProration = strings.ToLower(strings.TrimSpace(q.Get("leaveProration")))
	v.Enum("leaveProration", o.LeaveProration, payroll.LeaveProrations, "must be one of: "+strings.Join(payroll.LeaveProrations, " "))
	return o.apply(base)
}
