package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type StaffProfile struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	Role            string                  `json:"role"`
	Status          string                  `json:"status"`
	SalaryType      string                  `json:"salaryType"`
	BaseSalary      decimal.Decimal         `json:"baseSalary"`
	HourlyRate      decimal.Decimal         `json:"hourlyRate"`
	DailyRate       decimal.Decimal         `json:"dailyRate"`
	Allowances      []PayComponent          `json:"allowances"`
	FixedDeductions []PayComponent          `json:"fixedDeductions"`
	Statutory       *StatutoryContributions `json:"statutoryContributions,omitempty"`
}

// PayComponent is an allowance or fixed deduction line on a staff profile.
// Percentage amounts are a percent of base pay.
type PayComponent struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

// StatutoryContributions holds per-staff TAP/SCP overrides. Nil fields fall
// back to Settings.DefaultStatutory.
type StatutoryContributions struct {
	TAPEnabled      *bool            `json:"tapEnabled,omitempty"`
	TAPEmployeeRate *decimal.Decimal `json:"tapEmployeeRate,omitempty"`
	TAPEmployerRate *decimal.Decimal `json:"tapEmployerRate,omitempty"`
	SCPEnabled      *bool            `json:"scpEnabled,omitempty"`
	SCPEmployeeRate *decimal.Decimal `json:"scpEmployeeRate,omitempty"`
	SCPEmployerRate *decimal.Decimal `json:"scpEmployerRate,omitempty"`
}

type AttendanceRecord struct {
	ID           string `json:"id"`
	StaffID      string `json:"staffId"`
	Date         Date   `json:"date"`
	ClockIn      string `json:"clockInTime"`
	ClockOut     string `json:"clockOutTime"`
	BreakMinutes int    `json:"breakDuration"`
}

type LeaveRequest struct {
	ID        string          `json:"id"`
	StaffID   string          `json:"staffId"`
	Type      string          `json:"type"`
	StartDate Date            `json:"startDate"`
	EndDate   Date            `json:"endDate"`
	Duration  decimal.Decimal `json:"duration"`
	Status    string          `json:"status"`
}

type SalaryAdvance struct {
	ID            string          `json:"id"`
	StaffID       string          `json:"staffId"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	Status        string          `json:"status"`
	DeductedMonth *Month          `json:"deductedMonth,omitempty"`
	RequestedAt   time.Time       `json:"createdAt"`
}

type ClaimRequest struct {
	ID          string          `json:"id"`
	StaffID     string          `json:"staffId"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ClaimDate   Date            `json:"claimDate"`
	Status      string          `json:"status"`
}

type PublicHoliday struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      Date   `json:"date"`
	Recurring bool   `json:"isRecurring"`
}

type HolidayPolicy struct {
	ID               string           `json:"id"`
	HolidayID        string           `json:"holidayId"`
	Year             int              `json:"year"`
	IsOperating      bool             `json:"isOperating"`
	CompensationType string           `json:"compensationType"`
	PayMultiplier    *decimal.Decimal `json:"payMultiplier,omitempty"`
}

type HolidayWorkLog struct {
	ID                 string `json:"id"`
	StaffID            string `json:"staffId"`
	HolidayID          string `json:"holidayId"`
	WorkDate           Date   `json:"workDate"`
	CompensationChoice string `json:"compensationChoice"`
}

type KPIRecord struct {
	StaffID      string          `json:"staffId"`
	Month        Month           `json:"period"`
	OverallScore decimal.Decimal `json:"overallScore"`
	BonusAmount  decimal.Decimal `json:"bonusAmount"`
}

// KPILookup resolves a staff member's KPI score and bonus for a month.
type KPILookup interface {
	StaffKPI(staffID string, month Month) (KPIRecord, bool)
}

// KPIRecords is a slice-backed KPILookup.
type KPIRecords []KPIRecord

func (k KPIRecords) StaffKPI(staffID string, month Month) (KPIRecord, bool) {
	for _, rec := range k {
		if rec.StaffID == staffID && rec.Month == month {
			return rec, true
		}
	}
	return KPIRecord{}, false
}

// Inputs is everything the engine reads for one month.
type Inputs struct {
	Month           Month              `json:"month"`
	Staff           []StaffProfile     `json:"staff"`
	Attendance      []AttendanceRecord `json:"attendance"`
	Leaves          []LeaveRequest     `json:"leaves"`
	Advances        []SalaryAdvance    `json:"advances"`
	Claims          []ClaimRequest     `json:"claims"`
	KPI             KPILookup          `json:"-"`
	Holidays        []PublicHoliday    `json:"holidays"`
	HolidayPolicies []HolidayPolicy    `json:"holidayPolicies"`
	HolidayWorkLogs []HolidayWorkLog   `json:"holidayWorkLogs"`
}

type LineItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Statutory struct {
	TAP         decimal.Decimal `json:"tap"`
	SCP         decimal.Decimal `json:"scp"`
	TAPEmployer decimal.Decimal `json:"tapEmployer"`
	SCPEmployer decimal.Decimal `json:"scpEmployer"`
	TAPEnabled  bool            `json:"tapEnabled"`
	SCPEnabled  bool            `json:"scpEnabled"`
}

type PayrollEntry struct {
	StaffID         string          `json:"staffId"`
	StaffName       string          `json:"staffName"`
	Role            string          `json:"role"`
	SalaryType      string          `json:"salaryType"`
	Month           Month           `json:"month"`
	DaysWorked      int             `json:"daysWorked"`
	PaidLeaveDays   decimal.Decimal `json:"paidLeaveDays"`
	UnpaidLeaveDays decimal.Decimal `json:"unpaidLeaveDays"`
	DaysAbsent      decimal.Decimal `json:"daysAbsent"`
	TotalHours      decimal.Decimal `json:"totalHours"`
	OTHours         decimal.Decimal `json:"otHours"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
	BasePay         decimal.Decimal `json:"basePay"`
	OTPay           decimal.Decimal `json:"otPay"`
	HolidayPay      decimal.Decimal `json:"holidayPay"`
	KPIScore        decimal.Decimal `json:"kpiScore"`
	KPIBonus        decimal.Decimal `json:"kpiBonus"`
	Allowances      []LineItem      `json:"allowances"`
	Claims          []LineItem      `json:"claims"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	Statutory       Statutory       `json:"statutory"`
	FixedDeductions []LineItem      `json:"fixedDeductions"`
	Advances        decimal.Decimal `json:"advances"`
	OtherDeductions decimal.Decimal `json:"otherDeductions"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
	Warnings        []string        `json:"warnings,omitempty"`
}

type Summary struct {
	Month            Month           `json:"month"`
	Label            string          `json:"label"`
	TotalStaff       int             `json:"totalStaff"`
	FailedStaff      int             `json:"failedStaff"`
	TotalGross       decimal.Decimal `json:"totalGross"`
	TotalDeductions  decimal.Decimal `json:"totalDeductions"`
	TotalNet         decimal.Decimal `json:"totalNet"`
	TotalHours       decimal.Decimal `json:"totalHours"`
	TotalOT          decimal.Decimal `json:"totalOtHours"`
	TotalTAP         decimal.Decimal `json:"totalTap"`
	TotalSCP         decimal.Decimal `json:"totalScp"`
	TotalTAPEmployer decimal.Decimal `json:"totalTapEmployer"`
	TotalSCPEmployer decimal.Decimal `json:"totalScpEmployer"`
	TotalKPIBonus    decimal.Decimal `json:"totalKpiBonus"`
}

// Result is one engine pass. Every active staff member appears in exactly
// one of Entries or Failures.
type Result struct {
	Month    Month              `json:"month"`
	Entries  []PayrollEntry     `json:"entries"`
	Failures []ComputationError `json:"failures"`
	Summary  Summary            `json:"summary"`
}

// Entry returns the computed entry for staffID.
func (r Result) Entry(staffID string) (PayrollEntry, error) {
	for _, entry := range r.Entries {
		if entry.StaffID == staffID {
			return entry, nil
		}
	}
	return PayrollEntry{}, ErrStaffNotFound
}
