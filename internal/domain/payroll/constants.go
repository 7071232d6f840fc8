package payroll

const (
	StaffStatusActive     = "active"
	StaffStatusInactive   = "inactive"
	StaffStatusOnLeave    = "on-leave"
	StaffStatusTerminated = "terminated"

	SalaryTypeMonthly = "monthly"
	SalaryTypeHourly  = "hourly"
	SalaryTypeDaily   = "daily"

	ComponentFixed      = "fixed"
	ComponentPercentage = "percentage"

	LeaveTypeAnnual        = "annual"
	LeaveTypeMedical       = "medical"
	LeaveTypeEmergency     = "emergency"
	LeaveTypeReplacement   = "replacement"
	LeaveTypeMaternity     = "maternity"
	LeaveTypePaternity     = "paternity"
	LeaveTypeCompassionate = "compassionate"
	LeaveTypeStudy         = "study"
	LeaveTypeUnpaid        = "unpaid"

	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusDeducted = "deducted"
	StatusPaid     = "paid"

	CompensationNone             = "none"
	CompensationDoublePay        = "double_pay"
	CompensationReplacementLeave = "replacement_leave"
	CompensationStaffChoice      = "staff_choice"

	UnresolvedChoicePay   = "pay"
	UnresolvedChoiceLeave = "leave"
	UnresolvedChoiceFlag  = "flag"

	LeaveProrationProrate = "prorate"
	LeaveProrationLegacy  = "legacy"

	WarningNegativeNet             = "negative_net"
	WarningNoAttendance            = "no_attendance"
	WarningHolidayChoiceUnresolved = "holiday_choice_unresolved"

	Currency = "BND"
)

var (
	SalaryTypes       = []string{SalaryTypeMonthly, SalaryTypeHourly, SalaryTypeDaily}
	UnresolvedChoices = []string{UnresolvedChoicePay, UnresolvedChoiceLeave, UnresolvedChoiceFlag}
	LeaveProrations   = []string{LeaveProrationProrate, LeaveProrationLegacy}
)
