package payroll

import "context"

// Source supplies the collections a payroll run reads. Month-scoped lists may
// return records outside the month; the engine filters again.
type Source interface {
	ListStaff(ctx context.Context) ([]StaffProfile, error)
	ListAttendance(ctx context.Context, month Month) ([]AttendanceRecord, error)
	ListLeaveRequests(ctx context.Context, month Month) ([]LeaveRequest, error)
	ListSalaryAdvances(ctx context.Context, month Month) ([]SalaryAdvance, error)
	ListClaims(ctx context.Context, month Month) ([]ClaimRequest, error)
	ListKPI(ctx context.Context, month Month) ([]KPIRecord, error)
	ListPublicHolidays(ctx context.Context) ([]PublicHoliday, error)
	ListHolidayPolicies(ctx context.Context, year int) ([]HolidayPolicy, error)
	ListHolidayWorkLogs(ctx context.Context, month Month) ([]HolidayWorkLog, error)
}
