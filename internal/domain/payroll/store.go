package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"outlethr/internal/platform/querier"
)

// Store reads payroll inputs from Postgres.
type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) ListStaff(ctx context.Context) ([]StaffProfile, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, role, status, salary_type, base_salary, hourly_rate, daily_rate,
           allowances, fixed_deductions, statutory_contributions
    FROM staff_profiles
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []StaffProfile
	for rows.Next() {
		var p StaffProfile
		if err := rows.Scan(&p.ID, &p.Name, &p.Role, &p.Status, &p.SalaryType, &p.BaseSalary, &p.HourlyRate, &p.DailyRate,
			&p.Allowances, &p.FixedDeductions, &p.Statutory); err != nil {
			return nil, err
		}
		staff = append(staff, p)
	}
	return staff, rows.Err()
}

func (s *Store) ListAttendance(ctx context.Context, month Month) ([]AttendanceRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, date, COALESCE(clock_in_time, ''), COALESCE(clock_out_time, ''), break_duration
    FROM attendance_records
    WHERE date BETWEEN $1 AND $2
    ORDER BY date, id
  `, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var rec AttendanceRecord
		var date time.Time
		if err := rows.Scan(&rec.ID, &rec.StaffID, &date, &rec.ClockIn, &rec.ClockOut, &rec.BreakMinutes); err != nil {
			return nil, err
		}
		rec.Date = DateOf(date)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) ListLeaveRequests(ctx context.Context, month Month) ([]LeaveRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, type, start_date, end_date, duration, status
    FROM leave_requests
    WHERE status = $1 AND start_date <= $3 AND end_date >= $2
    ORDER BY start_date, id
  `, StatusApproved, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []LeaveRequest
	for rows.Next() {
		var req LeaveRequest
		var start, end time.Time
		if err := rows.Scan(&req.ID, &req.StaffID, &req.Type, &start, &end, &req.Duration, &req.Status); err != nil {
			return nil, err
		}
		req.StartDate, req.EndDate = DateOf(start), DateOf(end)
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *Store) ListSalaryAdvances(ctx context.Context, month Month) ([]SalaryAdvance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, amount, reason, status, COALESCE(deducted_month, ''), created_at
    FROM salary_advances
    WHERE (status = $1 AND (deducted_month = $3 OR (COALESCE(deducted_month, '') = '' AND to_char(created_at, 'YYYY-MM') = $3)))
       OR (status = $2 AND deducted_month = $3)
    ORDER BY created_at, id
  `, StatusApproved, StatusDeducted, month.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advances []SalaryAdvance
	for rows.Next() {
		var adv SalaryAdvance
		var deducted string
		if err := rows.Scan(&adv.ID, &adv.StaffID, &adv.Amount, &adv.Reason, &adv.Status, &deducted, &adv.RequestedAt); err != nil {
			return nil, err
		}
		if deducted != "" {
			m, err := ParseMonth(deducted)
			if err != nil {
				return nil, err
			}
			adv.DeductedMonth = &m
		}
		advances = append(advances, adv)
	}
	return advances, rows.Err()
}

func (s *Store) ListClaims(ctx context.Context, month Month) ([]ClaimRequest, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, type, description, amount, claim_date, status
    FROM claim_requests
    WHERE status = $1 AND claim_date BETWEEN $2 AND $3
    ORDER BY claim_date, id
  `, StatusApproved, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []ClaimRequest
	for rows.Next() {
		var c ClaimRequest
		var date time.Time
		if err := rows.Scan(&c.ID, &c.StaffID, &c.Type, &c.Description, &c.Amount, &date, &c.Status); err != nil {
			return nil, err
		}
		c.ClaimDate = DateOf(date)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (s *Store) ListKPI(ctx context.Context, month Month) ([]KPIRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT staff_id, overall_score, bonus_amount
    FROM staff_kpi
    WHERE period = $1
  `, month.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []KPIRecord
	for rows.Next() {
		rec := KPIRecord{Month: month}
		if err := rows.Scan(&rec.StaffID, &rec.OverallScore, &rec.BonusAmount); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) ListPublicHolidays(ctx context.Context) ([]PublicHoliday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, date, is_recurring
    FROM public_holidays
    ORDER BY date, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []PublicHoliday
	for rows.Next() {
		var h PublicHoliday
		var date time.Time
		if err := rows.Scan(&h.ID, &h.Name, &date, &h.Recurring); err != nil {
			return nil, err
		}
		h.Date = DateOf(date)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (s *Store) ListHolidayPolicies(ctx context.Context, year int) ([]HolidayPolicy, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, holiday_id, year, is_operating, compensation_type, pay_multiplier
    FROM holiday_policies
    WHERE year = $1
  `, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []HolidayPolicy
	for rows.Next() {
		var p HolidayPolicy
		var multiplier decimal.NullDecimal
		if err := rows.Scan(&p.ID, &p.HolidayID, &p.Year, &p.IsOperating, &p.CompensationType, &multiplier); err != nil {
			return nil, err
		}
		if multiplier.Valid {
			p.PayMultiplier = &multiplier.Decimal
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (s *Store) ListHolidayWorkLogs(ctx context.Context, month Month) ([]HolidayWorkLog, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, staff_id, holiday_id, work_date, compensation_choice
    FROM holiday_work_logs
    WHERE work_date BETWEEN $1 AND $2
  `, month.Start(), month.End())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []HolidayWorkLog
	for rows.Next() {
		var l HolidayWorkLog
		var date time.Time
		if err := rows.Scan(&l.ID, &l.StaffID, &l.HolidayID, &date, &l.CompensationChoice); err != nil {
			return nil, err
		}
		l.WorkDate = DateOf(date)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
