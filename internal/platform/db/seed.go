package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts a small demo roster so a fresh database produces a payroll.
// Existing rows are left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
    INSERT INTO staff_profiles (id, name, role, status, salary_type, base_salary, hourly_rate, allowances, statutory_contributions)
    VALUES
      ('staff-001', 'Ahmad Bin Hassan', 'Manager', 'active', 'monthly', 1500, 0,
       '[{"name":"Transport","amount":"100","type":"fixed"}]', NULL),
      ('staff-002', 'Siti Nurhaliza', 'Cashier', 'active', 'monthly', 1200, 0,
       '[{"name":"Meal","amount":"50","type":"fixed"}]', NULL),
      ('staff-003', 'Rahman Ali', 'Kitchen Crew', 'active', 'hourly', 0, 5,
       '[]', '{"tapEnabled": false, "scpEnabled": false}')
    ON CONFLICT (id) DO NOTHING
  `); err != nil {
		return err
	}

	_, err := pool.Exec(ctx, `
    INSERT INTO public_holidays (id, name, date, is_recurring)
    VALUES
      ('hol-new-year', 'Tahun Baru', '2025-01-01', true),
      ('hol-national-day', 'Hari Kebangsaan', '2025-02-23', true)
    ON CONFLICT (id) DO NOTHING
  `)
	return err
}
