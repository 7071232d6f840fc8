package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunRecorder receives one observation per engine pass.
type RunRecorder interface {
	RecordPayrollRun(entries, failures int, duration time.Duration)
}

type Service struct {
	source  Source
	metrics RunRecorder
}

func NewService(source Source, metrics RunRecorder) *Service {
	return &Service{source: source, metrics: metrics}
}

// LoadInputs fetches every collection for month concurrently.
func (s *Service) LoadInputs(ctx context.Context, month Month) (Inputs, error) {
	inputs := Inputs{Month: month}
	var kpi []KPIRecord

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		inputs.Staff, err = s.source.ListStaff(ctx)
		return wrapLoad("staff", err)
	})
	g.Go(func() (err error) {
		inputs.Attendance, err = s.source.ListAttendance(ctx, month)
		return wrapLoad("attendance", err)
	})
	g.Go(func() (err error) {
		inputs.Leaves, err = s.source.ListLeaveRequests(ctx, month)
		return wrapLoad("leave requests", err)
	})
	g.Go(func() (err error) {
		inputs.Advances, err = s.source.ListSalaryAdvances(ctx, month)
		return wrapLoad("salary advances", err)
	})
	g.Go(func() (err error) {
		inputs.Claims, err = s.source.ListClaims(ctx, month)
		return wrapLoad("claims", err)
	})
	g.Go(func() (err error) {
		kpi, err = s.source.ListKPI(ctx, month)
		return wrapLoad("kpi", err)
	})
	g.Go(func() (err error) {
		inputs.Holidays, err = s.source.ListPublicHolidays(ctx)
		return wrapLoad("public holidays", err)
	})
	g.Go(func() (err error) {
		inputs.HolidayPolicies, err = s.source.ListHolidayPolicies(ctx, month.Year)
		return wrapLoad("holiday policies", err)
	})
	g.Go(func() (err error) {
		inputs.HolidayWorkLogs, err = s.source.ListHolidayWorkLogs(ctx, month)
		return wrapLoad("holiday work logs", err)
	})
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	inputs.KPI = KPIRecords(kpi)
	return inputs, nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

// Compute loads month from the source and runs the engine over it.
func (s *Service) Compute(ctx context.Context, month Month, settings Settings) (Result, error) {
	if err := settings.Validate(); err != nil {
		return Result{}, err
	}
	inputs, err := s.LoadInputs(ctx, month)
	if err != nil {
		return Result{}, err
	}
	return s.ComputeInputs(inputs, settings)
}

// ComputeInputs runs the engine over caller-supplied inputs.
func (s *Service) ComputeInputs(inputs Inputs, settings Settings) (Result, error) {
	start := time.Now()
	result, err := Compute(inputs, settings)
	if err != nil {
		return Result{}, err
	}
	for _, failure := range result.Failures {
		slog.Warn("payroll entry failed", "month", result.Month.String(), "staffId", failure.StaffID, "err", failure.Err)
	}
	if s.metrics != nil {
		s.metrics.RecordPayrollRun(len(result.Entries), len(result.Failures), time.Since(start))
	}
	slog.Info("payroll computed",
		"month", result.Month.String(),
		"entries", len(result.Entries),
		"failures", len(result.Failures),
		"totalNet", result.Summary.TotalNet.StringFixed(2),
	)
	return result, nil
}
