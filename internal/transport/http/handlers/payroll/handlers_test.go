package payrollhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlethr/internal/domain/payroll"
	"outlethr/internal/platform/jobs"
	"outlethr/internal/transport/http/middleware"
)

type memorySource struct {
	staff      []payroll.StaffProfile
	attendance []payroll.AttendanceRecord
	err        error
}

func (m memorySource) ListStaff(context.Context) ([]payroll.StaffProfile, error) {
	return m.staff, m.err
}

func (m memorySource) ListAttendance(context.Context, payroll.Month) ([]payroll.AttendanceRecord, error) {
	return m.attendance, nil
}

func (memorySource) ListLeaveRequests(context.Context, payroll.Month) ([]payroll.LeaveRequest, error) {
	return nil, nil
}

func (memorySource) ListSalaryAdvances(context.Context, payroll.Month) ([]payroll.SalaryAdvance, error) {
	return nil, nil
}

func (memorySource) ListClaims(context.Context, payroll.Month) ([]payroll.ClaimRequest, error) {
	return nil, nil
}

func (memorySource) ListKPI(context.Context, payroll.Month) ([]payroll.KPIRecord, error) {
	return nil, nil
}

func (memorySource) ListPublicHolidays(context.Context) ([]payroll.PublicHoliday, error) {
	return nil, nil
}

func (memorySource) ListHolidayPolicies(context.Context, int) ([]payroll.HolidayPolicy, error) {
	return nil, nil
}

func (memorySource) ListHolidayWorkLogs(context.Context, payroll.Month) ([]payroll.HolidayWorkLog, error) {
	return nil, nil
}

type syncQueue struct {
	mu   sync.Mutex
	runs []jobs.Run
	full bool
}

func (q *syncQueue) Enqueue(ctx context.Context, jobType, month string, run jobs.Func) (jobs.Run, error) {
	if q.full {
		return jobs.Run{}, jobs.ErrQueueFull
	}
	record := jobs.Run{ID: fmt.Sprintf("run-%d", len(q.runs)+1), JobType: jobType, Month: month, Status: jobs.StatusCompleted}
	details, err := run(ctx)
	if err != nil {
		record.Status = jobs.StatusFailed
		record.Error = err.Error()
	} else {
		encoded, _ := json.Marshal(details)
		record.Details = encoded
	}
	q.mu.Lock()
	q.runs = append(q.runs, record)
	q.mu.Unlock()
	return record, nil
}

func (q *syncQueue) RunNow(ctx context.Context, jobType, month string, run jobs.Func) (any, error) {
	record, err := q.Enqueue(ctx, jobType, month, run)
	if err != nil {
		return nil, err
	}
	if record.Status == jobs.StatusFailed {
		return nil, errors.New(record.Error)
	}
	var details runDetails
	if err := json.Unmarshal(record.Details, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (q *syncQueue) ListRuns(_ context.Context, limit int) ([]jobs.Run, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.runs) > limit {
		return q.runs[:limit], nil
	}
	return q.runs, nil
}

func (q *syncQueue) GetRun(_ context.Context, id string) (jobs.Run, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, run := range q.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return jobs.Run{}, jobs.ErrRunNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

type resultBody struct {
	Entries  []payroll.PayrollEntry `json:"entries"`
	Failures []map[string]string    `json:"failures"`
	Summary  payroll.Summary        `json:"summary"`
}

func marchRoster() memorySource {
	staff := payroll.StaffProfile{
		ID:         "s1",
		Name:       "Ahmad Bin Hassan",
		Status:     payroll.StaffStatusActive,
		SalaryType: payroll.SalaryTypeMonthly,
		BaseSalary: decimal.NewFromInt(2600),
	}
	var attendance []payroll.AttendanceRecord
	for day := 1; day <= 20; day++ {
		attendance = append(attendance, payroll.AttendanceRecord{
			ID:       fmt.Sprintf("a%d", day),
			StaffID:  "s1",
			Date:     payroll.NewDate(2025, time.March, day),
			ClockIn:  "09:00",
			ClockOut: "17:00",
		})
	}
	return memorySource{staff: []payroll.StaffProfile{staff}, attendance: attendance}
}

func newRouter(source payroll.Source, queue RunQueue) http.Handler {
	h := NewHandler(payroll.NewService(source, nil), queue, payroll.DefaultSettings())
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	h.RegisterRoutes(r)
	return r
}

func do(t *testing.T, router http.Handler, method, path string, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Request-ID", "req-test")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got.String())
}

func TestMonthComputesFromSource(t *testing.T) {
	router := newRouter(marchRoster(), nil)
	rec, env := do(t, router, http.MethodGet, "/payroll/2025-03", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "req-test", env.RequestID)

	var result resultBody
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Entries, 1)
	assertDecimal(t, "2000.00", result.Entries[0].BasePay)
	assertDecimal(t, "1830.00", result.Entries[0].NetPay)
	assert.Equal(t, "Mac 2025", result.Summary.Label)
}

func TestMonthAppliesQueryOverrides(t *testing.T) {
	router := newRouter(marchRoster(), nil)
	rec, env := do(t, router, http.MethodGet, "/payroll/2025-03?workingDaysPerMonth=20&leaveProration=LEGACY", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result resultBody
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Entries, 1)
	assertDecimal(t, "2600.00", result.Entries[0].BasePay)
	assertDecimal(t, "2379.00", result.Entries[0].NetPay)
}

func TestMonthRejectsBadInput(t *testing.T) {
	router := newRouter(marchRoster(), nil)

	rec, env := do(t, router, http.MethodGet, "/payroll/2025-13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_month", env.Error.Code)

	rec, env = do(t, router, http.MethodGet, "/payroll/2025-03?otRate=abc&unresolvedChoice=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "otRate")
	assert.Contains(t, string(env.Error.Details), "unresolvedChoice")

	rec, env = do(t, router, http.MethodGet, "/payroll/2025-03?otRate=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_settings", env.Error.Code)
}

func TestMonthSourceFailure(t *testing.T) {
	source := marchRoster()
	source.err = errors.New("connection refused")
	router := newRouter(source, nil)

	rec, env := do(t, router, http.MethodGet, "/payroll/2025-03", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "payroll_failed", env.Error.Code)
}

func TestStaffEntry(t *testing.T) {
	router := newRouter(marchRoster(), nil)

	rec, env := do(t, router, http.MethodGet, "/payroll/2025-03/staff/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entry payroll.PayrollEntry
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, "s1", entry.StaffID)
	assert.Equal(t, 20, entry.DaysWorked)

	rec, env = do(t, router, http.MethodGet, "/payroll/2025-03/staff/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestStaffEntryReportsFailure(t *testing.T) {
	source := marchRoster()
	source.staff[0].SalaryType = "weekly"
	router := newRouter(source, nil)

	rec, env := do(t, router, http.MethodGet, "/payroll/2025-03/staff/s1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "entry_failed", env.Error.Code)
	assert.Contains(t, string(env.Error.Details), "unknown salary type")
}

func TestComputeFromPayload(t *testing.T) {
	roster := marchRoster()
	days := 20
	payload, err := json.Marshal(computeRequest{
		Month:      "2025-03",
		Staff:      roster.staff,
		Attendance: roster.attendance,
		KPI: []payroll.KPIRecord{{
			StaffID:      "s1",
			Month:        payroll.Month{Year: 2025, Month: time.March},
			OverallScore: decimal.NewFromInt(90),
			BonusAmount:  decimal.NewFromInt(100),
		}},
		Settings: &settingsOverrides{WorkingDaysPerMonth: &days},
	})
	require.NoError(t, err)

	router := newRouter(memorySource{}, nil)
	rec, env := do(t, router, http.MethodPost, "/payroll/compute", string(payload))
	require.Equal(t, http.StatusOK, rec.Code, string(env.Data))

	var result resultBody
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Entries, 1)
	assertDecimal(t, "100.00", result.Entries[0].KPIBonus)
	assertDecimal(t, "2700.00", result.Entries[0].GrossPay)
}

func TestComputeRejectsInvalidPayload(t *testing.T) {
	router := newRouter(memorySource{}, nil)

	rec, env := do(t, router, http.MethodPost, "/payroll/compute", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_payload", env.Error.Code)

	rec, env = do(t, router, http.MethodPost, "/payroll/compute",
		`{"staff":[{"name":"No ID"}],"settings":{"otRateMultiplier":-1,"leaveProration":"weekly"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)
	details := string(env.Error.Details)
	for _, field := range []string{"month", "staff[0].id", "settings.otRateMultiplier", "settings.leaveProration"} {
		assert.Contains(t, details, `"`+field+`"`)
	}

	rec, env = do(t, router, http.MethodPost, "/payroll/compute", `{"month":"March 2025"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_month", env.Error.Code)
}

func TestRunsLifecycle(t *testing.T) {
	queue := &syncQueue{}
	router := newRouter(marchRoster(), queue)

	rec, env := do(t, router, http.MethodPost, "/payroll/runs", `{"month":"2025-03"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var run jobs.Run
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, jobs.JobPayrollRun, run.JobType)
	assert.Equal(t, "2025-03", run.Month)

	var details runDetails
	require.NoError(t, json.Unmarshal(run.Details, &details))
	assert.Equal(t, 1, details.Summary.TotalStaff)
	assertDecimal(t, "1830.00", details.Summary.TotalNet)

	rec, env = do(t, router, http.MethodGet, "/payroll/runs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []jobs.Run
	require.NoError(t, json.Unmarshal(env.Data, &runs))
	assert.Len(t, runs, 1)

	rec, _ = do(t, router, http.MethodGet, "/payroll/runs/"+run.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, router, http.MethodGet, "/payroll/runs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestRunsRejectsBadRequests(t *testing.T) {
	queue := &syncQueue{}
	router := newRouter(marchRoster(), queue)

	rec, env := do(t, router, http.MethodPost, "/payroll/runs", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)

	rec, env = do(t, router, http.MethodPost, "/payroll/runs", `{"month":"2025-03","settings":{"workingDaysPerMonth":0}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", env.Error.Code)

	rec, env = do(t, router, http.MethodPost, "/payroll/runs", `{"month":"2025-03","settings":{"defaultStatutory":{"tapEmployeeRate":-1}}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_settings", env.Error.Code)

	queue.full = true
	rec, env = do(t, router, http.MethodPost, "/payroll/runs", `{"month":"2025-03"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "queue_full", env.Error.Code)
	assert.Empty(t, queue.runs)
}

func TestRunsEmptyList(t *testing.T) {
	router := newRouter(marchRoster(), &syncQueue{})
	rec, env := do(t, router, http.MethodGet, "/payroll/runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(bytes.TrimSpace(env.Data)))
}

func TestRunsWaitReturnsDetails(t *testing.T) {
	queue := &syncQueue{}
	router := newRouter(marchRoster(), queue)

	rec, env := do(t, router, http.MethodPost, "/payroll/runs?wait=true", `{"month":"2025-03"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var details runDetails
	require.NoError(t, json.Unmarshal(env.Data, &details))
	assert.Equal(t, 1, details.Summary.TotalStaff)
	assertDecimal(t, "1830.00", details.Summary.TotalNet)
	assert.Len(t, queue.runs, 1)
}

func TestStatutoryOverrideKeepsUnsetFields(t *testing.T) {
	base := payroll.DefaultSettings()
	var overrides settingsOverrides
	require.NoError(t, json.Unmarshal([]byte(`{"defaultStatutory":{"tapEmployeeRate":6}}`), &overrides))

	got := overrides.apply(base).DefaultStatutory
	assert.True(t, got.TAPEnabled)
	assertDecimal(t, "6", got.TAPEmployeeRate)
	assertDecimal(t, base.DefaultStatutory.TAPEmployerRate.String(), got.TAPEmployerRate)
	assert.True(t, got.SCPEnabled)
	assertDecimal(t, "3.5", got.SCPEmployeeRate)

	var scpOff settingsOverrides
	require.NoError(t, json.Unmarshal([]byte(`{"defaultStatutory":{"scpEnabled":false}}`), &scpOff))
	got = scpOff.apply(base).DefaultStatutory
	assert.False(t, got.SCPEnabled)
	assertDecimal(t, "5", got.TAPEmployeeRate)
}
