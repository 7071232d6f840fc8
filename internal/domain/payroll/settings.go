package payroll

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Settings parameterises one engine pass.
type Settings struct {
	OTRateMultiplier        decimal.Decimal `json:"otRateMultiplier"`
	RegularHoursPerDay      decimal.Decimal `json:"regularHoursPerDay"`
	WorkingDaysPerMonth     int             `json:"workingDaysPerMonth"`
	UnresolvedHolidayChoice string          `json:"unresolvedHolidayChoice"`
	LeaveProration          string          `json:"leaveProration"`
	DefaultStatutory        StatutoryRates  `json:"defaultStatutory"`
}

// StatutoryRates is a fully resolved TAP/SCP configuration. Rates are percents.
type StatutoryRates struct {
	TAPEnabled      bool            `json:"tapEnabled"`
	TAPEmployeeRate decimal.Decimal `json:"tapEmployeeRate"`
	TAPEmployerRate decimal.Decimal `json:"tapEmployerRate"`
	SCPEnabled      bool            `json:"scpEnabled"`
	SCPEmployeeRate decimal.Decimal `json:"scpEmployeeRate"`
	SCPEmployerRate decimal.Decimal `json:"scpEmployerRate"`
}

func DefaultStatutoryRates() StatutoryRates {
	return StatutoryRates{
		TAPEnabled:      true,
		TAPEmployeeRate: decimal.NewFromInt(5),
		TAPEmployerRate: decimal.NewFromInt(5),
		SCPEnabled:      true,
		SCPEmployeeRate: decimal.RequireFromString("3.5"),
		SCPEmployerRate: decimal.RequireFromString("3.5"),
	}
}

func DefaultSettings() Settings {
	return Settings{
		OTRateMultiplier:        decimal.RequireFromString("1.5"),
		RegularHoursPerDay:      decimal.NewFromInt(8),
		WorkingDaysPerMonth:     26,
		UnresolvedHolidayChoice: UnresolvedChoicePay,
		LeaveProration:          LeaveProrationProrate,
		DefaultStatutory:        DefaultStatutoryRates(),
	}
}

func (s Settings) Validate() error {
	if !s.OTRateMultiplier.IsPositive() {
		return fmt.Errorf("%w: otRateMultiplier must be positive", ErrInvalidSettings)
	}
	if !s.RegularHoursPerDay.IsPositive() {
		return fmt.Errorf("%w: regularHoursPerDay must be positive", ErrInvalidSettings)
	}
	if s.WorkingDaysPerMonth <= 0 {
		return fmt.Errorf("%w: workingDaysPerMonth must be positive", ErrInvalidSettings)
	}
	if !slices.Contains(UnresolvedChoices, s.UnresolvedHolidayChoice) {
		return fmt.Errorf("%w: unresolvedHolidayChoice must be one of %v", ErrInvalidSettings, UnresolvedChoices)
	}
	if !slices.Contains(LeaveProrations, s.LeaveProration) {
		return fmt.Errorf("%w: leaveProration must be one of %v", ErrInvalidSettings, LeaveProrations)
	}
	rates := []decimal.Decimal{
		s.DefaultStatutory.TAPEmployeeRate, s.DefaultStatutory.TAPEmployerRate,
		s.DefaultStatutory.SCPEmployeeRate, s.DefaultStatutory.SCPEmployerRate,
	}
	for _, rate := range rates {
		if rate.IsNegative() {
			return fmt.Errorf("%w: statutory rates must not be negative", ErrInvalidSettings)
		}
	}
	return nil
}

// Resolve fills unset per-staff overrides from the defaults.
func (c *StatutoryContributions) Resolve(defaults StatutoryRates) StatutoryRates {
	out := defaults
	if c == nil {
		return out
	}
	if c.TAPEnabled != nil {
		out.TAPEnabled = *c.TAPEnabled
	}
	if c.TAPEmployeeRate != nil {
		out.TAPEmployeeRate = *c.TAPEmployeeRate
	}
	if c.TAPEmployerRate != nil {
		out.TAPEmployerRate = *c.TAPEmployerRate
	}
	if c.SCPEnabled != nil {
		out.SCPEnabled = *c.SCPEnabled
	}
	if c.SCPEmployeeRate != nil {
		out.SCPEmployeeRate = *c.SCPEmployeeRate
	}
	if c.SCPEmployerRate != nil {
		out.SCPEmployerRate = *c.SCPEmployerRate
	}
	return out
}
