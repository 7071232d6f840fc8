package payroll

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidSettings   = errors.New("invalid payroll settings")
	ErrInvalidMonth      = errors.New("month must be in YYYY-MM format")
	ErrUnknownSalaryType = errors.New("unknown salary type")
	ErrStaffNotFound     = errors.New("staff not found in payroll result")
)

// ComputationError records why a single staff entry could not be produced.
type ComputationError struct {
	StaffID   string `json:"staffId"`
	StaffName string `json:"staffName"`
	Err       error  `json:"-"`
}

func (e ComputationError) Error() string {
	return fmt.Sprintf("payroll for staff %s: %v", e.StaffID, e.Err)
}

func (e ComputationError) Unwrap() error {
	return e.Err
}

// MarshalJSON exposes the wrapped error message.
func (e ComputationError) MarshalJSON() ([]byte, error) {
	type alias struct {
		StaffID   string `json:"staffId"`
		StaffName string `json:"staffName"`
		Message   string `json:"message"`
	}
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(alias{StaffID: e.StaffID, StaffName: e.StaffName, Message: msg})
}
