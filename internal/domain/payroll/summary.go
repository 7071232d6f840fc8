package payroll

import (
	"sort"

	"github.com/shopspring/decimal"
)

func summarize(month Month, entries []PayrollEntry, failed int) Summary {
	s := Summary{
		Month:            month,
		Label:            month.Label(),
		TotalStaff:       len(entries),
		FailedStaff:      failed,
		TotalGross:       decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNet:         decimal.Zero,
		TotalHours:       decimal.Zero,
		TotalOT:          decimal.Zero,
		TotalTAP:         decimal.Zero,
		TotalSCP:         decimal.Zero,
		TotalTAPEmployer: decimal.Zero,
		TotalSCPEmployer: decimal.Zero,
		TotalKPIBonus:    decimal.Zero,
	}
	for _, e := range entries {
		s.TotalGross = s.TotalGross.Add(e.GrossPay)
		s.TotalDeductions = s.TotalDeductions.Add(e.TotalDeductions)
		s.TotalNet = s.TotalNet.Add(e.NetPay)
		s.TotalHours = s.TotalHours.Add(e.TotalHours)
		s.TotalOT = s.TotalOT.Add(e.OTHours)
		s.TotalTAP = s.TotalTAP.Add(e.Statutory.TAP)
		s.TotalSCP = s.TotalSCP.Add(e.Statutory.SCP)
		s.TotalTAPEmployer = s.TotalTAPEmployer.Add(e.Statutory.TAPEmployer)
		s.TotalSCPEmployer = s.TotalSCPEmployer.Add(e.Statutory.SCPEmployer)
		s.TotalKPIBonus = s.TotalKPIBonus.Add(e.KPIBonus)
	}
	return s
}

// sortByNetPay orders entries by net pay, highest first. Ties fall back to
// staff id so repeated runs produce the same order.
func sortByNetPay(entries []PayrollEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].NetPay.Cmp(entries[j].NetPay); c != 0 {
			return c > 0
		}
		return entries[i].StaffID < entries[j].StaffID
	})
}
