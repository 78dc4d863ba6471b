package payroll

import (
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// RoundHalfUp rounds to the nearest integer with ties going toward positive infinity,
// so -2.5 becomes -2.
func RoundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

// LOPDays is the part of the weekday pool covered by neither attendance nor paid leave.
// It is never negative: weekend attendance can push present+leave past the pool.
func LOPDays(weekdayPool, presentDays, leaveDays int) decimal.Decimal {
	uncovered := weekdayPool - (presentDays + leaveDays)
	if uncovered < 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(uncovered))
}

// LOPAmount prices lopDays at a flat daily rate of gross / calendarDays.
// calendarDays is the full month length, not the weekday pool.
func LOPAmount(basicSalary, hra, allowances decimal.Decimal, calendarDays int, lopDays decimal.Decimal) decimal.Decimal {
	if lopDays.IsZero() || calendarDays == 0 {
		return decimal.Zero
	}
	gross := basicSalary.Add(hra).Add(allowances)
	return RoundHalfUp(gross.Mul(lopDays).Div(decimal.NewFromInt(int64(calendarDays))))
}

// NetSalary is gross minus every deduction, rounded. A negative result is returned unchanged.
func NetSalary(basicSalary, hra, allowances, professionalTax, additionalDeductions, lopAmount decimal.Decimal) decimal.Decimal {
	gross := basicSalary.Add(hra).Add(allowances)
	deductions := professionalTax.Add(additionalDeductions).Add(lopAmount)
	return RoundHalfUp(gross.Sub(deductions))
}
