package reconcile

import "github.com/shopspring/decimal"

var (
	monthsPerYear = decimal.NewFromInt(12)
	weeksPerYear  = decimal.NewFromInt(52)
	daysPerYear   = decimal.NewFromInt(365)
	hoursPerWeek  = decimal.NewFromInt(40)
)

// Salary is an annual salary broken down by pay period. Values are exact;
// use Rounded for presentation.
type Salary struct {
	Annual  decimal.Decimal `json:"annual"`
	Monthly decimal.Decimal `json:"monthly"`
	Weekly  decimal.Decimal `json:"weekly"`
	Daily   decimal.Decimal `json:"daily"`
	Hourly  decimal.Decimal `json:"hourly"`
}

// SalaryBreakdown divides an annual salary into monthly, weekly, daily and hourly amounts
func SalaryBreakdown(annual decimal.Decimal) Salary {
	weekly := annual.Div(weeksPerYear)
	return Salary{
		Annual:  annual,
		Monthly: annual.Div(monthsPerYear),
		Weekly:  weekly,
		Daily:   annual.Div(daysPerYear),
		Hourly:  weekly.Div(hoursPerWeek),
	}
}

// Rounded returns the breakdown rounded to whole currency units
func (s Salary) Rounded() Salary {
	return Salary{
		Annual:  s.Annual.Round(0),
		Monthly: s.Monthly.Round(0),
		Weekly:  s.Weekly.Round(0),
		Daily:   s.Daily.Round(0),
		Hourly:  s.Hourly.Round(0),
	}
}
