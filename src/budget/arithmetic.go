package budget

import (
	"math"
	"time"
)

// DayLayout is the calendar-day format used everywhere a day is persisted or
// compared. Days carry no time component.
const DayLayout = "2006-01-02"

// BaseFromRecurring returns the even daily share of net recurring cash flow.
// Incomes are negative and expenses positive, so the sum is negated before
// dividing by the number of days in the month.
func BaseFromRecurring(amounts []float64, daysInMonth int) float64 {
	var sum float64
	for _, a := range amounts {
		sum += a
	}
	return -sum / float64(daysInMonth)
}

// RoundUpToCents rounds toward positive infinity at cent granularity. The
// upward bias is intentional: a deduction is never silently under-delivered
// because of floating rounding.
func RoundUpToCents(x float64) float64 {
	return math.Ceil(x*100) / 100
}

// LeftoverContribution spreads yesterday's unspent (or overspent) base across
// the remaining days of the month, today included.
func LeftoverContribution(previousBase, previousExpenseSum float64, remainingDaysInclToday int) float64 {
	return (previousBase - previousExpenseSum) / float64(remainingDaysInclToday)
}

// IncomeDistribution smooths a same-day variable income over the rest of the
// month instead of spiking today's limit. todayIncomeSum is the (negative)
// sum of today's non-savings-op income transactions.
func IncomeDistribution(todayIncomeSum float64, remainingDaysInclToday int) float64 {
	return -todayIncomeSum / float64(remainingDaysInclToday)
}

func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func RemainingDaysInclToday(t time.Time) int {
	return DaysInMonth(t) - t.Day() + 1
}

func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

func MonthStart(t time.Time) string {
	return FormatDay(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()))
}

// YesterdayDay returns the previous calendar day, or "" on the first of the
// month: carryover never crosses a month boundary.
func YesterdayDay(t time.Time) string {
	if t.Day() == 1 {
		return ""
	}
	return FormatDay(t.AddDate(0, 0, -1))
}
