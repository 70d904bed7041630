// Package format renders amounts and dates for display and message
// templates. Amounts follow the en-IN convention: rupee symbol, Indian
// digit grouping, zero fraction digits.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Currency formats an amount as an Indian rupee string with no fraction
// digits, e.g. 5000 -> "₹5,000" and 123456 -> "₹1,23,456".
// Indian grouping: the last three digits form one group, every two digits
// after that form another.
func Currency(amount decimal.Decimal) string {
	rounded := amount.Round(0)

	negative := rounded.IsNegative()
	digits := rounded.Abs().String()

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString("₹")
	b.WriteString(groupIndian(digits))
	return b.String()
}

// groupIndian inserts commas into a plain digit string using Indian
// grouping (##,##,###).
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	groups = append(groups, tail)

	return strings.Join(groups, ",")
}

// MonthName returns the English name for a 1-based month number, or an
// empty string for values outside 1-12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// Date renders a date as day, short month name and year, e.g. "2 Mar 2025".
func Date(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// DaysOverdue returns the number of whole days today is past the due date.
// Zero or negative means the due date has not passed.
func DaysOverdue(dueDate, today time.Time) int {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	now := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(now.Sub(due).Hours() / 24)
}
