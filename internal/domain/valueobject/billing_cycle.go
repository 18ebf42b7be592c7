// Package valueobject defines immutable domain value types.
package valueobject

import "time"

// InvoicePeriod identifies one billing cycle of a card: the (month, year)
// pair the card bills against. It is the single source of truth for all
// period math in the engine; no other component re-derives cycle
// boundaries on its own.
type InvoicePeriod struct {
	Month int // 1-12
	Year  int
}

// ResolveInvoicePeriod maps a purchase date and the card's cycle
// parameters to the period of the invoice the purchase belongs to.
//
// A purchase made after the closing day falls into the next cycle. When
// the due day is less than or equal to the closing day, the statement
// closes late in one month and is due early in the next, so the billed
// period shifts one further month ahead.
func ResolveInvoicePeriod(purchaseDate time.Time, closingDay, dueDay int) InvoicePeriod {
	period := InvoicePeriod{
		Month: int(purchaseDate.Month()),
		Year:  purchaseDate.Year(),
	}

	if purchaseDate.Day() > closingDay {
		period = period.Next()
	}

	if dueDay <= closingDay {
		period = period.Next()
	}

	return period
}

// Next returns the following period, rolling the year forward on
// December overflow.
func (p InvoicePeriod) Next() InvoicePeriod {
	if p.Month == 12 {
		return InvoicePeriod{Month: 1, Year: p.Year + 1}
	}
	return InvoicePeriod{Month: p.Month + 1, Year: p.Year}
}

// Previous returns the preceding period, rolling the year back on
// January underflow.
func (p InvoicePeriod) Previous() InvoicePeriod {
	if p.Month == 1 {
		return InvoicePeriod{Month: 12, Year: p.Year - 1}
	}
	return InvoicePeriod{Month: p.Month - 1, Year: p.Year}
}

// MaterializeDates derives the concrete closing and due dates for the
// period. The due date falls inside the period's month. The closing
// month is the period's month, unless the due day is less than or equal
// to the closing day, in which case the statement closed one month
// earlier (the mirror of the shift applied by ResolveInvoicePeriod).
// Days are clamped to the target month's length here.
func (p InvoicePeriod) MaterializeDates(closingDay, dueDay int) (closingDate, dueDate time.Time) {
	dueDate = dateOfMonth(p.Year, p.Month, dueDay)

	closing := p
	if dueDay <= closingDay {
		closing = p.Previous()
	}
	closingDate = dateOfMonth(closing.Year, closing.Month, closingDay)

	return closingDate, dueDate
}

// AddMonths advances a date by n calendar months, keeping the day of
// month and clamping it to the target month's length (Jan 31 + 1 month
// is Feb 28/29, not Mar 3).
func AddMonths(t time.Time, n int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	day := clampDay(t.Day(), firstOfTarget.Year(), int(firstOfTarget.Month()))

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func dateOfMonth(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), clampDay(day, year, month), 0, 0, 0, 0, time.UTC)
}

func clampDay(day, year, month int) int {
	last := daysInMonth(year, month)
	if day > last {
		return last
	}
	return day
}

func daysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
