// Package valueobject defines immutable domain value types.
package valueobject

import (
	"testing"
	"time"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestResolveInvoicePeriod(t *testing.T) {
	tests := []struct {
		name          string
		purchaseDate  time.Time
		closingDay    int
		dueDay        int
		expectedMonth int
		expectedYear  int
	}{
		{
			name:          "purchase before closing day stays in current month",
			purchaseDate:  date(2024, 3, 5),
			closingDay:    10,
			dueDay:        20,
			expectedMonth: 3,
			expectedYear:  2024,
		},
		{
			name:          "purchase on closing day stays in current month",
			purchaseDate:  date(2024, 3, 10),
			closingDay:    10,
			dueDay:        20,
			expectedMonth: 3,
			expectedYear:  2024,
		},
		{
			name:          "purchase after closing day rolls to next month",
			purchaseDate:  date(2024, 3, 11),
			closingDay:    10,
			dueDay:        20,
			expectedMonth: 4,
			expectedYear:  2024,
		},
		{
			name:          "december purchase after closing day rolls year forward",
			purchaseDate:  date(2024, 12, 30),
			closingDay:    28,
			dueDay:        29,
			expectedMonth: 1,
			expectedYear:  2025,
		},
		{
			name:          "due day before closing day shifts one extra month",
			purchaseDate:  date(2024, 3, 5),
			closingDay:    10,
			dueDay:        5,
			expectedMonth: 4,
			expectedYear:  2024,
		},
		{
			name:          "due day equal to closing day shifts one extra month",
			purchaseDate:  date(2024, 3, 5),
			closingDay:    10,
			dueDay:        10,
			expectedMonth: 4,
			expectedYear:  2024,
		},
		{
			name:          "both shifts combined cross the year boundary",
			purchaseDate:  date(2024, 11, 25),
			closingDay:    20,
			dueDay:        5,
			expectedMonth: 1,
			expectedYear:  2025,
		},
		{
			name:          "december purchase with due before closing lands two months ahead",
			purchaseDate:  date(2024, 12, 30),
			closingDay:    28,
			dueDay:        10,
			expectedMonth: 2,
			expectedYear:  2025,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period := ResolveInvoicePeriod(tt.purchaseDate, tt.closingDay, tt.dueDay)

			if period.Month != tt.expectedMonth {
				t.Errorf("expected month %d, got %d", tt.expectedMonth, period.Month)
			}
			if period.Year != tt.expectedYear {
				t.Errorf("expected year %d, got %d", tt.expectedYear, period.Year)
			}

			// Resolution must be stable under re-derivation.
			again := ResolveInvoicePeriod(tt.purchaseDate, tt.closingDay, tt.dueDay)
			if again != period {
				t.Errorf("expected stable resolution, got %+v then %+v", period, again)
			}
		})
	}
}

func TestMaterializeDates(t *testing.T) {
	tests := []struct {
		name            string
		period          InvoicePeriod
		closingDay      int
		dueDay          int
		expectedClosing time.Time
		expectedDue     time.Time
	}{
		{
			name:            "closing and due inside the period month",
			period:          InvoicePeriod{Month: 3, Year: 2024},
			closingDay:      10,
			dueDay:          20,
			expectedClosing: date(2024, 3, 10),
			expectedDue:     date(2024, 3, 20),
		},
		{
			name:            "due before closing puts closing in previous month",
			period:          InvoicePeriod{Month: 4, Year: 2024},
			closingDay:      10,
			dueDay:          5,
			expectedClosing: date(2024, 3, 10),
			expectedDue:     date(2024, 4, 5),
		},
		{
			name:            "january period with due before closing rolls year back",
			period:          InvoicePeriod{Month: 1, Year: 2025},
			closingDay:      28,
			dueDay:          10,
			expectedClosing: date(2024, 12, 28),
			expectedDue:     date(2025, 1, 10),
		},
		{
			name:            "day 31 clamped to february length",
			period:          InvoicePeriod{Month: 2, Year: 2023},
			closingDay:      15,
			dueDay:          31,
			expectedClosing: date(2023, 2, 15),
			expectedDue:     date(2023, 2, 28),
		},
		{
			name:            "leap year february keeps day 29",
			period:          InvoicePeriod{Month: 2, Year: 2024},
			closingDay:      15,
			dueDay:          29,
			expectedClosing: date(2024, 2, 15),
			expectedDue:     date(2024, 2, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closingDate, dueDate := tt.period.MaterializeDates(tt.closingDay, tt.dueDay)

			if !closingDate.Equal(tt.expectedClosing) {
				t.Errorf("expected closing date %v, got %v", tt.expectedClosing, closingDate)
			}
			if !dueDate.Equal(tt.expectedDue) {
				t.Errorf("expected due date %v, got %v", tt.expectedDue, dueDate)
			}
		})
	}
}

// Resolving a purchase date and then materializing the resulting period
// must reproduce the configured cycle days.
func TestResolveAndMaterializeAreConsistent(t *testing.T) {
	cases := []struct {
		purchaseDate time.Time
		closingDay   int
		dueDay       int
	}{
		{date(2024, 1, 2), 10, 20},
		{date(2024, 6, 15), 10, 20},
		{date(2024, 12, 30), 28, 29},
		{date(2024, 3, 5), 10, 5},
		{date(2024, 11, 25), 20, 5},
		{date(2025, 7, 31), 15, 10},
	}

	for _, c := range cases {
		period := ResolveInvoicePeriod(c.purchaseDate, c.closingDay, c.dueDay)
		closingDate, dueDate := period.MaterializeDates(c.closingDay, c.dueDay)

		if dueDate.Day() != c.dueDay {
			t.Errorf("purchase %v: expected due day %d, got %d", c.purchaseDate, c.dueDay, dueDate.Day())
		}
		if closingDate.Day() != c.closingDay {
			t.Errorf("purchase %v: expected closing day %d, got %d", c.purchaseDate, c.closingDay, closingDate.Day())
		}
		if !closingDate.Before(dueDate) {
			t.Errorf("purchase %v: closing date %v must precede due date %v", c.purchaseDate, closingDate, dueDate)
		}
	}
}

func TestPeriodNextPrevious(t *testing.T) {
	t.Run("Next rolls December into January of next year", func(t *testing.T) {
		next := InvoicePeriod{Month: 12, Year: 2024}.Next()
		if next.Month != 1 || next.Year != 2025 {
			t.Errorf("expected 1/2025, got %d/%d", next.Month, next.Year)
		}
	})

	t.Run("Previous rolls January into December of prior year", func(t *testing.T) {
		prev := InvoicePeriod{Month: 1, Year: 2025}.Previous()
		if prev.Month != 12 || prev.Year != 2024 {
			t.Errorf("expected 12/2024, got %d/%d", prev.Month, prev.Year)
		}
	})

	t.Run("Next and Previous are inverses", func(t *testing.T) {
		for month := 1; month <= 12; month++ {
			p := InvoicePeriod{Month: month, Year: 2024}
			if p.Next().Previous() != p {
				t.Errorf("Next/Previous round trip failed for %+v", p)
			}
		}
	})
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "plain month addition keeps day",
			start:    date(2024, 1, 15),
			months:   2,
			expected: date(2024, 3, 15),
		},
		{
			name:     "january 31 clamps to february 29 on leap year",
			start:    date(2024, 1, 31),
			months:   1,
			expected: date(2024, 2, 29),
		},
		{
			name:     "january 31 clamps to february 28 off leap year",
			start:    date(2023, 1, 31),
			months:   1,
			expected: date(2023, 2, 28),
		},
		{
			name:     "crosses year boundary",
			start:    date(2024, 11, 10),
			months:   3,
			expected: date(2025, 2, 10),
		},
		{
			name:     "zero months is identity",
			start:    date(2024, 5, 31),
			months:   0,
			expected: date(2024, 5, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.start, tt.months)
			if !got.Equal(tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
