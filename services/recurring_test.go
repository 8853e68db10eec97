package services

import (
	"testing"
	"time"

	"github.com/fintrack/fintrack-api/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name           string
		start          time.Time
		recurrenceType string
		want           time.Time
	}{
		{"daily", date(2024, time.March, 10), models.RecurrenceDaily, date(2024, time.March, 11)},
		{"daily across month end", date(2024, time.March, 31), models.RecurrenceDaily, date(2024, time.April, 1)},
		{"weekly", date(2024, time.March, 10), models.RecurrenceWeekly, date(2024, time.March, 17)},
		{"weekly across year end", date(2024, time.December, 28), models.RecurrenceWeekly, date(2025, time.January, 4)},
		{"monthly", date(2024, time.March, 15), models.RecurrenceMonthly, date(2024, time.April, 15)},
		{"monthly clamps jan 31 to feb 29 in leap year", date(2024, time.January, 31), models.RecurrenceMonthly, date(2024, time.February, 29)},
		{"monthly clamps jan 31 to feb 28", date(2025, time.January, 31), models.RecurrenceMonthly, date(2025, time.February, 28)},
		{"monthly clamps mar 31 to apr 30", date(2024, time.March, 31), models.RecurrenceMonthly, date(2024, time.April, 30)},
		{"monthly across year end", date(2024, time.December, 15), models.RecurrenceMonthly, date(2025, time.January, 15)},
		{"yearly", date(2024, time.March, 15), models.RecurrenceYearly, date(2025, time.March, 15)},
		{"yearly clamps feb 29 to feb 28", date(2024, time.February, 29), models.RecurrenceYearly, date(2025, time.February, 28)},
		{"unknown type returns input", date(2024, time.March, 15), "fortnightly", date(2024, time.March, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.start, tt.recurrenceType)
			if !got.Equal(tt.want) {
				t.Errorf("Advance(%v, %q) = %v, want %v", tt.start, tt.recurrenceType, got, tt.want)
			}
		})
	}
}

func TestAdvancePreservesClock(t *testing.T) {
	start := time.Date(2024, time.January, 31, 9, 30, 15, 0, time.UTC)
	got := Advance(start, models.RecurrenceMonthly)
	want := time.Date(2024, time.February, 29, 9, 30, 15, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Advance = %v, want %v", got, want)
	}
}

func TestFirstOccurrence(t *testing.T) {
	now := date(2024, time.June, 15)

	tests := []struct {
		name           string
		txDate         time.Time
		recurrenceType string
		want           time.Time
	}{
		{"future date advances from itself", date(2024, time.June, 20), models.RecurrenceDaily, date(2024, time.June, 21)},
		{"backdated daily restarts from now", date(2024, time.January, 1), models.RecurrenceDaily, date(2024, time.June, 16)},
		{"backdated monthly restarts from now", date(2023, time.March, 10), models.RecurrenceMonthly, date(2024, time.July, 15)},
		{"advance landing exactly on now restarts", date(2024, time.June, 14), models.RecurrenceDaily, date(2024, time.June, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstOccurrence(tt.txDate, tt.recurrenceType, now)
			if !got.Equal(tt.want) {
				t.Errorf("FirstOccurrence(%v, %q, %v) = %v, want %v",
					tt.txDate, tt.recurrenceType, now, got, tt.want)
			}
			if !got.After(now) {
				t.Errorf("FirstOccurrence result %v is not strictly after now %v", got, now)
			}
		})
	}
}
