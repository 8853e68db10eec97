package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/fintrack/fintrack-api/services"
)

func TestAggregate(t *testing.T) {
	// all rows already in the target currency, so no rates are fetched
	snap := services.NewExchangeServiceWith("http://invalid.test/", http.DefaultClient, false).Snapshot("USD")

	day := func(d int) time.Time { return time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC) }

	rows := []reportRow{
		{kind: "income", amount: 1000, currency: "USD", category: "Salary", date: day(1)},
		{kind: "income", amount: 200, currency: "USD", category: "Freelance", date: day(5), recurring: true},
		{kind: "income", amount: 1000, currency: "USD", category: "Bonus", date: day(20)},
		{kind: "expense", amount: 300, currency: "USD", category: "Rent", date: day(2)},
		{kind: "expense", amount: 45.5, currency: "USD", category: "Groceries", date: day(8)},
	}

	report, err := aggregate(rows, snap)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if report.TotalIncome != "2200.00" {
		t.Errorf("TotalIncome = %q, want \"2200.00\"", report.TotalIncome)
	}
	if report.TotalExpense != "345.50" {
		t.Errorf("TotalExpense = %q, want \"345.50\"", report.TotalExpense)
	}
	if report.GrandTotal != "1854.50" {
		t.Errorf("GrandTotal = %q, want \"1854.50\"", report.GrandTotal)
	}
	if report.IncomeEntries != 3 || report.ExpenseEntries != 2 {
		t.Errorf("entries = %d/%d, want 3/2", report.IncomeEntries, report.ExpenseEntries)
	}
	if report.RecurringEntries != 1 {
		t.Errorf("RecurringEntries = %d, want 1", report.RecurringEntries)
	}
	if len(report.Transactions) != 5 {
		t.Errorf("len(Transactions) = %d, want 5", len(report.Transactions))
	}

	// the two 1000 incomes tie; the later row wins
	if report.HighestIncome == nil || report.HighestIncome.Category != "Bonus" {
		t.Errorf("HighestIncome = %+v, want category Bonus", report.HighestIncome)
	}
	if report.LowestIncome == nil || report.LowestIncome.Amount != 200 {
		t.Errorf("LowestIncome = %+v, want amount 200", report.LowestIncome)
	}
	if report.HighestExpense == nil || report.HighestExpense.Category != "Rent" {
		t.Errorf("HighestExpense = %+v, want category Rent", report.HighestExpense)
	}
	if report.LowestExpense == nil || report.LowestExpense.Amount != 45.5 {
		t.Errorf("LowestExpense = %+v, want amount 45.5", report.LowestExpense)
	}
}

func TestAggregateEmpty(t *testing.T) {
	snap := services.NewExchangeServiceWith("http://invalid.test/", http.DefaultClient, false).Snapshot("USD")

	report, err := aggregate(nil, snap)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if report.TotalIncome != "0.00" || report.TotalExpense != "0.00" || report.GrandTotal != "0.00" {
		t.Errorf("totals = %q/%q/%q, want all \"0.00\"",
			report.TotalIncome, report.TotalExpense, report.GrandTotal)
	}
	if report.HighestIncome != nil || report.LowestExpense != nil {
		t.Error("extremes should be nil for an empty report")
	}
}
