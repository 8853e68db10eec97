package services

import (
	"errors"
	"math"
	"testing"
)

func TestRemainingBudget(t *testing.T) {
	// EUR budget: USD expenses convert at 0.85, EUR passes through
	convert := func(amount float64, from string) (float64, error) {
		switch from {
		case "EUR":
			return amount, nil
		case "USD":
			return amount * 0.85, nil
		default:
			return 0, errors.New("no rate")
		}
	}

	tests := []struct {
		name     string
		limit    float64
		expenses []expenseAmount
		want     float64
	}{
		{
			name:  "mixed currencies",
			limit: 500,
			expenses: []expenseAmount{
				{amount: 100, currency: "EUR"},
				{amount: 50, currency: "USD"},
			},
			want: 500 - (100 + 50*0.85), // 357.50
		},
		{
			name:     "no expenses keeps full budget",
			limit:    500,
			expenses: nil,
			want:     500,
		},
		{
			name:  "unresolvable currency is skipped",
			limit: 500,
			expenses: []expenseAmount{
				{amount: 100, currency: "EUR"},
				{amount: 999, currency: "XXX"},
			},
			want: 400,
		},
		{
			name:  "overspend goes negative",
			limit: 100,
			expenses: []expenseAmount{
				{amount: 150, currency: "EUR"},
			},
			want: -50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := remainingBudget(tt.limit, tt.expenses, convert)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("remainingBudget = %v, want %v", got, tt.want)
			}
		})
	}
}
