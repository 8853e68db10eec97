package handlers

import "testing"

func TestClampContribution(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		targetValue float64
		savedValue  float64
		want        float64
	}{
		{"fits entirely", 100, 1000, 200, 100},
		{"clamped to remaining", 500, 1000, 800, 200},
		{"exact remaining", 200, 1000, 800, 200},
		{"target already reached", 50, 1000, 1000, 0},
		{"empty goal takes full target", 1000, 1000, 0, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampContribution(tt.amount, tt.targetValue, tt.savedValue)
			if got != tt.want {
				t.Errorf("clampContribution(%v, %v, %v) = %v, want %v",
					tt.amount, tt.targetValue, tt.savedValue, got, tt.want)
			}
		})
	}
}
