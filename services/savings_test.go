package services

import "testing"

func TestPotDelta(t *testing.T) {
	tests := []struct {
		name         string
		oldSavings   bool
		newSavings   bool
		oldConverted float64
		newConverted float64
		want         float64
	}{
		{"neither savings", false, false, 100, 200, 0},
		{"moved out of savings deducts old", true, false, 100, 200, -100},
		{"moved into savings adds new", false, true, 100, 200, 200},
		{"stayed savings replaces old with new", true, true, 100, 200, 100},
		{"stayed savings with smaller amount", true, true, 200, 50, -150},
		{"stayed savings unchanged", true, true, 100, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := potDelta(tt.oldSavings, tt.newSavings, tt.oldConverted, tt.newConverted)
			if got != tt.want {
				t.Errorf("potDelta(%v, %v, %v, %v) = %v, want %v",
					tt.oldSavings, tt.newSavings, tt.oldConverted, tt.newConverted, got, tt.want)
			}
		})
	}
}
