package orders

import (
	"testing"

	"mjolnir/models"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []string{models.StatusProcessing, models.StatusInTransit, models.StatusDelivered} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	for _, s := range []string{models.StatusCancelled, "shipped", "", "Processing"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.StatusProcessing, models.StatusInTransit, true},
		{models.StatusProcessing, models.StatusDelivered, true},
		{models.StatusInTransit, models.StatusDelivered, true},

		// no backward moves
		{models.StatusInTransit, models.StatusProcessing, false},
		{models.StatusDelivered, models.StatusInTransit, false},
		{models.StatusDelivered, models.StatusProcessing, false},

		// no self moves
		{models.StatusProcessing, models.StatusProcessing, false},
		{models.StatusDelivered, models.StatusDelivered, false},

		// cancelled is outside the lattice entirely
		{models.StatusProcessing, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusProcessing, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
