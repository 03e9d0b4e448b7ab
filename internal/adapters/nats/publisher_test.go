package natsadapter

import "testing"

func TestOccupancySubject(t *testing.T) {
	if got := OccupancySubject(42); got != "shelters.occupancy.42" {
		t.Errorf("unexpected subject %q", got)
	}
}
