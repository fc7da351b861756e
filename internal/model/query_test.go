package model

import (
	"math"
	"testing"
)

func TestQueryDescriptor_Range(t *testing.T) {
	tests := []struct {
		name          string
		limit, offset int
		wantFrom      int
		wantTo        int
	}{
		{name: "first page", limit: 20, offset: 0, wantFrom: 0, wantTo: 19},
		{name: "third page", limit: 20, offset: 40, wantFrom: 40, wantTo: 59},
		{name: "single row", limit: 1, offset: 7, wantFrom: 7, wantTo: 7},
		{name: "saturates at max", limit: 20, offset: math.MaxInt, wantFrom: math.MaxInt, wantTo: math.MaxInt},
		{name: "just below max", limit: 20, offset: math.MaxInt - 19, wantFrom: math.MaxInt - 19, wantTo: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := QueryDescriptor{Limit: tt.limit, Offset: tt.offset}.Range()
			if from != tt.wantFrom || to != tt.wantTo {
				t.Errorf("Range() = (%d, %d), want (%d, %d)", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}
