package solver

import (
	"testing"
	"time"
)

func TestFormatNumberWithSuffix(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1K"},
		{10_500_000, "10M"},
		{2_000_000_000, "2B"},
	}
	for _, tt := range tests {
		if got := FormatNumberWithSuffix(tt.n); got != tt.want {
			t.Errorf("FormatNumberWithSuffix(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatNumberWithCommas(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{10000000, "10,000,000"},
		{1234567890, "1,234,567,890"},
	}
	for _, tt := range tests {
		if got := FormatNumberWithCommas(tt.n); got != tt.want {
			t.Errorf("FormatNumberWithCommas(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestStats_Derived(t *testing.T) {
	s := Stats{TotalMoves: 1000, CacheHits: 250, Elapsed: time.Millisecond}
	if got := s.UniqueMoves(); got != 750 {
		t.Errorf("UniqueMoves() = %d, want 750", got)
	}
	if got := s.TimePerMove(); got != time.Microsecond {
		t.Errorf("TimePerMove() = %v, want 1µs", got)
	}
	if got := (Stats{}).TimePerMove(); got != 0 {
		t.Errorf("TimePerMove() on empty stats = %v", got)
	}
}
