package solver

import (
	"strconv"
	"time"
)

// Stats summarises one search iteration
type Stats struct {
	TotalMoves    uint64        `json:"total_moves"`
	CacheHits     uint64        `json:"cache_hits"`
	CacheSize     uint64        `json:"cache_size"`
	ParallelRoots int           `json:"parallel_roots"`
	Leaves        uint64        `json:"leaves"`
	Elapsed       time.Duration `json:"elapsed"`
}

// UniqueMoves counts the moves that were not cut by the memo table
func (s Stats) UniqueMoves() uint64 {
	return s.TotalMoves - s.CacheHits
}

// TimePerMove is zero when nothing was searched
func (s Stats) TimePerMove() time.Duration {
	if s.TotalMoves == 0 {
		return 0
	}
	return s.Elapsed / time.Duration(s.TotalMoves)
}

// FormatNumberWithSuffix truncates to thousands, millions or billions,
// e.g. 10,500,000 -> "10M".
func FormatNumberWithSuffix(n uint64) string {
	switch {
	case n >= 1_000_000_000:
		return strconv.FormatUint(n/1_000_000_000, 10) + "B"
	case n >= 1_000_000:
		return strconv.FormatUint(n/1_000_000, 10) + "M"
	case n >= 1_000:
		return strconv.FormatUint(n/1_000, 10) + "K"
	}
	return strconv.FormatUint(n, 10)
}

// FormatNumberWithCommas groups digits in threes, e.g. 10000000 -> "10,000,000"
func FormatNumberWithCommas(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+(len(s)-1)/3)
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
