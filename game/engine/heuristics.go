package engine

import (
	"fmt"
	"sort"
)

// UnwinnableScore is given to any state a heuristic proves unwinnable
const UnwinnableScore = -1_000_000

// Heuristic holds the level-specific pruning and scoring rules
type Heuristic interface {
	Name() string
	// PossibleToWin returns false when no sequence of moves can win from s.
	// It runs once per generated state and must stay cheap.
	PossibleToWin(s *GameState) bool
	// Score rates a leaf. Higher is closer to a win.
	Score(s *GameState) int
}

const (
	DefaultHeuristicName            = "default"
	FloatiestPlatformsHeuristicName = "floatiest_platforms"
)

var heuristics = map[string]Heuristic{
	DefaultHeuristicName:            defaultHeuristic{},
	FloatiestPlatformsHeuristicName: floatiestPlatformsHeuristic{},
}

// LookupHeuristic resolves a heuristic by name. The empty name selects the default.
func LookupHeuristic(name string) (Heuristic, error) {
	if name == "" {
		return defaultHeuristic{}, nil
	}
	h, ok := heuristics[name]
	if !ok {
		return nil, fmt.Errorf("unknown heuristic %q", name)
	}
	return h, nil
}

// HeuristicNames lists the registered heuristics in sorted order
func HeuristicNames() []string {
	names := make([]string, 0, len(heuristics))
	for name := range heuristics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// keyDistanceBonus is the tie-break shared by all heuristics
func keyDistanceBonus(s *GameState) int {
	return 100 - ManhattanDistance(s.key, s.level.Door)
}

// defaultHeuristic only knows that both Babas are needed and that the key
// should get closer to the door.
type defaultHeuristic struct{}

func (defaultHeuristic) Name() string { return DefaultHeuristicName }

func (defaultHeuristic) PossibleToWin(s *GameState) bool {
	return s.AllBabasAlive()
}

func (h defaultHeuristic) Score(s *GameState) int {
	if !h.PossibleToWin(s) {
		return UnwinnableScore
	}
	score := 0
	if s.BabasOnSameSpace() {
		score += 10_000_000
	}
	return score + keyDistanceBonus(s)
}

// floatiestPlatformsHeuristic is hand-tuned for the Floatiest Platforms
// layout: bridge the upper platforms with the three rocks, line the text up
// with the bridge to stop the Babas, then merge them.
type floatiestPlatformsHeuristic struct{}

func (floatiestPlatformsHeuristic) Name() string { return FloatiestPlatformsHeuristicName }

func (floatiestPlatformsHeuristic) PossibleToWin(s *GameState) bool {
	if !s.AllBabasAlive() {
		return false
	}
	// All text has to stay on the upper right platform or to the right of it.
	if s.isText.I <= 2 || s.isText.I >= 8 || s.isText.J <= 9 {
		return false
	}
	return !s.ruleTextIn(0, 2, 10, 17) &&
		!s.ruleTextIn(8, 10, 10, 17) &&
		!s.ruleTextIn(3, 7, 7, 9)
}

func (h floatiestPlatformsHeuristic) Score(s *GameState) int {
	if !h.PossibleToWin(s) {
		return UnwinnableScore
	}

	score := 0
	rockRow := int8(-1)
	for i := int8(3); i <= 7; i++ {
		rocks := 0
		for j := int8(7); j <= 9; j++ {
			if s.Grid[i][j].Contains(Rock) {
				rocks++
			}
		}
		switch rocks {
		case 1:
			score += 100
		case 2:
			score += 1_000
		case 3:
			score += 10_000
			rockRow = i
		}
	}

	if rockRow != -1 {
		if !h.textCanBeAligned(s, rockRow) {
			return -1
		}
		aligned := 0
		if s.isText.I == rockRow {
			aligned++
		}
		for j := int8(10); j <= 17; j++ {
			cell := s.Grid[rockRow][j]
			if cell.Contains(RockText) || cell.Contains(PushText) {
				aligned++
			}
		}
		switch aligned {
		case 1:
			score += 1_000
		case 2:
			score += 10_000
		case 3:
			if s.ruleActive {
				score += 100_000
			} else {
				score += 1_000_000
			}
		}
	}

	if s.BabasOnSameSpace() {
		score += 10_000_000
	}
	return score + keyDistanceBonus(s)
}

// textCanBeAligned reports whether the text can still end up on rockRow
// to the right of the upper right platform.
func (floatiestPlatformsHeuristic) textCanBeAligned(s *GameState, rockRow int8) bool {
	if s.isText.I != rockRow && s.isText.J >= 15 {
		return false
	}
	if s.isText.J >= 15 && s.ruleActive {
		return false
	}
	for i := int8(3); i <= 7; i++ {
		if i == rockRow {
			continue
		}
		if s.ruleTextIn(i, i, 15, 17) {
			return false
		}
	}
	return true
}

// ruleTextIn reports whether a rock or push text lies in the inclusive rectangle
func (s *GameState) ruleTextIn(i0, i1, j0, j1 int8) bool {
	for i := i0; i <= i1; i++ {
		for j := j0; j <= j1; j++ {
			cell := s.Grid[i][j]
			if cell.Contains(RockText) || cell.Contains(PushText) {
				return true
			}
		}
	}
	return false
}
