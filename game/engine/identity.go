package engine

// StateKey is the part of a GameState that identifies it for deduplication.
// Move history and cached fields are excluded; Turn is zero unless the key
// was built turn-sensitive.
type StateKey struct {
	Baba1 Coordinate
	Baba2 Coordinate
	Turn  uint8
	Grid  Grid
}

// Identity extracts the memo key of s
func (s *GameState) Identity(turnSensitive bool) StateKey {
	k := StateKey{Baba1: s.Baba1, Baba2: s.Baba2, Grid: s.Grid}
	if turnSensitive {
		k.Turn = s.Turn
	}
	return k
}

// Hash mixes every cell through an integer finalizer, seeded with the
// packed Baba coordinates. Collisions are expected and must be resolved
// with Equal.
func (k *StateKey) Hash() uint64 {
	babas := uint32(uint8(k.Baba1.I))<<24 | uint32(uint8(k.Baba1.J))<<16 |
		uint32(uint8(k.Baba2.I))<<8 | uint32(uint8(k.Baba2.J))
	h := uint64(babas) * 37
	if k.Turn != 0 {
		h = mixHash(uint32(k.Turn), h)
	}
	for i := range k.Grid {
		for j := range k.Grid[i] {
			h = mixHash(uint32(k.Grid[i][j]), h)
		}
	}
	return h
}

// Equal reports full structural equality
func (k *StateKey) Equal(other *StateKey) bool {
	return *k == *other
}

func mixHash(v uint32, h uint64) uint64 {
	v = ((v >> 16) ^ v) * 0x45d9f3b
	v = ((v >> 16) ^ v) * 0x45d9f3b
	v = (v >> 16) ^ v
	h ^= uint64(v) + 0x9e3779b9 + (h << 6) + (h >> 2)
	return h
}
