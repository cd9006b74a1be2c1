package solver

import "github.com/wricardo/mcp-training/babasolver/game/engine"

type memoEntry struct {
	key  engine.StateKey
	turn uint8
}

// MemoTable maps each seen state to the shallowest turn it was reached at.
// Hash collisions share a bucket and are told apart by full equality.
// A MemoTable is not safe for concurrent writes; workers use Clone.
type MemoTable struct {
	turnSensitive bool
	buckets       map[uint64][]memoEntry
	size          int
}

func NewMemoTable(turnSensitive bool) *MemoTable {
	return &MemoTable{
		turnSensitive: turnSensitive,
		buckets:       make(map[uint64][]memoEntry),
	}
}

// Visit records s and reports whether it was already seen at the same or a
// shallower turn. A deeper earlier sighting is replaced by this one.
func (m *MemoTable) Visit(s *engine.GameState) bool {
	key := s.Identity(m.turnSensitive)
	return m.visit(key.Hash(), &key, s.Turn)
}

func (m *MemoTable) visit(hash uint64, key *engine.StateKey, turn uint8) bool {
	bucket := m.buckets[hash]
	for i := range bucket {
		if !bucket[i].key.Equal(key) {
			continue
		}
		if turn >= bucket[i].turn {
			return true
		}
		bucket[i].turn = turn
		return false
	}
	m.buckets[hash] = append(bucket, memoEntry{key: *key, turn: turn})
	m.size++
	return false
}

// Lookup returns the recorded turn of s, if any
func (m *MemoTable) Lookup(s *engine.GameState) (uint8, bool) {
	key := s.Identity(m.turnSensitive)
	return m.lookup(key.Hash(), &key)
}

func (m *MemoTable) lookup(hash uint64, key *engine.StateKey) (uint8, bool) {
	for _, e := range m.buckets[hash] {
		if e.key.Equal(key) {
			return e.turn, true
		}
	}
	return 0, false
}

// Len returns the number of distinct states recorded
func (m *MemoTable) Len() int {
	return m.size
}

// Clone returns a deep copy that shares no storage with m
func (m *MemoTable) Clone() *MemoTable {
	c := &MemoTable{
		turnSensitive: m.turnSensitive,
		buckets:       make(map[uint64][]memoEntry, len(m.buckets)),
		size:          m.size,
	}
	for h, bucket := range m.buckets {
		c.buckets[h] = append([]memoEntry(nil), bucket...)
	}
	return c
}
