package solver

import (
	"testing"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
)

func TestMemoTable_Visit(t *testing.T) {
	initial := engine.MustLevelState(engine.FloatiestPlatformsConfig())
	deep, err := engine.Simulate(initial, []engine.Direction{engine.Right, engine.Left, engine.Right, engine.Left})
	if err != nil {
		t.Fatal(err)
	}
	shallow := initial.ResetContext().ApplyMove(engine.Right).ApplyMove(engine.Left)

	memo := NewMemoTable(false)
	if memo.Visit(deep) {
		t.Fatal("first visit reported a hit")
	}
	if turn, ok := memo.Lookup(deep); !ok || turn != 4 {
		t.Fatalf("Lookup() = %d, %v; want 4, true", turn, ok)
	}

	// Same position at the same turn is a hit.
	if !memo.Visit(deep) {
		t.Error("revisit at the same turn should hit")
	}

	// A shallower sighting is not a hit and lowers the recorded turn.
	if memo.Visit(shallow) {
		t.Error("shallower visit should not hit")
	}
	if turn, _ := memo.Lookup(deep); turn != 2 {
		t.Errorf("recorded turn = %d, want 2", turn)
	}

	// Now the deeper one is a hit.
	if !memo.Visit(deep) {
		t.Error("deeper visit should hit after the update")
	}
	if memo.Len() != 1 {
		t.Errorf("Len() = %d, want 1", memo.Len())
	}
}

func TestMemoTable_TurnSensitive(t *testing.T) {
	initial := engine.MustLevelState(engine.FloatiestPlatformsConfig())
	back := initial.ApplyMove(engine.Right).ApplyMove(engine.Left)

	memo := NewMemoTable(true)
	memo.Visit(initial)
	if memo.Visit(back) {
		t.Error("turn-sensitive table should not match across turns")
	}
	if memo.Len() != 2 {
		t.Errorf("Len() = %d, want 2", memo.Len())
	}
}

func TestMemoTable_Collisions(t *testing.T) {
	a := engine.MustLevelState(engine.FloatiestPlatformsConfig())
	b := a.ApplyMove(engine.Right)
	ka := a.Identity(false)
	kb := b.Identity(false)

	memo := NewMemoTable(false)
	const hash = 42
	if memo.visit(hash, &ka, 3) {
		t.Fatal("first insert reported a hit")
	}
	if memo.visit(hash, &kb, 5) {
		t.Error("a different state with the same hash was treated as a hit")
	}
	if memo.Len() != 2 {
		t.Errorf("Len() = %d, want 2", memo.Len())
	}
	if turn, ok := memo.lookup(hash, &kb); !ok || turn != 5 {
		t.Errorf("lookup(b) = %d, %v; want 5, true", turn, ok)
	}
	if !memo.visit(hash, &ka, 3) {
		t.Error("the first state should still hit")
	}
}

func TestMemoTable_CloneIsIndependent(t *testing.T) {
	initial := engine.MustLevelState(engine.FloatiestPlatformsConfig())
	deep := initial.ApplyMove(engine.Right).ApplyMove(engine.Left).ApplyMove(engine.Right)

	memo := NewMemoTable(false)
	memo.Visit(deep)
	clone := memo.Clone()

	// Updating the clone must not leak into the source table.
	shallow := initial.ApplyMove(engine.Right)
	if clone.Visit(shallow) {
		t.Fatal("shallower visit should not hit")
	}
	if turn, _ := memo.Lookup(deep); turn != 3 {
		t.Errorf("original turn = %d, want 3", turn)
	}
	if turn, _ := clone.Lookup(deep); turn != 1 {
		t.Errorf("clone turn = %d, want 1", turn)
	}

	clone.Visit(initial.ApplyMove(engine.Up))
	if memo.Len() != 1 || clone.Len() != 2 {
		t.Errorf("Len() = %d / %d, want 1 / 2", memo.Len(), clone.Len())
	}
}
